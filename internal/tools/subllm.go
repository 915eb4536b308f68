package tools

import "sync"

// LlmQuery delegates one sub-question to the budgeted sub-LLM. Returns the
// completion text, or an error dict with kind "budget-exhausted" once the
// run's sub-LLM call budget is spent.
func (s *Surface) LlmQuery(prompt, context_ string) any {
	if budgetErr := s.reserveCall(1); budgetErr != nil {
		return budgetErr
	}
	out, callErr := s.subLLM.Complete(s.ctx, prompt, context_)
	if callErr != nil {
		return errorDict("sub-llm-error", callErr.Error(), "retry with a shorter prompt or fewer sub-calls")
	}
	return truncate(out, previewBudget)
}

// LlmQueryBatched delegates several sub-questions in parallel, each
// charged against the same budget, preserving input order in the output.
func (s *Surface) LlmQueryBatched(prompts []string) any {
	if budgetErr := s.reserveCall(len(prompts)); budgetErr != nil {
		return budgetErr
	}

	out := make([]string, len(prompts))
	var wg sync.WaitGroup
	for i, p := range prompts {
		wg.Add(1)
		go func(i int, prompt string) {
			defer wg.Done()
			text, callErr := s.subLLM.Complete(s.ctx, prompt, "")
			if callErr != nil {
				out[i] = "error: " + callErr.Error()
				return
			}
			out[i] = text
		}(i, p)
	}
	wg.Wait()

	result := make([]any, len(out))
	for i, v := range out {
		result[i] = v
	}
	return result
}

// reserveCall decrements the run's sub-LLM call budget by n, refusing the
// call entirely (no partial spend) if that would exceed the budget.
func (s *Surface) reserveCall(n int) map[string]any {
	if s.callsUsed+n > s.callBudget {
		return errorDict("budget-exhausted", "sub-LLM call budget exhausted for this run", "answer using only the tools already called")
	}
	s.callsUsed += n
	return nil
}
