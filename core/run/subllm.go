package run

import (
	"context"

	"graphrlm.dev/core/common/llm"
	"graphrlm.dev/core/internal/tools"
)

// agentSubLLM adapts an llm.AgentClient into the narrow tools.SubLLM
// surface llm_query/llm_query_batched call through. The sub-LLM is
// typically a smaller/cheaper model than the root driver's agent client,
// per spec §2's "sub-LLM: same surface; may be a smaller model".
type agentSubLLM struct {
	agent llm.AgentClient
}

// NewAgentSubLLM wraps agent as a tools.SubLLM.
func NewAgentSubLLM(agent llm.AgentClient) tools.SubLLM {
	return &agentSubLLM{agent: agent}
}

func (a *agentSubLLM) Complete(ctx context.Context, prompt, context_ string) (string, error) {
	messages := []llm.Message{
		{Role: "system", Content: "Answer the following narrow sub-question concisely, using only the context given. Do not ask follow-up questions."},
	}
	if context_ != "" {
		messages = append(messages, llm.Message{Role: "user", Content: "Context:\n" + context_})
	}
	messages = append(messages, llm.Message{Role: "user", Content: prompt})

	resp, err := a.agent.ChatWithTools(ctx, llm.AgentRequest{Messages: messages})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}
