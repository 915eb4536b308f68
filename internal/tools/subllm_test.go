package tools_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"graphrlm.dev/core/internal/graph/memstore"
	"graphrlm.dev/core/internal/tools"
)

type stubSubLLM struct {
	calls int
	reply string
	err   error
}

func (s *stubSubLLM) Complete(_ context.Context, prompt, _ string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

var _ = Describe("sub-LLM delegation tools", func() {
	var (
		surface *tools.Surface
		sub     *stubSubLLM
	)

	newSurface := func(budget int) *tools.Surface {
		handle, meta, lib := memstore.LoadTriples("onto", nil, nil)
		return tools.New(context.Background(), lib, handle, meta, nil, sub, budget)
	}

	BeforeEach(func() {
		sub = &stubSubLLM{reply: "sub-answer"}
	})

	It("returns the sub-LLM's completion for a single query", func() {
		surface = newSurface(5)
		result := surface.LlmQuery("what is x?", "")
		Expect(result).To(Equal("sub-answer"))
		Expect(sub.calls).To(Equal(1))
	})

	It("returns a budget-exhausted error dict once the call budget is spent", func() {
		surface = newSurface(1)
		surface.LlmQuery("first", "")

		result := surface.LlmQuery("second", "")
		dict, ok := result.(map[string]any)
		Expect(ok).To(BeTrue())
		Expect(dict["error"]).To(Equal("budget-exhausted"))
		Expect(sub.calls).To(Equal(1))
	})

	It("preserves order across a batched call", func() {
		surface = newSurface(10)
		result := surface.LlmQueryBatched([]string{"a", "b", "c"})
		out, ok := result.([]any)
		Expect(ok).To(BeTrue())
		Expect(out).To(Equal([]any{"sub-answer", "sub-answer", "sub-answer"}))
	})

	It("surfaces a sub-llm-error dict when the completion call fails", func() {
		sub.err = errors.New("upstream unavailable")
		surface = newSurface(5)

		result := surface.LlmQuery("x", "")
		dict, ok := result.(map[string]any)
		Expect(ok).To(BeTrue())
		Expect(dict["error"]).To(Equal("sub-llm-error"))
	})
})
