package bank_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"graphrlm.dev/core/internal/bank"
	"graphrlm.dev/core/internal/model"
)

var _ = Describe("Inject", func() {
	It("returns empty string for no retrieved items", func() {
		Expect(bank.Inject(nil)).To(Equal(""))
	})

	It("renders a title and bounded bullet list per item", func() {
		items := []bank.RetrievedItem{
			{Item: model.MemoryItem{
				Title:   "Use FILTER for partial matches",
				Content: "- write FILTER(regex(...))\n- prefer case-insensitive flag",
			}},
		}
		out := bank.Inject(items)
		Expect(out).To(ContainSubstring("Use FILTER for partial matches"))
		Expect(out).To(ContainSubstring("write FILTER(regex(...))"))
		Expect(out).To(ContainSubstring("prefer case-insensitive flag"))
	})

	It("stops adding items before exceeding the injection char budget", func() {
		big := make([]bank.RetrievedItem, 0, 50)
		for i := 0; i < 50; i++ {
			big = append(big, bank.RetrievedItem{Item: model.MemoryItem{
				Title:   "memory item with a moderately long title to pad length",
				Content: "- one bullet line that also takes up a fair amount of space here",
			}})
		}
		out := bank.Inject(big)
		Expect(len(out)).To(BeNumerically("<=", model.MaxMemoryInjectionChars))
	})
})
