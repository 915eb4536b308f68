package tools_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"graphrlm.dev/core/internal/graph/memstore"
	"graphrlm.dev/core/internal/tools"
)

var _ = Describe("note scratchpad tools", func() {
	var surface *tools.Surface

	BeforeEach(func() {
		handle, meta, lib := memstore.LoadTriples("onto", nil, nil)
		surface = tools.New(context.Background(), lib, handle, meta, nil, nil, 10)
	})

	It("round-trips a value through write_note/read_note", func() {
		surface.WriteNote("k1", "hello")
		Expect(surface.ReadNote("k1")).To(Equal("hello"))
	})

	It("returns a not-found error dict for an unwritten key", func() {
		result := surface.ReadNote("missing")
		dict, ok := result.(map[string]any)
		Expect(ok).To(BeTrue())
		Expect(dict["error"]).To(Equal("not-found"))
	})

	It("lists every written key", func() {
		surface.WriteNote("a", "1")
		surface.WriteNote("b", "2")
		Expect(surface.ListNotes()).To(ConsistOf("a", "b"))
	})

	It("replaces a prior value silently on rewrite", func() {
		surface.WriteNote("k", "first")
		surface.WriteNote("k", "second")
		Expect(surface.ReadNote("k")).To(Equal("second"))
	})
})
