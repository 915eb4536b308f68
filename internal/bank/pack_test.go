package bank_test

import (
	"bytes"
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"graphrlm.dev/core/internal/bank"
	"graphrlm.dev/core/internal/model"
	"graphrlm.dev/core/internal/store"
)

var _ = Describe("Pack export/import", func() {
	It("round-trips a filtered set of memory items and stamps the pack id on import", func() {
		source := newFakeMemoryStore(
			model.MemoryItem{ID: "mem-a", Title: "a", Content: "ca", SourceType: model.SourceTypeSuccess, AccessCount: 5},
			model.MemoryItem{ID: "mem-b", Title: "b", Content: "cb", SourceType: model.SourceTypeFailure, AccessCount: 1},
		)
		srcBank := bank.New(&store.Stores{Memory: source}, nil, nil)

		var buf bytes.Buffer
		packID := bank.NewPackID()
		Expect(packID).NotTo(BeEmpty())

		err := srcBank.Export(context.Background(), &buf, packID, bank.ExportFilter{
			SourceType: model.SourceTypeSuccess,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(buf.String()).To(ContainSubstring("mem-a"))
		Expect(buf.String()).NotTo(ContainSubstring("mem-b"))

		dest := newFakeMemoryStore()
		destBank := bank.New(&store.Stores{Memory: dest}, nil, nil)
		n, err := destBank.Import(context.Background(), bytes.NewReader(buf.Bytes()))
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(1))

		imported, err := dest.Get(context.Background(), "mem-a")
		Expect(err).NotTo(HaveOccurred())
		Expect(imported.Provenance.PackID).To(Equal(packID))
	})

	It("filters by minimum access count", func() {
		source := newFakeMemoryStore(
			model.MemoryItem{ID: "mem-a", Title: "a", Content: "ca", AccessCount: 10},
			model.MemoryItem{ID: "mem-b", Title: "b", Content: "cb", AccessCount: 0},
		)
		b := bank.New(&store.Stores{Memory: source}, nil, nil)

		var buf bytes.Buffer
		err := b.Export(context.Background(), &buf, bank.NewPackID(), bank.ExportFilter{MinAccessCount: 5})
		Expect(err).NotTo(HaveOccurred())
		Expect(buf.String()).To(ContainSubstring("mem-a"))
		Expect(buf.String()).NotTo(ContainSubstring("mem-b"))
	})

	It("is idempotent: re-importing the same pack doesn't duplicate entries", func() {
		source := newFakeMemoryStore(model.MemoryItem{ID: "mem-a", Title: "a", Content: "ca"})
		b := bank.New(&store.Stores{Memory: source}, nil, nil)

		var buf bytes.Buffer
		Expect(b.Export(context.Background(), &buf, bank.NewPackID(), bank.ExportFilter{})).To(Succeed())

		dest := newFakeMemoryStore()
		destBank := bank.New(&store.Stores{Memory: dest}, nil, nil)
		_, err := destBank.Import(context.Background(), bytes.NewReader(buf.Bytes()))
		Expect(err).NotTo(HaveOccurred())
		n2, err := destBank.Import(context.Background(), bytes.NewReader(buf.Bytes()))
		Expect(err).NotTo(HaveOccurred())
		Expect(n2).To(Equal(1))

		items, err := dest.List(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(items).To(HaveLen(1))
	})
})
