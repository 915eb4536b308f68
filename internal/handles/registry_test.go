package handles_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"graphrlm.dev/core/internal/handles"
	"graphrlm.dev/core/internal/model"
)

var _ = Describe("Registry", func() {
	var reg *handles.Registry

	BeforeEach(func() {
		reg = handles.New()
	})

	It("returns not-found for an unregistered name", func() {
		_, ok := reg.Get("missing")
		Expect(ok).To(BeFalse())
	})

	It("stores and retrieves a handle by name", func() {
		h := model.ResultHandle{Name: "x", Kind: model.ResultKindRows, RowCount: 2}
		reg.Put("x", h)

		got, ok := reg.Get("x")
		Expect(ok).To(BeTrue())
		Expect(got.RowCount).To(Equal(2))
	})

	It("silently replaces a prior write to the same name", func() {
		reg.Put("x", model.ResultHandle{Name: "x", RowCount: 1})
		reg.Put("x", model.ResultHandle{Name: "x", RowCount: 99})

		got, _ := reg.Get("x")
		Expect(got.RowCount).To(Equal(99))
	})

	It("drops every entry on Drop", func() {
		reg.Put("x", model.ResultHandle{Name: "x"})
		reg.Drop()

		_, ok := reg.Get("x")
		Expect(ok).To(BeFalse())
	})

	Describe("bounded views", func() {
		BeforeEach(func() {
			reg.Put("people", model.ResultHandle{
				Name: "people",
				Kind: model.ResultKindRows,
				Rows: []map[string]string{
					{"name": "alice", "dept": "eng"},
					{"name": "bob", "dept": "eng"},
					{"name": "carol", "dept": "sales"},
					{"name": "dave", "dept": "sales"},
					{"name": "erin", "dept": "ops"},
				},
			})
		})

		It("Head returns the first n rows", func() {
			rows, err := reg.Head("people", 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(2))
			Expect(rows[0]["name"]).To(Equal("alice"))
		})

		It("Head clamps n to the row count", func() {
			rows, err := reg.Head("people", 100)
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(5))
		})

		It("Where filters by an equality predicate", func() {
			rows, err := reg.Where("people", "dept", handles.EqualsPredicate("eng"))
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(2))
		})

		It("Where filters by a substring predicate", func() {
			rows, err := reg.Where("people", "name", handles.ContainsPredicate("ar"))
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(1))
			Expect(rows[0]["name"]).To(Equal("carol"))
		})

		It("Group buckets by column value, ordered by descending count", func() {
			groups, err := reg.Group("people", "dept")
			Expect(err).NotTo(HaveOccurred())
			Expect(groups[0].Value).To(Equal("eng"))
			Expect(groups[0].Count).To(Equal(2))
		})

		It("Distinct returns first-seen unique values", func() {
			values, err := reg.Distinct("people", "dept")
			Expect(err).NotTo(HaveOccurred())
			Expect(values).To(Equal([]string{"eng", "sales", "ops"}))
		})

		It("returns ErrNoSuchHandle for view operations on an unknown name", func() {
			_, err := reg.Head("nope", 1)
			Expect(err).To(Equal(handles.ErrNoSuchHandle{Name: "nope"}))
		})
	})
})
