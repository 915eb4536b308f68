package memstore_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"graphrlm.dev/core/internal/graph"
	"graphrlm.dev/core/internal/graph/memstore"
	"graphrlm.dev/core/internal/model"
)

var _ = Describe("Library", func() {
	var (
		ctx     context.Context
		triples []memstore.Triple
	)

	BeforeEach(func() {
		ctx = context.Background()
		triples = []memstore.Triple{
			{Subject: "ex:Person", Predicate: "rdf:type", Object: "owl:Class"},
			{Subject: "ex:Person", Predicate: "rdfs:label", Object: "Person"},
			{Subject: "ex:Person", Predicate: "rdfs:comment", Object: "A human being"},
			{Subject: "ex:Employee", Predicate: "rdf:type", Object: "owl:Class"},
			{Subject: "ex:Employee", Predicate: "rdfs:subClassOf", Object: "ex:Person"},
			{Subject: "ex:worksFor", Predicate: "rdf:type", Object: "owl:ObjectProperty"},
			{Subject: "ex:worksFor", Predicate: "rdfs:domain", Object: "ex:Employee"},
			{Subject: "ex:worksFor", Predicate: "rdfs:range", Object: "ex:Organization"},
			{Subject: "ex:alice", Predicate: "rdf:type", Object: "ex:Employee"},
			{Subject: "ex:alice", Predicate: "rdfs:label", Object: "Alice Smith"},
			{Subject: "ex:alice", Predicate: "ex:worksFor", Object: "ex:acme"},
			{Subject: "ex:bob", Predicate: "rdf:type", Object: "ex:Employee"},
			{Subject: "ex:bob", Predicate: "ex:worksFor", Object: "ex:acme"},
		}
	})

	Describe("LoadTriples", func() {
		It("derives classes, properties, labels, comments, subclasses, domains and ranges", func() {
			_, meta, _ := memstore.LoadTriples("onto-1", triples, map[string]string{"ex": "http://example.org/"})

			Expect(meta.OntologyID).To(Equal("onto-1"))
			Expect(meta.TripleCount).To(Equal(int64(len(triples))))
			Expect(meta.Classes).To(ConsistOf("ex:Person", "ex:Employee"))
			Expect(meta.ObjectProperties).To(ConsistOf("ex:worksFor"))
			Expect(meta.Labels["ex:Person"]).To(Equal("Person"))
			Expect(meta.Comments["ex:Person"]).To(Equal("A human being"))
			Expect(meta.Subclasses["ex:Person"]).To(ConsistOf("ex:Employee"))
			Expect(meta.Domains["ex:worksFor"]).To(ConsistOf("ex:Employee"))
			Expect(meta.Ranges["ex:worksFor"]).To(ConsistOf("ex:Organization"))
			Expect(meta.ReverseLabels["alice smith"]).To(ConsistOf("ex:alice"))
		})
	})

	Describe("Query", func() {
		It("executes a SELECT with a simple basic graph pattern", func() {
			handle, _, lib := memstore.LoadTriples("onto-2", triples, nil)

			result, err := lib.Query(ctx, handle, `SELECT ?p WHERE { ?p rdf:type ex:Employee . }`, 0)

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Columns).To(Equal([]string{"p"}))
			Expect(result.Rows).To(HaveLen(2))
		})

		It("joins across multiple patterns sharing a variable", func() {
			handle, _, lib := memstore.LoadTriples("onto-3", triples, nil)

			result, err := lib.Query(ctx, handle,
				`SELECT ?who ?org WHERE { ?who rdf:type ex:Employee . ?who ex:worksFor ?org . }`, 0)

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Rows).To(HaveLen(2))
			for _, row := range result.Rows {
				Expect(row["org"]).To(Equal("ex:acme"))
			}
		})

		It("injects the provided limit when the query omits its own", func() {
			handle, _, lib := memstore.LoadTriples("onto-4", triples, nil)

			result, err := lib.Query(ctx, handle, `SELECT ?p WHERE { ?p rdf:type ex:Employee . }`, 1)

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Rows).To(HaveLen(1))
		})

		It("honors an explicit LIMIT clause over the caller's default", func() {
			handle, _, lib := memstore.LoadTriples("onto-5", triples, nil)

			result, err := lib.Query(ctx, handle, `SELECT ?p WHERE { ?p rdf:type ex:Employee . } LIMIT 1`, 50)

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Rows).To(HaveLen(1))
		})

		It("answers ASK with a scalar result", func() {
			handle, _, lib := memstore.LoadTriples("onto-6", triples, nil)

			result, err := lib.Query(ctx, handle, `ASK { ex:alice ex:worksFor ex:acme . }`, 0)

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Kind).To(Equal(model.ResultKindScalar))
			Expect(result.Scalar).To(BeTrue())
		})

		It("answers ASK false when no pattern matches", func() {
			handle, _, lib := memstore.LoadTriples("onto-7", triples, nil)

			result, err := lib.Query(ctx, handle, `ASK { ex:nobody ex:worksFor ex:acme . }`, 0)

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Scalar).To(BeFalse())
		})

		It("returns ErrNotFound for an unknown handle", func() {
			lib := memstore.New()

			_, err := lib.Query(ctx, unknownHandle{}, `ASK { ?s ?p ?o . }`, 0)

			Expect(err).To(MatchError(graph.ErrNotFound))
		})
	})

	Describe("Load", func() {
		It("returns ErrNotFound for a path that does not exist", func() {
			lib := memstore.New()

			_, _, err := lib.Load(ctx, "/nonexistent/ontology.nt")

			Expect(err).To(MatchError(graph.ErrNotFound))
		})
	})
})

type unknownHandle struct{}

func (unknownHandle) ID() string { return "does-not-exist" }
