package tools_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"graphrlm.dev/core/internal/graph/memstore"
	"graphrlm.dev/core/internal/tools"
)

var _ = Describe("ontology exploration tools", func() {
	var surface *tools.Surface

	BeforeEach(func() {
		triples := []memstore.Triple{
			{Subject: "ex:Person", Predicate: "rdf:type", Object: "owl:Class"},
			{Subject: "ex:Person", Predicate: "rdfs:label", Object: "Person"},
			{Subject: "ex:Employee", Predicate: "rdf:type", Object: "owl:Class"},
			{Subject: "ex:Employee", Predicate: "rdfs:subClassOf", Object: "ex:Person"},
			{Subject: "ex:worksFor", Predicate: "rdf:type", Object: "owl:ObjectProperty"},
			{Subject: "ex:worksFor", Predicate: "rdfs:domain", Object: "ex:Employee"},
			{Subject: "ex:worksFor", Predicate: "rdfs:range", Object: "ex:Organization"},
		}
		handle, meta, lib := memstore.LoadTriples("onto", triples, nil)
		surface = tools.New(context.Background(), lib, handle, meta, nil, nil, 10)
	})

	Describe("SearchEntity", func() {
		It("returns an exact-label match", func() {
			result := surface.SearchEntity("Person", 10)
			matches, ok := result.([]map[string]any)
			Expect(ok).To(BeTrue())
			Expect(matches).To(HaveLen(1))
			Expect(matches[0]["identifier"]).To(Equal("ex:Person"))
			Expect(matches[0]["match_kind"]).To(Equal("exact-label"))
		})

		It("returns a not-found error dict when nothing matches", func() {
			result := surface.SearchEntity("NoSuchThing", 10)
			dict, ok := result.(map[string]any)
			Expect(ok).To(BeTrue())
			Expect(dict["error"]).To(Equal("not-found"))
		})
	})

	Describe("ClassHierarchy", func() {
		It("nests direct subclasses under the root", func() {
			result := surface.ClassHierarchy("ex:Person", 2)
			node, ok := result.(map[string]any)
			Expect(ok).To(BeTrue())
			Expect(node["identifier"]).To(Equal("ex:Person"))
			children, ok := node["children"].([]map[string]any)
			Expect(ok).To(BeTrue())
			Expect(children).To(HaveLen(1))
			Expect(children[0]["identifier"]).To(Equal("ex:Employee"))
		})
	})

	Describe("PredicateFrequency", func() {
		It("ranks worksFor by its domain/range binding count", func() {
			result := surface.PredicateFrequency(20)
			entries, ok := result.([]map[string]any)
			Expect(ok).To(BeTrue())
			Expect(entries).NotTo(BeEmpty())
			Expect(entries[0]["predicate"]).To(Equal("ex:worksFor"))
		})
	})

	Describe("ProbeRelationships", func() {
		It("returns a not-found error dict for an identifier with no relationships", func() {
			result := surface.ProbeRelationships("ex:Person", 15)
			dict, ok := result.(map[string]any)
			Expect(ok).To(BeTrue())
			Expect(dict["error"]).To(Equal("not-found"))
		})

		It("lists the outbound relationship for the domain class", func() {
			result := surface.ProbeRelationships("ex:Employee", 15)
			entries, ok := result.([]map[string]any)
			Expect(ok).To(BeTrue())
			Expect(entries).To(HaveLen(1))
			Expect(entries[0]["direction"]).To(Equal("out"))
			Expect(entries[0]["neighbour"]).To(Equal("ex:Organization"))
		})
	})
})
