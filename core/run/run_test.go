package run_test

import (
	"context"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"graphrlm.dev/core/core/run"
	"graphrlm.dev/core/internal/graph/memstore"
	"graphrlm.dev/core/internal/model"
)

func writeOntologyFile(contents string) string {
	f, err := os.CreateTemp("", "ontology-*.nt")
	Expect(err).NotTo(HaveOccurred())
	_, err = f.WriteString(contents)
	Expect(err).NotTo(HaveOccurred())
	Expect(f.Close()).To(Succeed())
	DeferCleanup(func() { os.Remove(f.Name()) })
	return f.Name()
}

var _ = Describe("Run", func() {
	It("loads the ontology, drives the lifecycle, and reports retrieved and new memory ids", func() {
		path := writeOntologyFile("ex:alice rdf:type ex:Employee .\n")

		stores := newFakeStores()
		seeded := model.MemoryItem{
			ID: "mem-seed", Title: "Check employee type", Content: "- filter by rdf:type",
			Scope: model.Scope{Transferable: true},
		}
		stores.Memory.(*fakeMemoryStore).items[seeded.ID] = seeded

		judge := &fakeJudge{responses: []any{
			map[string]any{"is_success": true, "reason": "ok", "confidence": "high", "missing": []string{}},
			map[string]any{"items": []map[string]any{
				{"title": "New lesson", "description": "d", "content": "c"},
			}},
		}}

		deps := run.Deps{
			Library: memstore.New(),
			Root: &fakeAgent{responses: []string{
				"```js\nSUBMIT({answer: \"alice is an employee\", sparql: \"ASK {}\", evidence: {}})\n```",
			}},
			Judge:  judge,
			Stores: stores,
		}

		result, err := run.Run(context.Background(), deps, "is alice an employee?", path, run.DefaultOptions())
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Converged).To(BeTrue())
		Expect(result.Fields["answer"]).To(Equal("alice is an employee"))
		Expect(result.RetrievedMemoryIDs).To(ContainElement("mem-seed"))
		Expect(result.NewMemoryIDs).To(HaveLen(1))
		Expect(result.IterationCount).To(BeNumerically(">=", 1))

		_, getErr := stores.Runs.Get(context.Background(), result.Trajectory.RunID)
		Expect(getErr).NotTo(HaveOccurred())
	})

	It("seeds human-provided memories before retrieval", func() {
		path := writeOntologyFile("ex:bob rdf:type ex:Employee .\n")

		stores := newFakeStores()
		judge := &fakeJudge{responses: []any{
			map[string]any{"is_success": true, "reason": "ok", "confidence": "high", "missing": []string{}},
		}}

		opts := run.DefaultOptions()
		opts.ExtractMemories = false
		opts.SeedMemories = []model.MemoryItem{
			{Title: "Look for rdf:type triples", Content: "- use sparql_local", Scope: model.Scope{Transferable: true}},
		}

		deps := run.Deps{
			Library: memstore.New(),
			Root: &fakeAgent{responses: []string{
				"```js\nSUBMIT({answer: \"bob is an employee\", sparql: \"ASK {}\", evidence: {}})\n```",
			}},
			Judge:  judge,
			Stores: stores,
		}

		result, err := run.Run(context.Background(), deps, "is bob an employee?", path, opts)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Converged).To(BeTrue())

		seeded, err := stores.Memory.List(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(seeded).To(HaveLen(1))
		Expect(seeded[0].SourceType).To(Equal(model.SourceTypeHumanSeed))
	})

	It("surfaces the ontology load error without touching the run store", func() {
		stores := newFakeStores()
		deps := run.Deps{
			Library: memstore.New(),
			Root:    &fakeAgent{},
			Judge:   &fakeJudge{},
			Stores:  stores,
		}

		_, err := run.Run(context.Background(), deps, "q", "/nonexistent/path", run.DefaultOptions())
		Expect(err).To(HaveOccurred())
		Expect(stores.Runs.(*fakeRunStore).byID).To(BeEmpty())
	})
})
