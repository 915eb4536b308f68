package rlm_test

import (
	"context"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"graphrlm.dev/core/common/llm"
	"graphrlm.dev/core/internal/graph/memstore"
	"graphrlm.dev/core/internal/interp"
	"graphrlm.dev/core/internal/rlm"
	"graphrlm.dev/core/internal/tools"
)

// fakeAgent scripts a fixed sequence of root-model responses, one per call,
// so each test can drive the driver through a known path deterministically.
type fakeAgent struct {
	responses []string
	calls     int
}

func (f *fakeAgent) Model() string { return "fake-root" }

func (f *fakeAgent) ChatWithTools(ctx context.Context, req llm.AgentRequest) (*llm.AgentResponse, error) {
	i := f.calls
	f.calls++
	if i >= len(f.responses) {
		return nil, fmt.Errorf("fakeAgent: no scripted response for call %d", i)
	}
	return &llm.AgentResponse{Content: f.responses[i]}, nil
}

var answerSparqlSchema = rlm.OutputSchema{
	{Name: "answer", Required: true, Kind: "text"},
	{Name: "sparql", Required: true, Kind: "text"},
}

func newSurface() *tools.Surface {
	triples := []memstore.Triple{
		{Subject: "ex:alice", Predicate: "rdf:type", Object: "ex:Employee"},
	}
	handle, meta, lib := memstore.LoadTriples("onto", triples, nil)
	return tools.New(context.Background(), lib, handle, meta, nil, nil, 10)
}

var _ = Describe("Driver", func() {
	It("converges immediately when the first step calls SUBMIT", func() {
		root := &fakeAgent{responses: []string{
			"thinking about it\n```js\nSUBMIT({answer: \"42\", sparql: \"SELECT * WHERE {?s ?p ?o}\"})\n```",
		}}
		d, err := rlm.New(root, newSurface(), interp.New(0, 0), 5, answerSparqlSchema)
		Expect(err).NotTo(HaveOccurred())

		pred, err := d.Run(context.Background(), "run-1", "traj-1", rlm.Input{Query: "who works here?"})
		Expect(err).NotTo(HaveOccurred())
		Expect(pred.Converged).To(BeTrue())
		Expect(pred.Fields["answer"]).To(Equal("42"))
		Expect(pred.Trajectory.Converged).To(BeTrue())
		Expect(pred.Trajectory.IterationCount).To(Equal(1))
	})

	It("re-prompts on a SUBMIT missing a required field, then converges", func() {
		root := &fakeAgent{responses: []string{
			"```js\nSUBMIT({answer: \"42\"})\n```",
			"```js\nSUBMIT({answer: \"42\", sparql: \"SELECT * WHERE {?s ?p ?o}\"})\n```",
		}}
		d, err := rlm.New(root, newSurface(), interp.New(0, 0), 5, answerSparqlSchema)
		Expect(err).NotTo(HaveOccurred())

		pred, err := d.Run(context.Background(), "run-2", "traj-2", rlm.Input{Query: "q"})
		Expect(err).NotTo(HaveOccurred())
		Expect(pred.Converged).To(BeTrue())
		Expect(root.calls).To(Equal(2))
		Expect(pred.Trajectory.Entries).To(HaveLen(2))
		Expect(pred.Trajectory.Entries[0].Output).To(ContainSubstring("sparql"))
	})

	It("carries text output from one step into the next step's prompt", func() {
		root := &fakeAgent{responses: []string{
			"```js\nprint(\"exploring\")\n```",
			"```js\nSUBMIT({answer: \"ok\", sparql: \"SELECT * WHERE {?s ?p ?o}\"})\n```",
		}}
		d, err := rlm.New(root, newSurface(), interp.New(0, 0), 5, answerSparqlSchema)
		Expect(err).NotTo(HaveOccurred())

		pred, err := d.Run(context.Background(), "run-3", "traj-3", rlm.Input{Query: "q"})
		Expect(err).NotTo(HaveOccurred())
		Expect(pred.Converged).To(BeTrue())
		Expect(pred.Trajectory.Entries[0].Output).To(Equal("exploring\n"))
	})

	It("invokes extract fallback after two consecutive empty steps", func() {
		root := &fakeAgent{responses: []string{
			"just thinking, nothing to run yet",
			"still just thinking",
			`{"answer": "best guess", "sparql": "SELECT * WHERE {?s ?p ?o}"}`,
		}}
		d, err := rlm.New(root, newSurface(), interp.New(0, 0), 10, answerSparqlSchema)
		Expect(err).NotTo(HaveOccurred())

		pred, err := d.Run(context.Background(), "run-4", "traj-4", rlm.Input{Query: "q"})
		Expect(err).NotTo(HaveOccurred())
		Expect(pred.Converged).To(BeFalse())
		Expect(pred.Trajectory.Extracted).To(BeTrue())
		Expect(pred.Fields["answer"]).To(Equal("best guess"))
		Expect(root.calls).To(Equal(3))
	})

	It("invokes extract fallback once the iteration budget is exhausted", func() {
		root := &fakeAgent{responses: []string{
			"```js\nprint(\"still exploring\")\n```",
			`{"answer": "partial", "sparql": "SELECT * WHERE {?s ?p ?o}"}`,
		}}
		d, err := rlm.New(root, newSurface(), interp.New(0, 0), 1, answerSparqlSchema)
		Expect(err).NotTo(HaveOccurred())

		pred, err := d.Run(context.Background(), "run-5", "traj-5", rlm.Input{Query: "q"})
		Expect(err).NotTo(HaveOccurred())
		Expect(pred.Converged).To(BeFalse())
		Expect(pred.Trajectory.Extracted).To(BeTrue())
		Expect(pred.Fields["answer"]).To(Equal("partial"))
	})

	It("surfaces a script error as a recoverable step and keeps iterating", func() {
		root := &fakeAgent{responses: []string{
			"```js\nthis is not valid js (((\n```",
			"```js\nSUBMIT({answer: \"recovered\", sparql: \"SELECT * WHERE {?s ?p ?o}\"})\n```",
		}}
		d, err := rlm.New(root, newSurface(), interp.New(0, 0), 5, answerSparqlSchema)
		Expect(err).NotTo(HaveOccurred())

		pred, err := d.Run(context.Background(), "run-6", "traj-6", rlm.Input{Query: "q"})
		Expect(err).NotTo(HaveOccurred())
		Expect(pred.Converged).To(BeTrue())
		Expect(pred.Trajectory.Entries[0].ErrorClass).To(BeEquivalentTo("recoverable"))
	})
})
