package bank_test

import (
	"context"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"graphrlm.dev/core/common/llm"
	"graphrlm.dev/core/internal/bank"
	"graphrlm.dev/core/internal/graph/memstore"
	"graphrlm.dev/core/internal/interp"
	"graphrlm.dev/core/internal/model"
	"graphrlm.dev/core/internal/rlm"
	"graphrlm.dev/core/internal/store"
	"graphrlm.dev/core/internal/tools"
)

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

var answerSchema = rlm.OutputSchema{
	{Name: "answer", Required: true, Kind: "text"},
}

func newLifecycleSurface() *tools.Surface {
	triples := []memstore.Triple{
		{Subject: "ex:alice", Predicate: "rdf:type", Object: "ex:Employee"},
	}
	handle, meta, lib := memstore.LoadTriples("onto", triples, nil)
	return tools.New(context.Background(), lib, handle, meta, nil, nil, 10)
}

var _ = Describe("RunWithMemory", func() {
	It("retrieves, injects, runs, judges, persists, and extracts on a successful run", func() {
		memory := newFakeMemoryStore(model.MemoryItem{
			ID: "mem-1", Title: "Check employee type", Content: "- filter by rdf:type",
			Scope: model.Scope{Transferable: true},
		})
		trajectories := newFakeTrajectoryStore()
		judgments := newFakeJudgmentStore()
		usage := newFakeMemoryUsageStore()

		judge := &fakeJudge{responses: []any{
			map[string]any{"is_success": true, "reason": "ok", "confidence": "high", "missing": []string{}},
			map[string]any{"items": []map[string]any{
				{"title": "New lesson learned", "description": "d", "content": "c"},
			}},
		}}

		b := bank.New(&store.Stores{
			Memory: memory, Trajectories: trajectories, Judgments: judgments, MemoryUsage: usage,
		}, judge, nil)

		root := &fakeAgent{responses: []string{
			"```js\nSUBMIT({answer: \"alice is an employee\"})\n```",
		}}
		driver, err := rlm.New(root, newLifecycleSurface(), interp.New(0, 0), 5, answerSchema)
		Expect(err).NotTo(HaveOccurred())

		result, err := b.RunWithMemory(context.Background(), driver, bank.RunOptions{
			RunID: "run-1", TrajectoryID: "traj-1",
			Input:           rlm.Input{Query: "is alice an employee?"},
			RetrieveK:       3,
			ExtractMemories: true,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Prediction.Converged).To(BeTrue())
		Expect(result.Judgment.IsSuccess).To(BeTrue())
		Expect(result.RetrievedMemoryIDs).To(ContainElement("mem-1"))
		Expect(result.NewMemoryIDs).To(HaveLen(1))

		persisted, err := trajectories.Get(context.Background(), "traj-1")
		Expect(err).NotTo(HaveOccurred())
		Expect(persisted.Converged).To(BeTrue())

		Expect(usage.records).To(HaveLen(1))
		stored, err := memory.Get(context.Background(), "mem-1")
		Expect(err).NotTo(HaveOccurred())
		Expect(stored.AccessCount).To(Equal(int64(1)))
		Expect(stored.SuccessContextCount).To(Equal(int64(1)))
	})

	It("persists the partial trajectory and returns the driver's error without judging", func() {
		memory := newFakeMemoryStore()
		trajectories := newFakeTrajectoryStore()
		judgments := newFakeJudgmentStore()
		usage := newFakeMemoryUsageStore()
		judge := &fakeJudge{}

		b := bank.New(&store.Stores{
			Memory: memory, Trajectories: trajectories, Judgments: judgments, MemoryUsage: usage,
		}, judge, nil)

		root := &fakeAgent{} // no scripted responses: first call fails immediately
		driver, err := rlm.New(root, newLifecycleSurface(), interp.New(0, 0), 5, answerSchema)
		Expect(err).NotTo(HaveOccurred())

		_, err = b.RunWithMemory(context.Background(), driver, bank.RunOptions{
			RunID: "run-2", TrajectoryID: "traj-2",
			Input: rlm.Input{Query: "q"},
		})
		Expect(err).To(HaveOccurred())

		_, getErr := trajectories.Get(context.Background(), "traj-2")
		Expect(getErr).NotTo(HaveOccurred())

		_, judgeErr := judgments.Get(context.Background(), "traj-2")
		Expect(judgeErr).To(HaveOccurred())
	})
})
