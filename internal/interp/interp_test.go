package interp_test

import (
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"graphrlm.dev/core/internal/interp"
	"graphrlm.dev/core/internal/tools"
)

var _ = Describe("Interp", func() {
	var it *interp.Interp

	BeforeEach(func() {
		it = interp.New(0, 0)
		Expect(it.Start(nil)).To(Succeed())
	})

	Describe("text outcomes", func() {
		It("captures print() output", func() {
			outcome, err := it.Execute(`print("hello", "world")`, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome.Kind).To(Equal(interp.KindText))
			Expect(outcome.Output).To(Equal("hello world\n"))
		})

		It("prefixes stderr ahead of stdout", func() {
			outcome, err := it.Execute(`console.error("oops"); console.log("ok")`, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome.Kind).To(Equal(interp.KindText))
			Expect(outcome.Output).To(Equal("[stderr] oops\n[stdout] ok\n"))
		})

		It("truncates output past the configured limit", func() {
			small := interp.New(10, 0)
			Expect(small.Start(nil)).To(Succeed())
			outcome, err := small.Execute(`print("0123456789012345")`, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome.Truncated).To(BeTrue())
			Expect(outcome.Output).To(HaveSuffix("[...truncated at 10 chars]"))
		})
	})

	Describe("variables", func() {
		It("makes passed variables visible to the script", func() {
			outcome, err := it.Execute(`print(x + 1)`, map[string]any{"x": 41})
			Expect(err).NotTo(HaveOccurred())
			Expect(strings.TrimSpace(outcome.Output)).To(Equal("42"))
		})

		It("persists state across Execute calls on the same namespace", func() {
			_, err := it.Execute(`var counter = 0;`, nil)
			Expect(err).NotTo(HaveOccurred())
			outcome, err := it.Execute(`counter += 1; print(counter)`, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(strings.TrimSpace(outcome.Output)).To(Equal("1"))
		})
	})

	Describe("termination callables", func() {
		It("converts SUBMIT(fields) into a Terminal outcome", func() {
			outcome, err := it.Execute(`SUBMIT({answer: "42", sparql: "SELECT *"})`, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome.Kind).To(Equal(interp.KindTerminal))
			Expect(outcome.Payload["answer"]).To(Equal("42"))
			Expect(outcome.Payload["sparql"]).To(Equal("SELECT *"))
		})

		It("converts FINAL(text) into a Terminal outcome", func() {
			outcome, err := it.Execute(`FINAL("done")`, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome.Kind).To(Equal(interp.KindTerminal))
			Expect(outcome.Payload["text"]).To(Equal("done"))
		})

		It("converts FINAL_VAR(name) into a Terminal outcome using the variable's value", func() {
			outcome, err := it.Execute(`var answer = "via-var"; FINAL_VAR("answer")`, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome.Kind).To(Equal(interp.KindTerminal))
			Expect(outcome.Payload["text"]).To(Equal("via-var"))
		})

		It("surfaces FINAL_VAR on an undefined variable as a terminal error payload", func() {
			outcome, err := it.Execute(`FINAL_VAR("nope")`, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome.Kind).To(Equal(interp.KindTerminal))
			Expect(outcome.Payload["error"]).To(Equal("undefined-variable"))
		})
	})

	Describe("recoverable errors", func() {
		It("surfaces a script syntax error as RecoverableError, not a Go error", func() {
			outcome, err := it.Execute(`this is not valid js (((`, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome.Kind).To(Equal(interp.KindRecoverableError))
			Expect(outcome.ErrorClass).To(Equal(interp.ErrorClassScript))
		})

		It("surfaces a thrown exception as RecoverableError", func() {
			outcome, err := it.Execute(`throw new Error("boom")`, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome.Kind).To(Equal(interp.KindRecoverableError))
			Expect(outcome.Message).To(ContainSubstring("boom"))
		})

		It("times out a runaway loop as RecoverableError", func() {
			slow := interp.New(0, 50*time.Millisecond)
			Expect(slow.Start(nil)).To(Succeed())
			outcome, err := slow.Execute(`while (true) {}`, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome.Kind).To(Equal(interp.KindRecoverableError))
			Expect(outcome.ErrorClass).To(Equal(interp.ErrorClassTimeout))
		})
	})

	Describe("bound tools", func() {
		It("exposes tool definitions as callable globals", func() {
			withTool := interp.New(0, 0)
			defs := []tools.Definition{
				{Name: "echo", Doc: "Echo the given string.", Fn: func(s string) string { return "echo:" + s }},
			}
			Expect(withTool.Start(defs)).To(Succeed())
			outcome, err := withTool.Execute(`print(echo("hi"))`, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(strings.TrimSpace(outcome.Output)).To(Equal("echo:hi"))
		})
	})

	Describe("Shutdown", func() {
		It("clears the namespace so Execute can no longer run", func() {
			it.Shutdown()
			_, err := it.Execute(`print("after shutdown")`, nil)
			Expect(err).To(HaveOccurred())
		})
	})
})
