package graph_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"graphrlm.dev/core/internal/graph"
	"graphrlm.dev/core/internal/model"
)

var _ = Describe("HTTPRemoteClient", func() {
	It("parses a SELECT response into rows and columns", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Expect(r.Method).To(Equal(http.MethodPost))
			Expect(r.FormValue("query")).To(ContainSubstring("SELECT"))
			w.Header().Set("Content-Type", "application/sparql-results+json")
			fmt.Fprint(w, `{
				"head": {"vars": ["name"]},
				"results": {"bindings": [{"name": {"type": "literal", "value": "alice"}}]}
			}`)
		}))
		defer srv.Close()

		client := graph.NewHTTPRemoteClient()
		result, err := client.Query(context.Background(), srv.URL, "SELECT ?name WHERE { ?s ex:name ?name }", time.Second)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Kind).To(Equal(model.ResultKindRows))
		Expect(result.Columns).To(Equal([]string{"name"}))
		Expect(result.Rows).To(HaveLen(1))
		Expect(result.Rows[0]["name"]).To(Equal("alice"))
	})

	It("parses an ASK response into a scalar", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"head": {}, "boolean": true}`)
		}))
		defer srv.Close()

		client := graph.NewHTTPRemoteClient()
		result, err := client.Query(context.Background(), srv.URL, "ASK { ?s ?p ?o }", time.Second)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Kind).To(Equal(model.ResultKindScalar))
		Expect(result.Scalar).To(BeTrue())
	})

	It("wraps a non-2xx response as an error", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, "boom")
		}))
		defer srv.Close()

		client := graph.NewHTTPRemoteClient()
		_, err := client.Query(context.Background(), srv.URL, "ASK {}", time.Second)
		Expect(err).To(HaveOccurred())
	})

	It("respects the per-call timeout", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(50 * time.Millisecond)
			fmt.Fprint(w, `{"head": {}, "boolean": true}`)
		}))
		defer srv.Close()

		client := graph.NewHTTPRemoteClient()
		_, err := client.Query(context.Background(), srv.URL, "ASK {}", time.Millisecond)
		Expect(err).To(HaveOccurred())
	})
})
