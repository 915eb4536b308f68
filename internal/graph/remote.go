package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"graphrlm.dev/core/internal/model"
)

// HTTPRemoteClient is the reference RemoteClient: a plain HTTP POST against
// a SPARQL 1.1 protocol endpoint, decoding the standard SPARQL JSON results
// format, per spec §6's "Remote SPARQL endpoint (optional): HTTP POST with
// standard SPARQL query parameters; JSON-results ingestion."
type HTTPRemoteClient struct {
	client *http.Client
}

// NewHTTPRemoteClient builds a RemoteClient around one shared *http.Client
// with no fixed timeout; each Query call applies its own timeout through
// the request context.
func NewHTTPRemoteClient() *HTTPRemoteClient {
	return &HTTPRemoteClient{client: &http.Client{}}
}

// sparqlJSONResults is the SPARQL 1.1 Query Results JSON Format.
type sparqlJSONResults struct {
	Head struct {
		Vars []string `json:"vars"`
	} `json:"head"`
	Results *struct {
		Bindings []map[string]sparqlJSONTerm `json:"bindings"`
	} `json:"results"`
	Boolean *bool `json:"boolean"` // present for ASK queries
}

type sparqlJSONTerm struct {
	Value string `json:"value"`
}

func (c *HTTPRemoteClient) Query(ctx context.Context, endpoint, query string, timeout time.Duration) (QueryResult, error) {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	form := url.Values{"query": {query}}
	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return QueryResult{}, fmt.Errorf("building sparql request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/sparql-results+json")

	resp, err := c.client.Do(req)
	if err != nil {
		return QueryResult{}, fmt.Errorf("sparql endpoint request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return QueryResult{}, fmt.Errorf("reading sparql response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return QueryResult{}, fmt.Errorf("sparql endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var parsed sparqlJSONResults
	if err := json.Unmarshal(body, &parsed); err != nil {
		return QueryResult{}, fmt.Errorf("parsing sparql json results: %w", err)
	}

	if parsed.Boolean != nil {
		return QueryResult{Kind: model.ResultKindScalar, Scalar: *parsed.Boolean}, nil
	}
	if parsed.Results == nil {
		return QueryResult{Kind: model.ResultKindRows, Columns: parsed.Head.Vars}, nil
	}

	rows := make([]Binding, 0, len(parsed.Results.Bindings))
	for _, binding := range parsed.Results.Bindings {
		row := make(Binding, len(binding))
		for k, term := range binding {
			row[k] = term.Value
		}
		rows = append(rows, row)
	}
	return QueryResult{Kind: model.ResultKindRows, Rows: rows, Columns: parsed.Head.Vars}, nil
}
