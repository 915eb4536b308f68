package bank

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// BM25 tuning constants, the conventional defaults (Robertson/Sparck-Jones).
const (
	bm25K1 = 1.2
	bm25B  = 0.75
)

var tokenPattern = regexp.MustCompile(`[a-z0-9]+`)

func tokenize(s string) []string {
	return tokenPattern.FindAllString(strings.ToLower(s), -1)
}

// bm25Index is the in-process fallback lexical ranker used when no
// full-text index backend (e.g. Typesense) is configured, per spec §4.6.
type bm25Index struct{}

func newBM25Index() *bm25Index { return &bm25Index{} }

// Rank scores every candidate's document view against query with BM25 and
// returns them ordered by descending score. Ties keep the candidates'
// input order (the sort is stable).
func (bm25Index) Rank(query string, candidates []candidateDoc) []scoredID {
	qTerms := tokenize(query)
	if len(qTerms) == 0 || len(candidates) == 0 {
		out := make([]scoredID, len(candidates))
		for i, c := range candidates {
			out[i] = scoredID{ID: c.ID, Score: 0}
		}
		return out
	}

	docTokens := make([][]string, len(candidates))
	avgLen := 0.0
	df := map[string]int{}
	for i, c := range candidates {
		toks := tokenize(c.Document)
		docTokens[i] = toks
		avgLen += float64(len(toks))
		seen := map[string]bool{}
		for _, t := range toks {
			if !seen[t] {
				seen[t] = true
				df[t]++
			}
		}
	}
	avgLen /= float64(len(candidates))

	n := float64(len(candidates))
	idf := map[string]float64{}
	for _, t := range qTerms {
		if _, ok := idf[t]; ok {
			continue
		}
		d := float64(df[t])
		idf[t] = math.Log(1 + (n-d+0.5)/(d+0.5))
	}

	out := make([]scoredID, len(candidates))
	for i, c := range candidates {
		tf := map[string]int{}
		for _, t := range docTokens[i] {
			tf[t]++
		}
		docLen := float64(len(docTokens[i]))

		score := 0.0
		for _, t := range qTerms {
			f := float64(tf[t])
			if f == 0 {
				continue
			}
			numerator := f * (bm25K1 + 1)
			denominator := f + bm25K1*(1-bm25B+bm25B*docLen/avgLen)
			score += idf[t] * numerator / denominator
		}
		out[i] = scoredID{ID: c.ID, Score: score}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}
