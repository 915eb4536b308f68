package bank

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"graphrlm.dev/core/internal/model"
)

// curriculumLevels orders the exemplar complexity tags from least to most
// advanced, used to find "adjacent" levels per spec §4.6.
var curriculumLevels = []string{"L1", "L2", "L3", "L4", "L5"}

// candidateDoc is one memory item's document view fed to an Index: the
// concatenation of title, description, and tags the full-text index (or
// its in-process fallback) ranks against, per spec §4.6's
// `title ‖ description ‖ tags`.
type candidateDoc struct {
	ID       string
	Document string
}

// scoredID is one ranked result from an Index.
type scoredID struct {
	ID    string
	Score float64
}

// RetrievedItem is one memory item surfaced by Retrieve, carrying the rank
// and score a memory-usage record will be keyed on.
type RetrievedItem struct {
	Item  model.MemoryItem
	Rank  int
	Score float64
}

// Retrieve ranks the memory corpus against query, restricted to items
// whose scope admits ontologyID, preferring items tagged at
// curriculumLevel then adjacent levels (curriculumLevel may be empty to
// skip level preference), and returns up to k items ordered per spec
// §4.6's Retrieve procedure.
func (b *Bank) Retrieve(ctx context.Context, query, ontologyID, curriculumLevel string, k int) ([]RetrievedItem, error) {
	if k <= 0 {
		k = DefaultRetrieveK
	}

	all, err := b.stores.Memory.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing memory corpus: %w", err)
	}

	admitted := make([]model.MemoryItem, 0, len(all))
	for _, item := range all {
		if item.Scope.Admits(ontologyID) {
			admitted = append(admitted, item)
		}
	}
	if len(admitted) == 0 {
		return nil, nil
	}

	byID := make(map[string]model.MemoryItem, len(admitted))
	candidates := make([]candidateDoc, 0, len(admitted))
	for _, item := range admitted {
		byID[item.ID] = item
		candidates = append(candidates, candidateDoc{ID: item.ID, Document: documentView(item)})
	}

	ranked := b.index.Rank(query, candidates)

	groups := groupByLevelDistance(ranked, byID, curriculumLevel)

	out := make([]RetrievedItem, 0, k)
	for _, group := range groups {
		for _, sid := range group {
			if len(out) >= k {
				return out, nil
			}
			out = append(out, RetrievedItem{Item: byID[sid.ID], Rank: len(out) + 1, Score: sid.Score})
		}
	}
	return out, nil
}

// documentView renders the title ‖ description ‖ tags document a lexical
// index ranks against.
func documentView(item model.MemoryItem) string {
	return item.Title + " " + item.Description + " " + strings.Join(item.Tags, " ")
}

// groupByLevelDistance partitions ranked results into curriculum-distance
// buckets (matching level first, then each adjacent distance in turn),
// each bucket internally still ordered by lexical score, and stable-sorts
// meta-analysis items ahead of single-trajectory items within ties per
// spec §4.6 ("rank above single-trajectory items during retrieval ties").
// When curriculumLevel is empty, everything lands in one bucket.
func groupByLevelDistance(ranked []scoredID, byID map[string]model.MemoryItem, curriculumLevel string) [][]scoredID {
	if curriculumLevel == "" {
		sortMetaAnalysisFirst(ranked, byID)
		return [][]scoredID{ranked}
	}

	target := levelIndex(curriculumLevel)
	if target < 0 {
		sortMetaAnalysisFirst(ranked, byID)
		return [][]scoredID{ranked}
	}

	byDistance := map[int][]scoredID{}
	var distances []int
	for _, sid := range ranked {
		item := byID[sid.ID]
		lvl := levelIndex(item.ComplexityLevel)
		dist := len(curriculumLevels) // unclassified items sort last
		if lvl >= 0 {
			dist = abs(lvl - target)
		}
		if _, seen := byDistance[dist]; !seen {
			distances = append(distances, dist)
		}
		byDistance[dist] = append(byDistance[dist], sid)
	}
	sort.Ints(distances)

	groups := make([][]scoredID, 0, len(distances))
	for _, d := range distances {
		group := byDistance[d]
		sortMetaAnalysisFirst(group, byID)
		groups = append(groups, group)
	}
	return groups
}

// sortMetaAnalysisFirst stable-sorts by descending lexical score and, among
// items with equal scores, places meta-analysis items ahead of the others.
func sortMetaAnalysisFirst(ranked []scoredID, byID map[string]model.MemoryItem) {
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		iMeta := byID[ranked[i].ID].SourceType == model.SourceTypeMetaAnalysis
		jMeta := byID[ranked[j].ID].SourceType == model.SourceTypeMetaAnalysis
		return iMeta && !jMeta
	})
}

func levelIndex(level string) int {
	for i, l := range curriculumLevels {
		if l == level {
			return i
		}
	}
	return -1
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
