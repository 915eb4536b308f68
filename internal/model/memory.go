package model

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"time"
)

// SourceType tags where a memory item came from.
type SourceType string

const (
	SourceTypeSuccess      SourceType = "success"
	SourceTypeFailure      SourceType = "failure"
	SourceTypeHumanSeed    SourceType = "human-seed"
	SourceTypePackImported SourceType = "pack-imported"
	SourceTypeMetaAnalysis SourceType = "meta-analysis"
	SourceTypeExemplar     SourceType = "exemplar"
)

// Field length caps from spec §3.
const (
	MaxMemoryTitleChars       = 120
	MaxMemoryDescriptionChars = 400
	MaxMemoryContentChars     = 4_000
	MaxMemoryInjectionChars   = 2_000
)

// Scope restricts which runs a memory item is eligible for retrieval by.
type Scope struct {
	Ontology     *string // nil == universal
	TaskTypes    []string
	Tools        []string
	Transferable bool
}

// Admits reports whether this scope permits retrieval for the given
// ontology id (empty string means "no ontology context").
func (s Scope) Admits(ontologyID string) bool {
	if s.Ontology == nil {
		return true
	}
	return *s.Ontology == ontologyID
}

// Provenance records where a memory item, or a supersession, came from.
type Provenance struct {
	Source              SourceType
	OriginatingTrajectory string
	OriginatingRun        string
	PackID                string
	Supersedes            []string // predecessor memory ids, for consolidation
}

// MemoryItem is the ReasoningBank's unit of procedural knowledge.
type MemoryItem struct {
	ID          string // first 16 hex digits of sha256(title || content || normalised-scope)
	Title       string
	Description string
	Content     string
	SourceType  SourceType
	TaskQuery   string
	CreatedAt   time.Time
	Tags        []string
	Scope       Scope
	Provenance  Provenance

	AccessCount        int64
	SuccessContextCount int64
	FailureContextCount int64

	// ComplexityLevel is only meaningful when SourceType == exemplar (L1-L5).
	ComplexityLevel string
	// Steps holds the ordered (state, action, result, verification) tuples
	// for an exemplar; empty for ordinary memory items.
	Steps []ExemplarStep
}

// ExemplarStep is one step of a reasoning-chain exemplar.
type ExemplarStep struct {
	State        string
	Action       string
	Result       string
	Verification string
}

// NormalisedScope renders a scope into the stable text fed to the content
// hash: sorted task types, sorted tools, the ontology id or "*".
func NormalisedScope(s Scope) string {
	ontology := "*"
	if s.Ontology != nil {
		ontology = *s.Ontology
	}
	return ontology + "|" + joinSorted(s.TaskTypes) + "|" + joinSorted(s.Tools)
}

// HashID computes the stable content-addressed identifier for a memory
// item: the first 16 hex digits of sha256(title || content || scope).
func HashID(title, content string, scope Scope) string {
	sum := sha256.Sum256([]byte(title + "\x1f" + content + "\x1f" + NormalisedScope(scope)))
	return hex.EncodeToString(sum[:])[:16]
}

func joinSorted(items []string) string {
	cp := append([]string(nil), items...)
	sort.Strings(cp)
	return strings.Join(cp, ",")
}

// MemoryUsage records one retrieval of a memory item during a run.
type MemoryUsage struct {
	TrajectoryID string
	MemoryID     string
	Rank         int
	Score        float64
}
