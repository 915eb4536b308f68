package sqlc

import "time"

// Run mirrors the runs table (spec §6).
type Run struct {
	RunID        string
	CreatedAt    time.Time
	ModelID      string
	OntologyID   string
	OntologyPath string
	Notes        string
}

// Trajectory mirrors the trajectories table.
type Trajectory struct {
	TrajectoryID   string
	RunID          string
	TaskQuery      string
	FinalAnswer    string
	IterationCount int32
	Converged      bool
	ArtifactDoc    []byte // JSON-encoded trajectory artifact
	LogRef         string
	CreatedAt      time.Time
}

// Judgment mirrors the judgments table.
type Judgment struct {
	TrajectoryID string
	IsSuccess    bool
	Reason       string
	Confidence   string
	MissingDoc   []byte // JSON-encoded []string
}

// MemoryItem mirrors the memory_items table.
type MemoryItem struct {
	MemoryID      string
	Title         string
	Description   string
	Content       string
	SourceType    string
	TaskQuery     string
	CreatedAt     time.Time
	TagsDoc       []byte // JSON-encoded []string
	ScopeDoc      []byte // JSON-encoded model.Scope
	ProvenanceDoc []byte // JSON-encoded model.Provenance
	AccessCount   int64
	SuccessCount  int64
	FailureCount  int64
}

// MemoryUsage mirrors the memory_usage table.
type MemoryUsage struct {
	TrajectoryID string
	MemoryID     string
	Rank         int32
	Score        float64
}
