package bank

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/google/uuid"

	"graphrlm.dev/core/internal/model"
)

// NewPackID generates a fresh pack identifier for Export. Pack identifiers
// have no content to hash against (a pack is a selection, not a document),
// so they're assigned rather than derived.
func NewPackID() string {
	return uuid.NewString()
}

// PackVersion is the pack file format version this Bank writes and reads.
const PackVersion = "1"

// packLine is the line-delimited JSON shape both the meta header and each
// memory record are read as, discriminated by Type, per spec §4.6's
// "Import / export packs".
type packLine struct {
	Type      string    `json:"type"` // "meta" or "memory"
	PackID    string    `json:"pack_id,omitempty"`
	Version   string    `json:"version,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`

	// Memory record fields (Type == "memory"); the full field set per
	// spec §6's pack file format ("carry the full memory-item field set
	// including its stable identifier").
	ID                   string               `json:"id,omitempty"`
	Title                string               `json:"title,omitempty"`
	Description          string               `json:"description,omitempty"`
	Content              string               `json:"content,omitempty"`
	SourceType           model.SourceType     `json:"source_type,omitempty"`
	TaskQuery            string               `json:"task_query,omitempty"`
	ItemCreatedAt        time.Time            `json:"item_created_at,omitempty"`
	Tags                 []string             `json:"tags,omitempty"`
	Scope                model.Scope          `json:"scope,omitempty"`
	Provenance           model.Provenance     `json:"provenance,omitempty"`
	AccessCount          int64                `json:"access_count,omitempty"`
	SuccessContextCount  int64                `json:"success_count,omitempty"`
	FailureContextCount  int64                `json:"failure_count,omitempty"`
	ComplexityLevel      string               `json:"complexity_level,omitempty"`
	Steps                []model.ExemplarStep `json:"steps,omitempty"`
}

// ExportFilter selects which memory items Export writes.
type ExportFilter struct {
	SourceType     model.SourceType // zero value = any
	OntologyID     string           // non-empty restricts to items whose scope admits it
	MinAccessCount int64
}

// Export writes a pack: one meta header line, then one memory record per
// matching item, deterministically ordered by identifier.
func (b *Bank) Export(ctx context.Context, w io.Writer, packID string, filter ExportFilter) error {
	items, err := b.stores.Memory.List(ctx)
	if err != nil {
		return fmt.Errorf("listing memory corpus: %w", err)
	}

	matched := make([]model.MemoryItem, 0, len(items))
	for _, item := range items {
		if filter.SourceType != "" && item.SourceType != filter.SourceType {
			continue
		}
		if filter.OntologyID != "" && !item.Scope.Admits(filter.OntologyID) {
			continue
		}
		if item.AccessCount < filter.MinAccessCount {
			continue
		}
		matched = append(matched, item)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	enc := json.NewEncoder(w)
	if err := enc.Encode(packLine{Type: "meta", PackID: packID, Version: PackVersion, CreatedAt: time.Now()}); err != nil {
		return fmt.Errorf("writing pack header: %w", err)
	}
	for _, item := range matched {
		if err := enc.Encode(toPackLine(item)); err != nil {
			return fmt.Errorf("writing memory record %s: %w", item.ID, err)
		}
	}
	return nil
}

// Import reads a pack and upserts every memory record into the store.
// Import is idempotent by identifier: re-importing the same pack into a
// populated store only bumps existing items' counters, per spec §4.6 and
// the Store procedure's collision behaviour.
func (b *Bank) Import(ctx context.Context, r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	imported := 0
	var packID string
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var pl packLine
		if err := json.Unmarshal(line, &pl); err != nil {
			return imported, fmt.Errorf("parsing pack line: %w", err)
		}
		if pl.Type == "meta" {
			packID = pl.PackID
			continue
		}
		if pl.Type != "memory" {
			continue
		}
		item := fromPackLine(pl)
		item.Provenance.PackID = packID
		if _, err := b.stores.Memory.Upsert(ctx, item); err != nil {
			return imported, fmt.Errorf("importing memory %s: %w", item.ID, err)
		}
		imported++
	}
	return imported, scanner.Err()
}

func toPackLine(item model.MemoryItem) packLine {
	return packLine{
		Type:                 "memory",
		ID:                   item.ID,
		Title:                item.Title,
		Description:          item.Description,
		Content:              item.Content,
		SourceType:           item.SourceType,
		TaskQuery:            item.TaskQuery,
		ItemCreatedAt:        item.CreatedAt,
		Tags:                 item.Tags,
		Scope:                item.Scope,
		Provenance:           item.Provenance,
		AccessCount:          item.AccessCount,
		SuccessContextCount:  item.SuccessContextCount,
		FailureContextCount:  item.FailureContextCount,
		ComplexityLevel:      item.ComplexityLevel,
		Steps:                item.Steps,
	}
}

func fromPackLine(pl packLine) model.MemoryItem {
	return model.MemoryItem{
		ID:                   pl.ID,
		Title:                pl.Title,
		Description:          pl.Description,
		Content:              pl.Content,
		SourceType:           pl.SourceType,
		TaskQuery:            pl.TaskQuery,
		CreatedAt:            pl.ItemCreatedAt,
		Tags:                 pl.Tags,
		Scope:                pl.Scope,
		Provenance:           pl.Provenance,
		AccessCount:          pl.AccessCount,
		SuccessContextCount:  pl.SuccessContextCount,
		FailureContextCount:  pl.FailureContextCount,
		ComplexityLevel:      pl.ComplexityLevel,
		Steps:                pl.Steps,
	}
}
