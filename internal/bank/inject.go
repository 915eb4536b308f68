package bank

import (
	"fmt"
	"strings"

	"graphrlm.dev/core/internal/model"
)

// maxBulletsPerItem bounds the per-item rendering to "title + 2-4 bullet
// lines" per spec §4.6's Inject procedure.
const maxBulletsPerItem = 4

// Inject renders the retrieved items into the bounded "Procedural
// memories" section the driver prepends to a run's context. It stops before
// the first item whose block would push the running total past
// model.MaxMemoryInjectionChars; an item is never cut mid-way.
func Inject(items []RetrievedItem) string {
	if len(items) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Procedural memories (assess applicability before acting):\n")

	for _, ri := range items {
		block := renderItem(ri.Item)
		if b.Len()+len(block) > model.MaxMemoryInjectionChars {
			break
		}
		b.WriteString(block)
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderItem(item model.MemoryItem) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("- %s\n", item.Title))

	bullets := contentBullets(item.Content)
	for i, bullet := range bullets {
		if i >= maxBulletsPerItem {
			break
		}
		b.WriteString("  · ")
		b.WriteString(bullet)
		b.WriteString("\n")
	}
	return b.String()
}

// contentBullets splits a memory item's content into line-shaped bullets.
// Content with no line breaks yields a single bullet; the item's
// description is not used.
func contentBullets(content string) []string {
	var bullets []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "-"))
		if line != "" {
			bullets = append(bullets, line)
		}
	}
	return bullets
}
