package normalization

import (
	"fmt"
	"strings"

	"github.com/learnloop/learnloop-backend/internal/types"
)

const (
	headingBlockMinutes = 2.0
	singleBlockMinutes  = 5.0
)

// SplitContent parses markdown into ordered content blocks, one per
// `## ` section. Text before the first heading becomes its own block.
// Content without any `## ` heading yields a single block.
func SplitContent(content string) []types.ContentBlock {
	if !hasSectionHeading(content) {
		return []types.ContentBlock{{
			ID:               "block_1",
			Type:             "content",
			Content:          strings.TrimSpace(content),
			Order:            1,
			EstimatedMinutes: singleBlockMinutes,
		}}
	}

	var blocks []types.ContentBlock
	var current strings.Builder
	counter := 1

	flush := func() {
		text := strings.TrimSpace(current.String())
		current.Reset()
		if text == "" {
			return
		}
		blocks = append(blocks, types.ContentBlock{
			ID:               fmt.Sprintf("block_%d", counter),
			Type:             "content",
			Content:          text,
			Order:            counter,
			EstimatedMinutes: headingBlockMinutes,
		})
		counter++
	}

	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "## ") && current.Len() > 0 {
			flush()
		}
		current.WriteString(line)
		current.WriteString("\n")
	}
	flush()

	return blocks
}

func hasSectionHeading(content string) bool {
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "## ") {
			return true
		}
	}
	return false
}
