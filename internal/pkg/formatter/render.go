package formatter

import (
	"fmt"
	"strings"

	"github.com/visionhq/backlog-backend/internal/entity"
)

// RenderBacklog flattens a job's work item tree into the plain text fed to
// the format-specific writers. Items are grouped under their parents in
// position order; orphans (parent missing from the slice) are skipped.
func RenderBacklog(job *entity.BacklogJob, items []entity.WorkItem) string {
	byParent := make(map[string][]entity.WorkItem)
	var roots []entity.WorkItem
	for _, item := range items {
		if item.ParentID == nil {
			roots = append(roots, item)
			continue
		}
		byParent[*item.ParentID] = append(byParent[*item.ParentID], item)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Vision: %s\n", job.Vision)
	fmt.Fprintf(&b, "Domain: %s\n\n", job.Domain)

	for _, root := range roots {
		renderItem(&b, root, byParent, 0)
	}

	return b.String()
}

var kindHeadings = map[entity.WorkItemKind]string{
	entity.KindEpic:      "Epic",
	entity.KindFeature:   "Feature",
	entity.KindUserStory: "User Story",
	entity.KindTask:      "Task",
}

func renderItem(b *strings.Builder, item entity.WorkItem, byParent map[string][]entity.WorkItem, depth int) {
	indent := strings.Repeat("  ", depth)
	heading := kindHeadings[item.Kind]
	if heading == "" {
		heading = string(item.Kind)
	}

	fmt.Fprintf(b, "%s%s %d: %s\n", indent, heading, item.Position+1, item.Title)
	fmt.Fprintf(b, "%s  %s\n", indent, item.Description)
	if item.Priority != "" {
		fmt.Fprintf(b, "%s  Priority: %s | Quality: %s (%d)\n", indent, item.Priority, item.QualityRating, item.QualityScore)
	}
	for _, criterion := range item.AcceptanceCriteria {
		fmt.Fprintf(b, "%s  - %s\n", indent, criterion)
	}
	b.WriteString("\n")

	for _, child := range byParent[item.ID] {
		renderItem(b, child, byParent, depth+1)
	}
}
