package backlog

import "github.com/visionhq/backlog-backend/internal/entity"

// WorkItemNode is one work item with its children nested, as returned by the
// items endpoint.
type WorkItemNode struct {
	entity.WorkItem
	Children []*WorkItemNode `json:"children,omitempty"`
}

// toItemTree nests a flat work item slice into parent/child trees. Items whose
// parent is missing from the slice are treated as roots.
func toItemTree(items []entity.WorkItem) []*WorkItemNode {
	nodes := make(map[string]*WorkItemNode, len(items))
	for i := range items {
		nodes[items[i].ID] = &WorkItemNode{WorkItem: items[i]}
	}

	var roots []*WorkItemNode
	for i := range items {
		node := nodes[items[i].ID]
		if items[i].ParentID != nil {
			if parent, ok := nodes[*items[i].ParentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}

	return roots
}
