package plan

import "strings"

// Print renders the plan shape as an indented listing: operator names,
// newline separated, pre-order DFS, two spaces per depth level. The output
// is a pure function of the DAG shape and operator names.
func Print(root *PlanNode) string {
	var b strings.Builder
	printNode(root, &b, 0)
	return b.String()
}

func printNode(n *PlanNode, b *strings.Builder, depth int) {
	if n == nil {
		return
	}
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(n.Op.Name())
	b.WriteString("\n")
	for _, c := range n.Children {
		printNode(c, b, depth+1)
	}
}
