// Package graph renders workflow graphs as Mermaid flowcharts for the CLI
// and documentation.
package graph

import (
	"fmt"
	"strings"

	"github.com/weftlabs/weft/pkg/domain"
)

// GenerateMermaid produces Mermaid flowchart syntax for a graph.
// The entry node is drawn as a circle, the terminal pseudo-node as a double
// circle, conditional edges as dashed arrows with their label.
func GenerateMermaid(g *domain.Graph) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	hasEnd := false
	for _, node := range g.Nodes() {
		safeID := sanitizeMermaidID(node.ID)

		opener, closer := "[", "]"
		if node.ID == g.Entry() {
			opener, closer = "((", "))"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, node.DisplayLabel(), closer))

		edges := g.Edges(node.ID)
		if len(edges) == 0 {
			// Implicit terminal edge.
			sb.WriteString(fmt.Sprintf("    %s --> __end__\n", safeID))
			hasEnd = true
			continue
		}
		for _, e := range edges {
			safeTo := sanitizeMermaidID(e.To)
			if e.To == domain.End {
				safeTo = "__end__"
				hasEnd = true
			}
			arrow := "-->"
			if e.When != nil {
				arrow = "-. \"cond\" .->"
			}
			sb.WriteString(fmt.Sprintf("    %s %s %s\n", safeID, arrow, safeTo))
		}
	}

	if hasEnd {
		sb.WriteString("    __end__(((\"end\")))\n")
	}

	return sb.String()
}

// sanitizeMermaidID makes a node ID safe for Mermaid identifiers.
func sanitizeMermaidID(id string) string {
	r := strings.NewReplacer("/", "_", " ", "_", "-", "_", ".", "_")
	return r.Replace(id)
}
