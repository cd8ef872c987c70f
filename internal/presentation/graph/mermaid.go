// Package graph renders a workflow as Mermaid flowchart syntax, for CLI
// inspection and docs.
package graph

import (
	"fmt"
	"strings"

	"github.com/mosaicflow/mosaic/pkg/domain"
)

// Overlay contains run state to visualize on top of the structure.
type Overlay struct {
	Completed []string
	Failed    []string
}

// GenerateMermaid produces a Mermaid flowchart from a graph.
// Shapes carry the node's role:
//   - Prompt: [/Parallelogram/]
//   - Media inputs: [(Cylinder)]
//   - Generators and editors: [[Subroutine]]
//
// Edges are labeled with their handle pair when it is not the default.
func GenerateMermaid(nodes []domain.Node, edges []domain.Edge, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	for _, node := range nodes {
		safeID := sanitizeMermaidID(node.ID)

		opener, closer := "[", "]"
		switch node.Kind {
		case domain.KindPrompt:
			opener, closer = "[/", "/]"
		case domain.KindImageInput, domain.KindVideoInput, domain.KindFileInput:
			opener, closer = "[(", ")]"
		default:
			if node.Kind.Executable() {
				opener, closer = "[[", "]]"
			}
		}

		label := node.Data.Label
		if label == "" {
			label = string(node.Kind)
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, escapeLabel(label), closer))
	}

	for _, e := range edges {
		safeFrom := sanitizeMermaidID(e.Source)
		safeTo := sanitizeMermaidID(e.Target)

		arrow := "-->"
		if pair := handleLabel(e); pair != "" {
			arrow = fmt.Sprintf("-- \"%s\" -->", pair)
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", safeFrom, arrow, safeTo))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef completed fill:#e8f5e9,stroke:#2e7d32,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef failed fill:#ffebee,stroke:#c62828,stroke-width:2px,color:#000;\n")

		for _, id := range dedupe(overlay.Completed) {
			sb.WriteString(fmt.Sprintf("    class %s completed;\n", sanitizeMermaidID(id)))
		}
		for _, id := range dedupe(overlay.Failed) {
			sb.WriteString(fmt.Sprintf("    class %s failed;\n", sanitizeMermaidID(id)))
		}
	}

	return sb.String()
}

// handleLabel names the connection when the handles say more than "output to
// input", e.g. firstFrame or an ordered video slot.
func handleLabel(e domain.Edge) string {
	src, dst := e.SourceHandle, e.TargetHandle
	if src == domain.HandleResult || src == "" {
		src = ""
	}
	if dst == domain.HandleMedia || dst == "" {
		dst = ""
	}
	switch {
	case src == "" && dst == "":
		return ""
	case src == dst:
		return src
	case src == "":
		return dst
	case dst == "":
		return src
	}
	return src + " to " + dst
}

func escapeLabel(label string) string {
	return strings.ReplaceAll(label, "\"", "'")
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	var out []string
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
