// Package report renders analysis products (bean wiring, CRUD matrix) as
// Markdown, XLSX workbooks, and Graphviz DOT.
package report

import (
	"fmt"
	"strings"
	"time"

	"javamap/internal/crud"
	"javamap/internal/resolver"
)

// RenderMarkdown renders the wiring list and the CRUD matrix as one
// Markdown document.
func RenderMarkdown(project string, edges []resolver.Edge, matrix *crud.Matrix) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# javamap report: %s\n\n", project))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", time.Now().Format(time.RFC3339)))

	sb.WriteString("## Bean wiring\n\n")
	if len(edges) == 0 {
		sb.WriteString("No resolved dependencies.\n\n")
	} else {
		sb.WriteString("| Source | Kind | Name | Declared type | Target |\n")
		sb.WriteString("|--------|------|------|---------------|--------|\n")
		for _, e := range edges {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s |\n",
				e.Src(), e.Kind, e.Name, e.Type, e.Dst()))
		}
		sb.WriteString(fmt.Sprintf("\n%d dependencies.\n\n", len(edges)))
	}

	sb.WriteString("## CRUD matrix\n\n")
	if matrix == nil || len(matrix.Rows) == 0 {
		sb.WriteString("No table access found.\n")
		return sb.String()
	}
	sb.WriteString("| Package | Class | Method | Schema | Table | Ops |\n")
	sb.WriteString("|---------|-------|--------|--------|-------|-----|\n")
	for _, row := range matrix.Rows {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s |\n",
			row.Package, row.Class, row.Method, row.Schema, row.Table,
			strings.Join(row.Ops, ",")))
	}
	sb.WriteString(fmt.Sprintf("\nTotal: %d rows", matrix.Total))
	if matrix.Skipped > 0 {
		sb.WriteString(fmt.Sprintf(" (%d malformed tuples skipped)", matrix.Skipped))
	}
	sb.WriteString("\n")

	return sb.String()
}
