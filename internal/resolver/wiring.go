package resolver

import (
	"context"
	"fmt"
	"sort"
)

// Edge is one resolved DEPENDS_ON relationship between two beans.
type Edge struct {
	SrcPackage string
	SrcClass   string
	SrcBean    string
	DstPackage string
	DstClass   string
	DstBean    string
	Kind       string
	Name       string
	Type       string
}

func (e Edge) Src() string { return e.SrcPackage + "." + e.SrcClass }
func (e Edge) Dst() string { return e.DstPackage + "." + e.DstClass }

const readWiring = `
MATCH (src:Bean {project: $project})-[d:DEPENDS_ON]->(dst:Bean)
WHERE $kind = '' OR d.kind = $kind
RETURN src.package AS src_package, src.class AS src_class, src.name AS src_name,
       dst.package AS dst_package, dst.class AS dst_class, dst.name AS dst_name,
       d.kind AS kind, d.name AS name, d.type AS type
`

// ListWiring returns the resolved dependency edges of a project, optionally
// filtered by injection kind. Edges come back sorted by source, kind, name.
func (r *Resolver) ListWiring(ctx context.Context, project, kind string) ([]Edge, error) {
	rows, err := r.db.ReadQuery(ctx, readWiring, map[string]any{
		"project": project,
		"kind":    kind,
	})
	if err != nil {
		return nil, fmt.Errorf("read wiring: %w", err)
	}

	edges := make([]Edge, 0, len(rows))
	for _, row := range rows {
		edges = append(edges, Edge{
			SrcPackage: str(row["src_package"]),
			SrcClass:   str(row["src_class"]),
			SrcBean:    str(row["src_name"]),
			DstPackage: str(row["dst_package"]),
			DstClass:   str(row["dst_class"]),
			DstBean:    str(row["dst_name"]),
			Kind:       str(row["kind"]),
			Name:       str(row["name"]),
			Type:       str(row["type"]),
		})
	}

	sort.Slice(edges, func(i, j int) bool {
		ei, ej := edges[i], edges[j]
		if ei.SrcPackage != ej.SrcPackage {
			return ei.SrcPackage < ej.SrcPackage
		}
		if ei.SrcClass != ej.SrcClass {
			return ei.SrcClass < ej.SrcClass
		}
		if ei.Kind != ej.Kind {
			return ei.Kind < ej.Kind
		}
		if ei.Name != ej.Name {
			return ei.Name < ej.Name
		}
		return ei.Dst() < ej.Dst()
	})

	return edges, nil
}
