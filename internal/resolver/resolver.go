// Package resolver wires beans together. It reads injection points and the
// bean index from the graph, matches declared types against bean types by
// exact string equality, and merges DEPENDS_ON edges. Matching is static
// name matching only: no inheritance, no generics unwrapping, no classpath.
package resolver

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"javamap/internal/facts"
	"javamap/internal/graphdb"
	"javamap/internal/logger"
)

// Injection point kinds.
const (
	KindField       = "field"
	KindConstructor = "constructor"
	KindSetter      = "setter"
)

const maxAmbiguousSamples = 5

// PassStats summarizes one resolution pass.
type PassStats struct {
	Kind      string   `json:"kind"`
	Points    int      `json:"points"`    // injection points seen
	Edges     int      `json:"edges"`     // DEPENDS_ON edges merged
	Misses    int      `json:"misses"`    // points whose type matched no bean
	Ambiguous int      `json:"ambiguous"` // points whose type matched more than one bean
	Samples   []string `json:"samples,omitempty"`
}

// Stats aggregates the whole resolution run.
type Stats struct {
	Beans  int         `json:"beans"`
	Passes []PassStats `json:"passes"`
	Errors []string    `json:"errors,omitempty"` // per-pass failures; a failed pass never stops the others
}

// TotalEdges sums merged edges across passes.
func (s *Stats) TotalEdges() int {
	n := 0
	for _, p := range s.Passes {
		n += p.Edges
	}
	return n
}

// TotalMisses sums lookup misses across passes.
func (s *Stats) TotalMisses() int {
	n := 0
	for _, p := range s.Passes {
		n += p.Misses
	}
	return n
}

// TotalAmbiguous sums ambiguous points across passes.
func (s *Stats) TotalAmbiguous() int {
	n := 0
	for _, p := range s.Passes {
		n += p.Ambiguous
	}
	return n
}

type beanRef struct {
	Package string
	Class   string
	Name    string
	Type    string
}

type injectionPoint struct {
	Package string // owning bean class
	Class   string
	Kind    string
	Name    string
	Type    string // verbatim declared type text
}

// Resolver performs dependency-injection resolution for one project.
type Resolver struct {
	db        graphdb.Querier
	log       *logger.Logger
	injection map[string]struct{}
}

// New creates a resolver. injectionAnnotations is the marker annotation set
// required on fields and setters (constructors need no marker).
func New(db graphdb.Querier, injectionAnnotations []string, log *logger.Logger) *Resolver {
	return &Resolver{
		db:        db,
		log:       log.With("component", "resolver"),
		injection: facts.NameSet(injectionAnnotations),
	}
}

const readBeans = `
MATCH (b:Bean {project: $project})
RETURN b.package AS package, b.class AS class, b.name AS name, b.type AS type
`

const readInjectedFields = `
MATCH (b:Bean {project: $project})
MATCH (f:Field {project: $project, package: b.package, class: b.class})
RETURN f.package AS package, f.class AS class, f.name AS name, f.type AS type,
       f.annotations AS annotations
`

const readConstructors = `
MATCH (b:Bean {project: $project})
MATCH (m:Method {project: $project, package: b.package, class: b.class})
WHERE m.name = m.class AND m.return_type = '' AND size(m.param_types) >= 1
RETURN m.package AS package, m.class AS class, m.param_names AS param_names,
       m.param_types AS param_types
`

const readSetters = `
MATCH (b:Bean {project: $project})
MATCH (m:Method {project: $project, package: b.package, class: b.class})
WHERE m.name STARTS WITH 'set' AND size(m.param_types) = 1
RETURN m.package AS package, m.class AS class, m.name AS name,
       m.param_names AS param_names, m.param_types AS param_types,
       m.annotations AS annotations
`

const mergeDepends = `
UNWIND $rows AS r
MATCH (src:Bean {project: $project, package: r.src_package, class: r.src_class})
MATCH (dst:Bean {project: $project, package: r.dst_package, class: r.dst_class})
MERGE (src)-[d:DEPENDS_ON {kind: r.kind, name: r.name}]->(dst)
SET d.type = r.type
`

// Resolve runs the three injection passes for a project. Passes are
// independent: a failure in one is recorded in the stats and the remaining
// passes still run. A point whose type matches no bean is a counted miss,
// never an error; a point matching several beans gets an edge to every one.
func (r *Resolver) Resolve(ctx context.Context, project string) (*Stats, error) {
	index, beans, err := r.beanIndex(ctx, project)
	if err != nil {
		return nil, err
	}
	stats := &Stats{Beans: beans}

	passes := []struct {
		kind string
		load func(context.Context, string) ([]injectionPoint, error)
	}{
		{KindField, r.fieldPoints},
		{KindConstructor, r.constructorPoints},
		{KindSetter, r.setterPoints},
	}

	for _, pass := range passes {
		ps, err := r.runPass(ctx, project, pass.kind, pass.load, index)
		if err != nil {
			stats.Errors = append(stats.Errors, fmt.Sprintf("%s pass: %v", pass.kind, err))
			r.log.Error("resolution pass failed", "pass", pass.kind, "error", err)
			continue
		}
		stats.Passes = append(stats.Passes, ps)
	}

	return stats, nil
}

func (r *Resolver) runPass(ctx context.Context, project, kind string, load func(context.Context, string) ([]injectionPoint, error), index map[string][]beanRef) (PassStats, error) {
	ps := PassStats{Kind: kind}

	points, err := load(ctx, project)
	if err != nil {
		return ps, err
	}
	ps.Points = len(points)

	var rows []map[string]any
	for _, p := range points {
		candidates := index[p.Type]
		switch {
		case len(candidates) == 0:
			ps.Misses++
			r.log.Debug("unresolved injection point",
				"pass", kind,
				"class", p.Package+"."+p.Class,
				"name", p.Name,
				"type", p.Type,
			)
			continue
		case len(candidates) > 1:
			ps.Ambiguous++
			if len(ps.Samples) < maxAmbiguousSamples {
				ps.Samples = append(ps.Samples,
					fmt.Sprintf("%s.%s#%s type %s matches %d beans", p.Package, p.Class, p.Name, p.Type, len(candidates)))
			}
		}
		for _, b := range candidates {
			rows = append(rows, map[string]any{
				"src_package": p.Package,
				"src_class":   p.Class,
				"dst_package": b.Package,
				"dst_class":   b.Class,
				"kind":        p.Kind,
				"name":        p.Name,
				"type":        p.Type,
			})
		}
	}
	ps.Edges = len(rows)

	if len(rows) > 0 {
		_, err := r.db.WriteBatch(ctx, []graphdb.Statement{{
			Cypher: mergeDepends,
			Params: map[string]any{"project": project, "rows": rows},
		}})
		if err != nil {
			return ps, err
		}
	}

	r.log.Info("resolution pass complete",
		"pass", kind,
		"points", ps.Points,
		"edges", ps.Edges,
		"misses", ps.Misses,
		"ambiguous", ps.Ambiguous,
	)
	return ps, nil
}

func (r *Resolver) beanIndex(ctx context.Context, project string) (map[string][]beanRef, int, error) {
	rows, err := r.db.ReadQuery(ctx, readBeans, map[string]any{"project": project})
	if err != nil {
		return nil, 0, fmt.Errorf("load bean index: %w", err)
	}
	index := make(map[string][]beanRef)
	for _, row := range rows {
		b := beanRef{
			Package: str(row["package"]),
			Class:   str(row["class"]),
			Name:    str(row["name"]),
			Type:    str(row["type"]),
		}
		index[b.Type] = append(index[b.Type], b)
	}
	return index, len(rows), nil
}

// fieldPoints loads fields of bean classes that carry an injection marker.
// An unannotated field never wires.
func (r *Resolver) fieldPoints(ctx context.Context, project string) ([]injectionPoint, error) {
	rows, err := r.db.ReadQuery(ctx, readInjectedFields, map[string]any{"project": project})
	if err != nil {
		return nil, err
	}
	points := make([]injectionPoint, 0, len(rows))
	for _, row := range rows {
		if !annotatedIn(row["annotations"], r.injection) {
			continue
		}
		points = append(points, injectionPoint{
			Package: str(row["package"]),
			Class:   str(row["class"]),
			Kind:    KindField,
			Name:    str(row["name"]),
			Type:    str(row["type"]),
		})
	}
	return points, nil
}

// constructorPoints loads constructors of bean classes. The naming
// convention is the signal: no marker annotation is required, and every
// parameter is an injection point.
func (r *Resolver) constructorPoints(ctx context.Context, project string) ([]injectionPoint, error) {
	rows, err := r.db.ReadQuery(ctx, readConstructors, map[string]any{"project": project})
	if err != nil {
		return nil, err
	}
	var points []injectionPoint
	for _, row := range rows {
		names := stringList(row["param_names"])
		types := stringList(row["param_types"])
		for i, typ := range types {
			name := ""
			if i < len(names) {
				name = names[i]
			}
			points = append(points, injectionPoint{
				Package: str(row["package"]),
				Class:   str(row["class"]),
				Kind:    KindConstructor,
				Name:    name,
				Type:    typ,
			})
		}
	}
	return points, nil
}

// setterPoints loads single-parameter set* methods of bean classes that
// carry an injection marker. The point name is the bean property: method
// name minus the set prefix, first rune lowered.
func (r *Resolver) setterPoints(ctx context.Context, project string) ([]injectionPoint, error) {
	rows, err := r.db.ReadQuery(ctx, readSetters, map[string]any{"project": project})
	if err != nil {
		return nil, err
	}
	var points []injectionPoint
	for _, row := range rows {
		if !annotatedIn(row["annotations"], r.injection) {
			continue
		}
		name := str(row["name"])
		if len(name) <= len("set") {
			continue
		}
		types := stringList(row["param_types"])
		if len(types) != 1 {
			continue
		}
		points = append(points, injectionPoint{
			Package: str(row["package"]),
			Class:   str(row["class"]),
			Kind:    KindSetter,
			Name:    lowerFirst(strings.TrimPrefix(name, "set")),
			Type:    types[0],
		})
	}
	return points, nil
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

// stringList coerces a graph list value. The driver returns []any; fakes in
// tests may serve []string directly.
func stringList(v any) []string {
	switch vs := v.(type) {
	case []string:
		return vs
	case []any:
		out := make([]string, 0, len(vs))
		for _, item := range vs {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func annotatedIn(v any, set map[string]struct{}) bool {
	for _, name := range stringList(v) {
		if _, ok := set[name]; ok {
			return true
		}
	}
	return false
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}
