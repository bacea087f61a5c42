// Package crud folds method/table tuples from the graph into a CRUD matrix.
// The matrix is a query product: aggregation reads the graph and writes
// nothing back.
package crud

import (
	"context"
	"fmt"
	"sort"

	"javamap/internal/facts"
	"javamap/internal/graphdb"
	"javamap/internal/logger"
)

// Row is one aggregated matrix entry: a method touching a table, with the
// deduplicated operation set rendered in fixed C, D, R, U order.
type Row struct {
	Package string
	Class   string
	Method  string
	Schema  string
	Table   string
	Ops     []string
}

// Matrix is the aggregated CRUD matrix for one project.
type Matrix struct {
	Project string
	Rows    []Row
	Total   int // aggregated rows, not raw tuples
	Skipped int // malformed tuples dropped during the fold
}

// Aggregator builds CRUD matrices.
type Aggregator struct {
	db  graphdb.Querier
	log *logger.Logger
}

func New(db graphdb.Querier, log *logger.Logger) *Aggregator {
	return &Aggregator{
		db:  db,
		log: log.With("component", "crud"),
	}
}

const readTuples = `
MATCH (c:Class {project: $project})-[:CONTAINS]->(m:Method)-[:EXECUTES]->(:SqlStatement)-[tt:TOUCHES_TABLE]->(t:Table)
RETURN c.package AS package, c.name AS class, m.name AS method, t.name AS table, tt.op AS op
`

const readTableSchema = `
MATCH (t:Table {project: $project, name: $table})
RETURN t.schema AS schema
`

var opOrder = []facts.Op{facts.OpCreate, facts.OpDelete, facts.OpRead, facts.OpUpdate}

// Aggregate reads the statement/table traversal and folds it by
// (package, class, method, table). A method reaching the same table through
// several statements of one kind collapses to a single row with one op.
// Tuples with an empty table or an unknown op are skipped and counted,
// never fatal. Rows come back sorted by (package, class, method, table).
func (a *Aggregator) Aggregate(ctx context.Context, project string) (*Matrix, error) {
	tuples, err := a.db.ReadQuery(ctx, readTuples, map[string]any{"project": project})
	if err != nil {
		return nil, fmt.Errorf("read crud tuples: %w", err)
	}

	type rowKey struct {
		pkg    string
		class  string
		method string
		table  string
	}
	folded := make(map[rowKey]map[facts.Op]struct{})
	skipped := 0

	for _, tuple := range tuples {
		table := str(tuple["table"])
		if table == "" {
			skipped++
			continue
		}
		op := facts.Op(str(tuple["op"]))
		switch op {
		case facts.OpCreate, facts.OpRead, facts.OpUpdate, facts.OpDelete:
		default:
			skipped++
			continue
		}
		k := rowKey{
			pkg:    str(tuple["package"]),
			class:  str(tuple["class"]),
			method: str(tuple["method"]),
			table:  table,
		}
		if folded[k] == nil {
			folded[k] = make(map[facts.Op]struct{})
		}
		folded[k][op] = struct{}{}
	}

	// Per-run schema cache: at most one lookup per distinct table. Lookup
	// failures resolve to an empty schema and are still cached.
	schemas := make(map[string]string)
	lookup := func(table string) string {
		if schema, ok := schemas[table]; ok {
			return schema
		}
		schema, err := a.tableSchema(ctx, project, table)
		if err != nil {
			a.log.Warn("schema lookup failed", "table", table, "error", err)
			schema = ""
		}
		schemas[table] = schema
		return schema
	}

	rows := make([]Row, 0, len(folded))
	for k, ops := range folded {
		rows = append(rows, Row{
			Package: k.pkg,
			Class:   k.class,
			Method:  k.method,
			Schema:  lookup(k.table),
			Table:   k.table,
			Ops:     renderOps(ops),
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		ri, rj := rows[i], rows[j]
		if ri.Package != rj.Package {
			return ri.Package < rj.Package
		}
		if ri.Class != rj.Class {
			return ri.Class < rj.Class
		}
		if ri.Method != rj.Method {
			return ri.Method < rj.Method
		}
		return ri.Table < rj.Table
	})

	a.log.Info("crud matrix aggregated",
		"project", project,
		"tuples", len(tuples),
		"rows", len(rows),
		"skipped", skipped,
		"tables", len(schemas),
	)

	return &Matrix{
		Project: project,
		Rows:    rows,
		Total:   len(rows),
		Skipped: skipped,
	}, nil
}

func (a *Aggregator) tableSchema(ctx context.Context, project, table string) (string, error) {
	rows, err := a.db.ReadQuery(ctx, readTableSchema, map[string]any{
		"project": project,
		"table":   table,
	})
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", nil
	}
	return str(rows[0]["schema"]), nil
}

func renderOps(ops map[facts.Op]struct{}) []string {
	out := make([]string, 0, len(ops))
	for _, op := range opOrder {
		if _, ok := ops[op]; ok {
			out = append(out, string(op))
		}
	}
	return out
}

func str(v any) string {
	s, _ := v.(string)
	return s
}
