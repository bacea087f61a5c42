// Package graph persists fact records into a Neo4j property graph. All node
// writes are idempotent merge-by-natural-key upserts scoped by project, so
// re-running an analysis over unchanged sources leaves the graph identical.
package graph

import (
	"context"
	"fmt"
	"unicode"
	"unicode/utf8"

	"javamap/internal/facts"
	"javamap/internal/graphdb"
	"javamap/internal/logger"
)

// MergeKeyError records a fact dropped before the write because its natural
// key was incomplete. Dropping is per-record and never aborts the batch.
type MergeKeyError struct {
	Kind   facts.Kind `json:"kind"`
	Key    string     `json:"key"`
	Reason string     `json:"reason"`
}

func (e MergeKeyError) Error() string {
	return fmt.Sprintf("merge key %s %s: %s", e.Kind, e.Key, e.Reason)
}

// WriteStats summarizes one fact batch write.
type WriteStats struct {
	FactsByKind map[facts.Kind]int
	Dropped     []MergeKeyError
	Beans       int
	Summary     graphdb.WriteSummary
}

// Writer persists fact batches into the property graph.
type Writer struct {
	db         graphdb.Querier
	log        *logger.Logger
	components map[string]struct{}
}

// NewWriter creates a writer. componentAnnotations is the class annotation
// set under which a class also declares a bean.
func NewWriter(db graphdb.Querier, componentAnnotations []string, log *logger.Logger) *Writer {
	return &Writer{
		db:         db,
		log:        log.With("component", "writer"),
		components: facts.NameSet(componentAnnotations),
	}
}

const upsertClasses = `
UNWIND $rows AS r
MERGE (p:Package {project: r.project, name: r.package})
MERGE (c:Class {project: r.project, package: r.package, name: r.name})
SET c.kind = r.kind,
    c.annotations = r.annotations,
    c.logical_name = r.logical_name,
    c.description = r.description,
    c.path = r.path
MERGE (p)-[:CONTAINS]->(c)
`

const upsertFields = `
UNWIND $rows AS r
MATCH (c:Class {project: r.project, package: r.package, name: r.class})
MERGE (f:Field {project: r.project, package: r.package, class: r.class, name: r.name})
SET f.type = r.type,
    f.visibility = r.visibility,
    f.annotations = r.annotations
MERGE (c)-[:CONTAINS]->(f)
`

const upsertMethods = `
UNWIND $rows AS r
MATCH (c:Class {project: r.project, package: r.package, name: r.class})
MERGE (m:Method {project: r.project, package: r.package, class: r.class, signature: r.signature})
SET m.name = r.name,
    m.return_type = r.return_type,
    m.param_types = r.param_types,
    m.param_names = r.param_names,
    m.visibility = r.visibility,
    m.annotations = r.annotations
MERGE (c)-[:CONTAINS]->(m)
`

const upsertBeans = `
UNWIND $rows AS r
MERGE (b:Bean {project: r.project, package: r.package, class: r.class})
SET b.name = r.name,
    b.type = r.type
`

const upsertSqlStatements = `
UNWIND $rows AS r
MERGE (s:SqlStatement {project: r.project, namespace: r.namespace, id: r.id})
SET s.kind = r.kind,
    s.sql = r.sql
`

const linkExecutes = `
UNWIND $rows AS r
MATCH (m:Method {project: r.project, package: r.package, class: r.class, name: r.id})
MATCH (s:SqlStatement {project: r.project, namespace: r.namespace, id: r.id})
MERGE (m)-[:EXECUTES]->(s)
`

const upsertTables = `
UNWIND $rows AS r
MERGE (t:Table {project: r.project, name: r.table})
SET t.schema = CASE WHEN r.schema = '' THEN t.schema ELSE r.schema END
`

const linkTouchesTable = `
UNWIND $rows AS r
MATCH (s:SqlStatement {project: r.project, namespace: r.namespace, id: r.statement_id})
MATCH (t:Table {project: r.project, name: r.table})
MERGE (s)-[:TOUCHES_TABLE {op: r.op}]->(t)
`

// WriteFacts validates, partitions, and upserts a fact batch in one write
// transaction. Statements run in dependency order (classes before members,
// statements before table links) so every edge merge finds its endpoints
// without placeholder nodes. Records with incomplete natural keys are
// dropped and reported in the stats; the rest of the batch proceeds.
func (w *Writer) WriteFacts(ctx context.Context, project string, batch []facts.Fact) (*WriteStats, error) {
	stats := &WriteStats{FactsByKind: make(map[facts.Kind]int)}

	var (
		classRows  []map[string]any
		fieldRows  []map[string]any
		methodRows []map[string]any
		beanRows   []map[string]any
		sqlRows    []map[string]any
		tableRows  []map[string]any
	)

	for _, f := range batch {
		if err := f.Validate(); err != nil {
			w.drop(stats, f, err.Error())
			continue
		}
		if f.FactProject() != project {
			w.drop(stats, f, fmt.Sprintf("fact project %q does not match run project %q", f.FactProject(), project))
			continue
		}

		switch fact := f.(type) {
		case facts.ClassFact:
			classRows = append(classRows, classRow(fact))
			if fact.Annotations.AnyIn(w.components) {
				beanRows = append(beanRows, w.beanRow(fact))
			}
		case facts.FieldFact:
			fieldRows = append(fieldRows, fieldRow(fact))
		case facts.MethodFact:
			methodRows = append(methodRows, methodRow(fact))
		case facts.SqlStatementFact:
			sqlRows = append(sqlRows, sqlRow(fact))
		case facts.TableRefFact:
			tableRows = append(tableRows, tableRow(fact))
		default:
			w.drop(stats, f, "unknown fact kind")
			continue
		}
		stats.FactsByKind[f.FactKind()]++
	}

	stats.Beans = len(beanRows)

	var statements []graphdb.Statement
	appendStmt := func(cypher string, rows []map[string]any) {
		if len(rows) > 0 {
			statements = append(statements, graphdb.Statement{
				Cypher: cypher,
				Params: map[string]any{"rows": rows},
			})
		}
	}

	appendStmt(upsertClasses, classRows)
	appendStmt(upsertFields, fieldRows)
	appendStmt(upsertMethods, methodRows)
	appendStmt(upsertBeans, beanRows)
	appendStmt(upsertSqlStatements, sqlRows)
	appendStmt(linkExecutes, sqlRows)
	appendStmt(upsertTables, tableRows)
	appendStmt(linkTouchesTable, tableRows)

	summary, err := w.db.WriteBatch(ctx, statements)
	if err != nil {
		return nil, fmt.Errorf("write facts: %w", err)
	}
	stats.Summary = summary

	w.log.Info("facts written",
		"project", project,
		"classes", len(classRows),
		"fields", len(fieldRows),
		"methods", len(methodRows),
		"beans", len(beanRows),
		"sql_statements", len(sqlRows),
		"table_refs", len(tableRows),
		"dropped", len(stats.Dropped),
	)

	return stats, nil
}

func (w *Writer) drop(stats *WriteStats, f facts.Fact, reason string) {
	mke := MergeKeyError{Kind: f.FactKind(), Key: factKey(f), Reason: reason}
	stats.Dropped = append(stats.Dropped, mke)
	w.log.Warn("fact dropped", "kind", mke.Kind, "key", mke.Key, "reason", reason)
}

// factKey renders the natural key of a fact for error reporting.
func factKey(f facts.Fact) string {
	switch fact := f.(type) {
	case facts.ClassFact:
		return fact.Package + "." + fact.Name
	case facts.FieldFact:
		return fact.Package + "." + fact.Class + "#" + fact.Name
	case facts.MethodFact:
		return fact.Package + "." + fact.Class + "#" + fact.Signature()
	case facts.SqlStatementFact:
		return fact.Namespace + "." + fact.ID
	case facts.TableRefFact:
		return fact.Namespace + "." + fact.StatementID + "->" + fact.Table
	}
	return fmt.Sprintf("%v", f)
}

func classRow(f facts.ClassFact) map[string]any {
	return map[string]any{
		"project":      f.Project,
		"package":      f.Package,
		"name":         f.Name,
		"kind":         f.Kind,
		"annotations":  f.Annotations.Names(),
		"logical_name": f.LogicalName,
		"description":  f.Description,
		"path":         f.Path,
	}
}

func fieldRow(f facts.FieldFact) map[string]any {
	return map[string]any{
		"project":     f.Project,
		"package":     f.Package,
		"class":       f.Class,
		"name":        f.Name,
		"type":        f.Type,
		"visibility":  f.Visibility,
		"annotations": f.Annotations.Names(),
	}
}

func methodRow(f facts.MethodFact) map[string]any {
	names := make([]string, 0, len(f.Params))
	for _, p := range f.Params {
		names = append(names, p.Name)
	}
	return map[string]any{
		"project":     f.Project,
		"package":     f.Package,
		"class":       f.Class,
		"name":        f.Name,
		"signature":   f.Signature(),
		"return_type": f.ReturnType,
		"param_types": f.ParamTypes(),
		"param_names": names,
		"visibility":  f.Visibility,
		"annotations": f.Annotations.Names(),
	}
}

func (w *Writer) beanRow(f facts.ClassFact) map[string]any {
	return map[string]any{
		"project": f.Project,
		"package": f.Package,
		"class":   f.Name,
		"name":    w.beanName(f),
		"type":    f.Name,
	}
}

// beanName prefers an explicit component annotation value and falls back to
// the class name with its first rune lowered, the container convention.
func (w *Writer) beanName(f facts.ClassFact) string {
	for _, an := range f.Annotations {
		if _, ok := w.components[an.Name]; ok && an.Value != "" {
			return an.Value
		}
	}
	return lowerFirst(f.Name)
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

func sqlRow(f facts.SqlStatementFact) map[string]any {
	pkg, class := facts.SplitFQN(f.Namespace)
	return map[string]any{
		"project":   f.Project,
		"namespace": f.Namespace,
		"id":        f.ID,
		"kind":      f.Kind,
		"sql":       f.SQL,
		"package":   pkg,
		"class":     class,
	}
}

func tableRow(f facts.TableRefFact) map[string]any {
	return map[string]any{
		"project":      f.Project,
		"namespace":    f.Namespace,
		"statement_id": f.StatementID,
		"table":        f.Table,
		"schema":       f.Schema,
		"op":           string(f.Op),
	}
}
