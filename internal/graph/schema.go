package graph

import (
	"context"

	"javamap/internal/graphdb"
	"javamap/internal/logger"
)

// Node labels.
const (
	LabelPackage      = "Package"
	LabelClass        = "Class"
	LabelField        = "Field"
	LabelMethod       = "Method"
	LabelBean         = "Bean"
	LabelSqlStatement = "SqlStatement"
	LabelTable        = "Table"
)

// Relationship types.
const (
	RelContains     = "CONTAINS"
	RelExecutes     = "EXECUTES"
	RelTouchesTable = "TOUCHES_TABLE"
	RelDependsOn    = "DEPENDS_ON"
)

// schemaStatements create range indexes over each label's natural key.
// Node key constraints would be stricter but need an enterprise edition;
// merging on the full key map keeps correctness either way.
var schemaStatements = []string{
	`CREATE INDEX package_key IF NOT EXISTS FOR (n:Package) ON (n.project, n.name)`,
	`CREATE INDEX class_key IF NOT EXISTS FOR (n:Class) ON (n.project, n.package, n.name)`,
	`CREATE INDEX field_key IF NOT EXISTS FOR (n:Field) ON (n.project, n.package, n.class, n.name)`,
	`CREATE INDEX method_key IF NOT EXISTS FOR (n:Method) ON (n.project, n.package, n.class, n.signature)`,
	`CREATE INDEX bean_key IF NOT EXISTS FOR (n:Bean) ON (n.project, n.package, n.class)`,
	`CREATE INDEX bean_type IF NOT EXISTS FOR (n:Bean) ON (n.project, n.type)`,
	`CREATE INDEX sql_statement_key IF NOT EXISTS FOR (n:SqlStatement) ON (n.project, n.namespace, n.id)`,
	`CREATE INDEX table_key IF NOT EXISTS FOR (n:Table) ON (n.project, n.name)`,
}

// EnsureSchema creates lookup indexes ahead of a write. Failures are logged
// and never abort a run; restricted users can still merge by key.
func EnsureSchema(ctx context.Context, db graphdb.Querier, log *logger.Logger) {
	for _, stmt := range schemaStatements {
		if err := db.Exec(ctx, stmt, nil); err != nil {
			log.Warn("schema init failed (continuing)", "error", err)
		}
	}
}
