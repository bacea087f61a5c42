// Package facts defines the record types produced by source extraction.
//
// Facts are self-contained: a record never refers to another record's
// assigned identity. All linking between records happens downstream by
// natural key, so facts can be produced in any order and re-produced
// without side effects.
package facts

import (
	"fmt"
	"strings"
)

// DefaultPackage is the sentinel package name for sources without a
// package declaration.
const DefaultPackage = "default"

// Kind discriminates fact record variants.
type Kind string

const (
	KindClass        Kind = "class"
	KindField        Kind = "field"
	KindMethod       Kind = "method"
	KindSqlStatement Kind = "sql_statement"
	KindTableRef     Kind = "table_ref"
)

// Class kinds.
const (
	ClassKindClass     = "class"
	ClassKindInterface = "interface"
	ClassKindEnum      = "enum"
)

// SQL statement kinds.
const (
	SqlSelect = "select"
	SqlInsert = "insert"
	SqlUpdate = "update"
	SqlDelete = "delete"
)

// Op is a CRUD operation letter.
type Op string

const (
	OpCreate Op = "C"
	OpRead   Op = "R"
	OpUpdate Op = "U"
	OpDelete Op = "D"
)

// OpForSql maps a SQL statement kind to its CRUD operation.
func OpForSql(kind string) (Op, bool) {
	switch kind {
	case SqlSelect:
		return OpRead, true
	case SqlInsert:
		return OpCreate, true
	case SqlUpdate:
		return OpUpdate, true
	case SqlDelete:
		return OpDelete, true
	}
	return "", false
}

// Fact is the union of record types produced by extraction.
type Fact interface {
	FactKind() Kind
	FactProject() string
	// Validate reports whether the record carries a complete natural key.
	Validate() error
}

// Annotation is one structured annotation occurrence: the simple name
// (no '@', no package qualifier) and the first string argument, if any.
type Annotation struct {
	Name  string
	Value string
}

// Annotations is the ordered annotation list of a declaration.
type Annotations []Annotation

// Names returns the annotation names in declaration order.
func (a Annotations) Names() []string {
	names := make([]string, 0, len(a))
	for _, an := range a {
		names = append(names, an.Name)
	}
	return names
}

// Find returns the first annotation with the given name.
func (a Annotations) Find(name string) (Annotation, bool) {
	for _, an := range a {
		if an.Name == name {
			return an, true
		}
	}
	return Annotation{}, false
}

// AnyIn reports whether any annotation name is in the given set.
func (a Annotations) AnyIn(set map[string]struct{}) bool {
	for _, an := range a {
		if _, ok := set[an.Name]; ok {
			return true
		}
	}
	return false
}

// NameSet builds a membership set from annotation names.
func NameSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

// Param is one method parameter. Type is the verbatim declared type text,
// generics and all.
type Param struct {
	Name string
	Type string
}

// ClassFact describes one top-level type declaration.
type ClassFact struct {
	Project     string
	Package     string // DefaultPackage when the source has no package declaration
	Name        string
	Kind        string // ClassKindClass | ClassKindInterface | ClassKindEnum
	Annotations Annotations
	LogicalName string
	Description string
	Path        string // source path, relative to the analyzed root
}

func (c ClassFact) FactKind() Kind      { return KindClass }
func (c ClassFact) FactProject() string { return c.Project }

func (c ClassFact) Validate() error {
	switch {
	case c.Project == "":
		return fmt.Errorf("class fact: empty project")
	case c.Package == "":
		return fmt.Errorf("class fact %q: empty package", c.Name)
	case c.Name == "":
		return fmt.Errorf("class fact in %q: empty name", c.Package)
	}
	return nil
}

// FQN returns the fully qualified class name.
func (c ClassFact) FQN() string {
	return c.Package + "." + c.Name
}

// FieldFact describes one field of a class.
type FieldFact struct {
	Project     string
	Package     string
	Class       string
	Name        string
	Type        string // verbatim declared type text
	Visibility  string
	Annotations Annotations
}

func (f FieldFact) FactKind() Kind      { return KindField }
func (f FieldFact) FactProject() string { return f.Project }

func (f FieldFact) Validate() error {
	switch {
	case f.Project == "":
		return fmt.Errorf("field fact: empty project")
	case f.Package == "" || f.Class == "":
		return fmt.Errorf("field fact %q: missing owning class", f.Name)
	case f.Name == "":
		return fmt.Errorf("field fact in %s.%s: empty name", f.Package, f.Class)
	}
	return nil
}

// MethodFact describes one method or constructor of a class. Constructors
// carry an empty ReturnType and a Name equal to the class name.
type MethodFact struct {
	Project     string
	Package     string
	Class       string
	Name        string
	ReturnType  string // verbatim; empty for constructors
	Params      []Param
	Visibility  string
	Annotations Annotations
}

func (m MethodFact) FactKind() Kind      { return KindMethod }
func (m MethodFact) FactProject() string { return m.Project }

func (m MethodFact) Validate() error {
	switch {
	case m.Project == "":
		return fmt.Errorf("method fact: empty project")
	case m.Package == "" || m.Class == "":
		return fmt.Errorf("method fact %q: missing owning class", m.Name)
	case m.Name == "":
		return fmt.Errorf("method fact in %s.%s: empty name", m.Package, m.Class)
	}
	return nil
}

// IsConstructor reports whether the record follows the constructor
// convention: name equal to the owning class with no return type.
func (m MethodFact) IsConstructor() bool {
	return m.ReturnType == "" && m.Name == m.Class
}

// ParamTypes returns the verbatim parameter type strings in order.
func (m MethodFact) ParamTypes() []string {
	types := make([]string, 0, len(m.Params))
	for _, p := range m.Params {
		types = append(types, p.Type)
	}
	return types
}

// Signature disambiguates overloads: name plus comma-joined parameter types.
func (m MethodFact) Signature() string {
	return m.Name + "(" + strings.Join(m.ParamTypes(), ",") + ")"
}

// SqlStatementFact describes one mapped SQL statement: an XML mapper
// element or a statement annotation on a mapper interface method.
type SqlStatementFact struct {
	Project   string
	Namespace string // mapper interface FQN
	ID        string // statement id / mapper method name
	Kind      string // SqlSelect | SqlInsert | SqlUpdate | SqlDelete
	SQL       string // raw statement text, dynamic elements flattened
}

func (s SqlStatementFact) FactKind() Kind      { return KindSqlStatement }
func (s SqlStatementFact) FactProject() string { return s.Project }

func (s SqlStatementFact) Validate() error {
	switch {
	case s.Project == "":
		return fmt.Errorf("sql statement fact: empty project")
	case s.Namespace == "":
		return fmt.Errorf("sql statement fact %q: empty namespace", s.ID)
	case s.ID == "":
		return fmt.Errorf("sql statement fact in %q: empty id", s.Namespace)
	}
	if _, ok := OpForSql(s.Kind); !ok {
		return fmt.Errorf("sql statement fact %s.%s: unknown kind %q", s.Namespace, s.ID, s.Kind)
	}
	return nil
}

// TableRefFact describes one table touched by a SQL statement.
type TableRefFact struct {
	Project     string
	Namespace   string
	StatementID string
	Table       string
	Schema      string // empty until resolved
	Op          Op
}

func (t TableRefFact) FactKind() Kind      { return KindTableRef }
func (t TableRefFact) FactProject() string { return t.Project }

func (t TableRefFact) Validate() error {
	switch {
	case t.Project == "":
		return fmt.Errorf("table ref fact: empty project")
	case t.Namespace == "" || t.StatementID == "":
		return fmt.Errorf("table ref fact %q: missing owning statement", t.Table)
	case t.Table == "":
		return fmt.Errorf("table ref fact in %s.%s: empty table", t.Namespace, t.StatementID)
	}
	switch t.Op {
	case OpCreate, OpRead, OpUpdate, OpDelete:
	default:
		return fmt.Errorf("table ref fact %q: unknown op %q", t.Table, t.Op)
	}
	return nil
}

// ParseError records a per-file extraction failure. Extraction always
// continues with remaining files.
type ParseError struct {
	File   string `json:"file"`
	Reason string `json:"reason"`
}

func (e ParseError) Error() string {
	return fmt.Sprintf("parse %s: %s", e.File, e.Reason)
}

// SplitFQN splits a fully qualified type name into package and simple name.
// A name without a package qualifier lands in DefaultPackage.
func SplitFQN(fqn string) (pkg, name string) {
	idx := strings.LastIndex(fqn, ".")
	if idx < 0 {
		return DefaultPackage, fqn
	}
	return fqn[:idx], fqn[idx+1:]
}
