package facts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for fact records:
// - Validate() accepts complete records and rejects each missing key part
// - Constructor convention: name == class with empty return type
// - Signature() disambiguates overloads by parameter types
// - OpForSql maps statement kinds to CRUD letters and rejects unknowns
// - SplitFQN splits qualified names and falls back to the default package
// - Annotation helpers: Names, Find, AnyIn

func TestClassFact_Validate(t *testing.T) {
	t.Parallel()

	valid := ClassFact{Project: "shop", Package: "com.shop", Name: "OrderService", Kind: ClassKindClass}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name string
		fact ClassFact
	}{
		{"missing project", ClassFact{Package: "com.shop", Name: "OrderService"}},
		{"missing package", ClassFact{Project: "shop", Name: "OrderService"}},
		{"missing name", ClassFact{Project: "shop", Package: "com.shop"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Error(t, tt.fact.Validate())
		})
	}
}

func TestMethodFact_ConstructorConvention(t *testing.T) {
	t.Parallel()

	ctor := MethodFact{
		Project: "shop", Package: "com.shop", Class: "OrderService",
		Name:   "OrderService",
		Params: []Param{{Name: "repo", Type: "OrderRepository"}},
	}
	assert.True(t, ctor.IsConstructor())

	// Same name but with a return type is a plain method.
	named := ctor
	named.ReturnType = "OrderService"
	assert.False(t, named.IsConstructor())

	// Different name is a plain method even without a return type.
	other := ctor
	other.Name = "init"
	assert.False(t, other.IsConstructor())
}

func TestMethodFact_Signature(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		params   []Param
		expected string
	}{
		{"no parameters", nil, "save()"},
		{"one parameter", []Param{{Name: "id", Type: "Long"}}, "save(Long)"},
		{
			"verbatim generics",
			[]Param{{Name: "ids", Type: "List<Long>"}, {Name: "opts", Type: "Map<String, Object>"}},
			"save(List<Long>,Map<String, Object>)",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := MethodFact{Name: "save", Params: tt.params}
			assert.Equal(t, tt.expected, m.Signature())
		})
	}
}

func TestSqlStatementFact_Validate_RejectsUnknownKind(t *testing.T) {
	t.Parallel()

	fact := SqlStatementFact{Project: "shop", Namespace: "com.shop.OrderMapper", ID: "findAll", Kind: "upsert"}
	assert.Error(t, fact.Validate())

	fact.Kind = SqlSelect
	assert.NoError(t, fact.Validate())
}

func TestTableRefFact_Validate(t *testing.T) {
	t.Parallel()

	valid := TableRefFact{
		Project: "shop", Namespace: "com.shop.OrderMapper", StatementID: "findAll",
		Table: "orders", Op: OpRead,
	}
	require.NoError(t, valid.Validate())

	noTable := valid
	noTable.Table = ""
	assert.Error(t, noTable.Validate())

	badOp := valid
	badOp.Op = "X"
	assert.Error(t, badOp.Validate())
}

func TestOpForSql(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind string
		op   Op
		ok   bool
	}{
		{SqlSelect, OpRead, true},
		{SqlInsert, OpCreate, true},
		{SqlUpdate, OpUpdate, true},
		{SqlDelete, OpDelete, true},
		{"merge", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		op, ok := OpForSql(tt.kind)
		assert.Equal(t, tt.ok, ok, "kind %q", tt.kind)
		assert.Equal(t, tt.op, op, "kind %q", tt.kind)
	}
}

func TestSplitFQN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		fqn  string
		pkg  string
		name string
	}{
		{"com.shop.mapper.OrderMapper", "com.shop.mapper", "OrderMapper"},
		{"a.Helper", "a", "Helper"},
		{"OrderMapper", DefaultPackage, "OrderMapper"},
	}
	for _, tt := range tests {
		pkg, name := SplitFQN(tt.fqn)
		assert.Equal(t, tt.pkg, pkg)
		assert.Equal(t, tt.name, name)
	}
}

func TestAnnotations_Helpers(t *testing.T) {
	t.Parallel()

	anns := Annotations{
		{Name: "Service", Value: "orderSvc"},
		{Name: "Transactional"},
	}

	assert.Equal(t, []string{"Service", "Transactional"}, anns.Names())

	svc, ok := anns.Find("Service")
	require.True(t, ok)
	assert.Equal(t, "orderSvc", svc.Value)

	_, ok = anns.Find("Autowired")
	assert.False(t, ok)

	set := NameSet([]string{"Component", "Service"})
	assert.True(t, anns.AnyIn(set))
	assert.False(t, anns.AnyIn(NameSet([]string{"Repository"})))
}
