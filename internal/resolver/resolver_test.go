package resolver

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"javamap/internal/graphdb"
	"javamap/internal/logger"
)

// Test Plan for dependency resolution:
// - Field pass wires marker-annotated fields by exact declared-type match
// - Unannotated fields never wire
// - Constructor pass needs no marker; every parameter is a point
// - Setter pass derives the property name and skips a bare "set" method
// - An ambiguous type wires an edge to every matching bean
// - A type matching no bean is a counted miss, not an error
// - A failed pass is recorded and the remaining passes still run
// - ListWiring sorts edges and forwards the kind filter

// fakeDB serves canned read responses dispatched on a Cypher fragment and
// records every write batch.
type fakeDB struct {
	mu      sync.Mutex
	batches [][]graphdb.Statement
	respond func(cypher string, params map[string]any) []map[string]any
	failOn  string // ReadQuery fails when the Cypher contains this

	batchErr error
}

func (f *fakeDB) Exec(context.Context, string, map[string]any) error { return nil }

func (f *fakeDB) ReadQuery(_ context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	if f.failOn != "" && strings.Contains(cypher, f.failOn) {
		return nil, errors.New("read failed")
	}
	if f.respond != nil {
		return f.respond(cypher, params), nil
	}
	return nil, nil
}

func (f *fakeDB) WriteBatch(_ context.Context, statements []graphdb.Statement) (graphdb.WriteSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, statements)
	return graphdb.WriteSummary{}, f.batchErr
}

// respondWith dispatches the resolver's read queries to fixed row sets.
func respondWith(beans, fields, ctors, setters []map[string]any) func(string, map[string]any) []map[string]any {
	return func(cypher string, _ map[string]any) []map[string]any {
		switch {
		case strings.Contains(cypher, "RETURN b.package"):
			return beans
		case strings.Contains(cypher, "(f:Field"):
			return fields
		case strings.Contains(cypher, "m.name = m.class"):
			return ctors
		case strings.Contains(cypher, "STARTS WITH 'set'"):
			return setters
		}
		return nil
	}
}

func bean(pkg, class, name, typ string) map[string]any {
	return map[string]any{"package": pkg, "class": class, "name": name, "type": typ}
}

var injectionSet = []string{"Autowired", "Inject", "Resource"}

func newTestResolver(db *fakeDB) *Resolver {
	return New(db, injectionSet, logger.NewNop())
}

func passByKind(t *testing.T, stats *Stats, kind string) PassStats {
	t.Helper()
	for _, p := range stats.Passes {
		if p.Kind == kind {
			return p
		}
	}
	t.Fatalf("no %s pass in stats", kind)
	return PassStats{}
}

func mergedRows(t *testing.T, db *fakeDB, batch int) []map[string]any {
	t.Helper()
	require.Greater(t, len(db.batches), batch)
	require.Len(t, db.batches[batch], 1)
	stmt := db.batches[batch][0]
	assert.Contains(t, stmt.Cypher, "MERGE (src)-[d:DEPENDS_ON")
	rows, ok := stmt.Params["rows"].([]map[string]any)
	require.True(t, ok)
	return rows
}

func TestResolver_Resolve_FieldInjectionExactMatch(t *testing.T) {
	t.Parallel()

	db := &fakeDB{}
	db.respond = respondWith(
		[]map[string]any{
			bean("com.shop.service", "OrderService", "orderService", "OrderService"),
			bean("com.shop.repo", "OrderRepository", "orderRepository", "OrderRepository"),
		},
		[]map[string]any{
			{
				"package": "com.shop.service", "class": "OrderService",
				"name": "orderRepository", "type": "OrderRepository",
				"annotations": []any{"Autowired"},
			},
			// Test: no marker annotation, no injection point
			{
				"package": "com.shop.service", "class": "OrderService",
				"name": "clock", "type": "Clock",
				"annotations": []any{},
			},
		},
		nil, nil,
	)

	stats, err := newTestResolver(db).Resolve(context.Background(), "shop")
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Beans)
	require.Len(t, stats.Passes, 3)
	assert.Empty(t, stats.Errors)

	fieldPass := passByKind(t, stats, KindField)
	assert.Equal(t, 1, fieldPass.Points)
	assert.Equal(t, 1, fieldPass.Edges)
	assert.Equal(t, 0, fieldPass.Misses)
	assert.Equal(t, 0, fieldPass.Ambiguous)

	rows := mergedRows(t, db, 0)
	require.Len(t, rows, 1)
	assert.Equal(t, map[string]any{
		"src_package": "com.shop.service",
		"src_class":   "OrderService",
		"dst_package": "com.shop.repo",
		"dst_class":   "OrderRepository",
		"kind":        "field",
		"name":        "orderRepository",
		"type":        "OrderRepository",
	}, rows[0])

	// Constructor and setter passes had nothing to merge.
	assert.Len(t, db.batches, 1)
	assert.Equal(t, 1, stats.TotalEdges())
}

func TestResolver_Resolve_AmbiguousTypeWiresEveryCandidate(t *testing.T) {
	t.Parallel()

	db := &fakeDB{}
	db.respond = respondWith(
		[]map[string]any{
			bean("com.shop.checkout", "CheckoutService", "checkoutService", "CheckoutService"),
			bean("com.shop.pay.stripe", "PaymentGateway", "paymentGateway", "PaymentGateway"),
			bean("com.shop.pay.mock", "PaymentGateway", "paymentGateway", "PaymentGateway"),
		},
		[]map[string]any{
			{
				"package": "com.shop.checkout", "class": "CheckoutService",
				"name": "gateway", "type": "PaymentGateway",
				"annotations": []any{"Inject"},
			},
		},
		nil, nil,
	)

	stats, err := newTestResolver(db).Resolve(context.Background(), "shop")
	require.NoError(t, err)

	fieldPass := passByKind(t, stats, KindField)
	assert.Equal(t, 1, fieldPass.Points)
	assert.Equal(t, 2, fieldPass.Edges)
	assert.Equal(t, 1, fieldPass.Ambiguous)
	require.Len(t, fieldPass.Samples, 1)
	assert.Equal(t,
		"com.shop.checkout.CheckoutService#gateway type PaymentGateway matches 2 beans",
		fieldPass.Samples[0])

	rows := mergedRows(t, db, 0)
	require.Len(t, rows, 2)
	dsts := []string{rows[0]["dst_package"].(string), rows[1]["dst_package"].(string)}
	assert.ElementsMatch(t, []string{"com.shop.pay.stripe", "com.shop.pay.mock"}, dsts)
}

func TestResolver_Resolve_MissIsCountedNotError(t *testing.T) {
	t.Parallel()

	db := &fakeDB{}
	db.respond = respondWith(
		[]map[string]any{
			bean("com.shop.service", "OrderService", "orderService", "OrderService"),
		},
		[]map[string]any{
			{
				"package": "com.shop.service", "class": "OrderService",
				"name": "mailer", "type": "MailerService",
				"annotations": []any{"Autowired"},
			},
		},
		nil, nil,
	)

	stats, err := newTestResolver(db).Resolve(context.Background(), "shop")
	require.NoError(t, err)

	fieldPass := passByKind(t, stats, KindField)
	assert.Equal(t, 1, fieldPass.Points)
	assert.Equal(t, 0, fieldPass.Edges)
	assert.Equal(t, 1, fieldPass.Misses)
	assert.Empty(t, stats.Errors)
	assert.Empty(t, db.batches)
	assert.Equal(t, 1, stats.TotalMisses())
}

func TestResolver_Resolve_ConstructorNeedsNoMarker(t *testing.T) {
	t.Parallel()

	db := &fakeDB{}
	db.respond = respondWith(
		[]map[string]any{
			bean("com.shop.service", "CustomerService", "customerService", "CustomerService"),
			bean("com.shop.repo", "CustomerRepository", "customerRepository", "CustomerRepository"),
		},
		nil,
		[]map[string]any{
			{
				"package": "com.shop.service", "class": "CustomerService",
				"param_names": []any{"repository", "mailer"},
				"param_types": []any{"CustomerRepository", "Mailer"},
			},
		},
		nil,
	)

	stats, err := newTestResolver(db).Resolve(context.Background(), "shop")
	require.NoError(t, err)

	ctorPass := passByKind(t, stats, KindConstructor)
	assert.Equal(t, 2, ctorPass.Points)
	assert.Equal(t, 1, ctorPass.Edges)
	assert.Equal(t, 1, ctorPass.Misses)

	rows := mergedRows(t, db, 0)
	require.Len(t, rows, 1)
	assert.Equal(t, "constructor", rows[0]["kind"])
	assert.Equal(t, "repository", rows[0]["name"])
	assert.Equal(t, "CustomerRepository", rows[0]["type"])
}

func TestResolver_Resolve_SetterNamingAndFilters(t *testing.T) {
	t.Parallel()

	db := &fakeDB{}
	db.respond = respondWith(
		[]map[string]any{
			bean("com.shop.service", "OrderService", "orderService", "OrderService"),
			bean("com.shop.time", "Clock", "clock", "Clock"),
			bean("com.shop.mail", "Mailer", "mailer", "Mailer"),
		},
		nil, nil,
		[]map[string]any{
			{
				"package": "com.shop.service", "class": "OrderService", "name": "setClock",
				"param_names": []any{"clock"}, "param_types": []any{"Clock"},
				"annotations": []any{"Autowired"},
			},
			// Test: a method named exactly "set" has no property name
			{
				"package": "com.shop.service", "class": "OrderService", "name": "set",
				"param_names": []any{"value"}, "param_types": []any{"Clock"},
				"annotations": []any{"Autowired"},
			},
			// Test: setter without a marker annotation is plain mutator, not injection
			{
				"package": "com.shop.service", "class": "OrderService", "name": "setMailer",
				"param_names": []any{"mailer"}, "param_types": []any{"Mailer"},
				"annotations": []any{},
			},
		},
	)

	stats, err := newTestResolver(db).Resolve(context.Background(), "shop")
	require.NoError(t, err)

	setterPass := passByKind(t, stats, KindSetter)
	assert.Equal(t, 1, setterPass.Points)
	assert.Equal(t, 1, setterPass.Edges)

	rows := mergedRows(t, db, 0)
	require.Len(t, rows, 1)
	assert.Equal(t, "setter", rows[0]["kind"])
	assert.Equal(t, "clock", rows[0]["name"])
	assert.Equal(t, "com.shop.time", rows[0]["dst_package"])
}

func TestResolver_Resolve_PassFailureDoesNotStopOthers(t *testing.T) {
	t.Parallel()

	db := &fakeDB{failOn: "m.name = m.class"}
	db.respond = respondWith(
		[]map[string]any{
			bean("com.shop.service", "OrderService", "orderService", "OrderService"),
		},
		nil, nil,
		[]map[string]any{
			{
				"package": "com.shop.web", "class": "OrderController", "name": "setOrderService",
				"param_names": []any{"orderService"}, "param_types": []any{"OrderService"},
				"annotations": []any{"Autowired"},
			},
		},
	)

	stats, err := newTestResolver(db).Resolve(context.Background(), "shop")
	require.NoError(t, err)

	require.Len(t, stats.Errors, 1)
	assert.Contains(t, stats.Errors[0], "constructor pass:")

	// Field and setter passes still ran.
	require.Len(t, stats.Passes, 2)
	assert.Equal(t, KindField, stats.Passes[0].Kind)
	assert.Equal(t, KindSetter, stats.Passes[1].Kind)
	assert.Equal(t, 1, stats.TotalEdges())
}

func TestResolver_Resolve_BeanIndexErrorIsFatal(t *testing.T) {
	t.Parallel()

	db := &fakeDB{failOn: "RETURN b.package"}

	_, err := newTestResolver(db).Resolve(context.Background(), "shop")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load bean index")
}

func TestResolver_ListWiring_SortsAndForwardsKindFilter(t *testing.T) {
	t.Parallel()

	var gotKind any
	db := &fakeDB{}
	db.respond = func(cypher string, params map[string]any) []map[string]any {
		if !strings.Contains(cypher, "[d:DEPENDS_ON]") {
			return nil
		}
		gotKind = params["kind"]
		return []map[string]any{
			{
				"src_package": "com.shop.z", "src_class": "ZService", "src_name": "zService",
				"dst_package": "com.shop.repo", "dst_class": "ZRepo", "dst_name": "zRepo",
				"kind": "field", "name": "repo", "type": "ZRepo",
			},
			{
				"src_package": "com.shop.a", "src_class": "AService", "src_name": "aService",
				"dst_package": "com.shop.repo", "dst_class": "ARepo", "dst_name": "aRepo",
				"kind": "field", "name": "repo", "type": "ARepo",
			},
		}
	}

	edges, err := newTestResolver(db).ListWiring(context.Background(), "shop", "field")
	require.NoError(t, err)

	assert.Equal(t, "field", gotKind)
	require.Len(t, edges, 2)
	assert.Equal(t, "com.shop.a.AService", edges[0].Src())
	assert.Equal(t, "com.shop.repo.ARepo", edges[0].Dst())
	assert.Equal(t, "aService", edges[0].SrcBean)
	assert.Equal(t, "zRepo", edges[1].DstBean)
}
