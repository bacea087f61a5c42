package extractor

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"javamap/internal/facts"
)

// Test Plan for the Java extractor:
// - Extract class facts with package, kind, annotations, javadoc, path
// - Fall back to the default package sentinel when no package is declared
// - Extract fields with verbatim declared types, visibility, annotations
// - Extract methods and constructors (empty return type, name == class)
// - Keep generic parameter types verbatim
// - Reduce qualified annotation names to simple names, read value arguments
// - Turn @Select-style annotations into SQL statement + table ref facts
// - Enums produce a class fact but no member facts

// factsOf filters an extraction result down to one record type.
func factsOf[T facts.Fact](all []facts.Fact) []T {
	var out []T
	for _, f := range all {
		if v, ok := f.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

func extractJavaSource(t *testing.T, source string) []facts.Fact {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "Test.java")
	require.NoError(t, os.WriteFile(path, []byte(source), 0644))

	ex := newJavaExtractor("shop")
	out, err := ex.ExtractFile(path, "src/Test.java")
	require.NoError(t, err)
	return out
}

func TestJavaExtractor_ServiceClass(t *testing.T) {
	t.Parallel()

	source := `package com.shop.service;

import org.springframework.stereotype.Service;

/**
 * Order lifecycle service.
 *
 * Coordinates payment and shipping.
 *
 * @author somebody
 */
@Service("orderSvc")
public class OrderService {

    @Autowired
    private OrderRepository orderRepository;

    private Clock clock;

    public OrderService(OrderRepository repo, PaymentGateway gateway) {
    }

    @Autowired
    public void setClock(Clock clock) {
        this.clock = clock;
    }

    protected List<Order> findRecent(int limit) {
        return null;
    }
}
`
	out := extractJavaSource(t, source)

	classes := factsOf[facts.ClassFact](out)
	require.Len(t, classes, 1)
	cls := classes[0]
	assert.Equal(t, "shop", cls.Project)
	assert.Equal(t, "com.shop.service", cls.Package)
	assert.Equal(t, "OrderService", cls.Name)
	assert.Equal(t, facts.ClassKindClass, cls.Kind)
	assert.Equal(t, "src/Test.java", cls.Path)
	assert.Equal(t, "Order lifecycle service.", cls.LogicalName)
	assert.Equal(t, "Coordinates payment and shipping.", cls.Description)

	svc, ok := cls.Annotations.Find("Service")
	require.True(t, ok)
	assert.Equal(t, "orderSvc", svc.Value)

	fields := factsOf[facts.FieldFact](out)
	require.Len(t, fields, 2)
	repo := fields[0]
	assert.Equal(t, "orderRepository", repo.Name)
	assert.Equal(t, "OrderRepository", repo.Type)
	assert.Equal(t, "private", repo.Visibility)
	assert.Equal(t, []string{"Autowired"}, repo.Annotations.Names())
	assert.Equal(t, "OrderService", repo.Class)

	clock := fields[1]
	assert.Equal(t, "clock", clock.Name)
	assert.Empty(t, clock.Annotations)

	methods := factsOf[facts.MethodFact](out)
	require.Len(t, methods, 3)

	ctor := methods[0]
	assert.Equal(t, "OrderService", ctor.Name)
	assert.Empty(t, ctor.ReturnType)
	assert.True(t, ctor.IsConstructor())
	require.Len(t, ctor.Params, 2)
	assert.Equal(t, facts.Param{Name: "repo", Type: "OrderRepository"}, ctor.Params[0])
	assert.Equal(t, facts.Param{Name: "gateway", Type: "PaymentGateway"}, ctor.Params[1])

	setter := methods[1]
	assert.Equal(t, "setClock", setter.Name)
	assert.Equal(t, "void", setter.ReturnType)
	assert.Equal(t, "public", setter.Visibility)
	assert.Equal(t, []string{"Autowired"}, setter.Annotations.Names())
	require.Len(t, setter.Params, 1)
	assert.Equal(t, facts.Param{Name: "clock", Type: "Clock"}, setter.Params[0])

	finder := methods[2]
	assert.Equal(t, "findRecent", finder.Name)
	assert.Equal(t, "List<Order>", finder.ReturnType)
	assert.Equal(t, "protected", finder.Visibility)
}

func TestJavaExtractor_MapperInterfaceWithStatementAnnotations(t *testing.T) {
	t.Parallel()

	source := `package com.shop.mapper;

public interface OrderMapper {

    @Select("SELECT * FROM orders WHERE id = #{id}")
    Order findById(Long id);

    @Insert("INSERT INTO orders (id, total) VALUES (#{id}, #{total})")
    int insert(Order order);

    @Update("UPDATE orders SET total = #{total} " +
            "WHERE id = #{id}")
    int updateTotal(Order order);
}
`
	out := extractJavaSource(t, source)

	classes := factsOf[facts.ClassFact](out)
	require.Len(t, classes, 1)
	assert.Equal(t, facts.ClassKindInterface, classes[0].Kind)

	stmts := factsOf[facts.SqlStatementFact](out)
	require.Len(t, stmts, 3)
	for _, s := range stmts {
		assert.Equal(t, "com.shop.mapper.OrderMapper", s.Namespace)
	}
	assert.Equal(t, "findById", stmts[0].ID)
	assert.Equal(t, facts.SqlSelect, stmts[0].Kind)
	assert.Equal(t, "SELECT * FROM orders WHERE id = #{id}", stmts[0].SQL)

	// Concatenated string literals join in source order.
	assert.Equal(t, "UPDATE orders SET total = #{total} WHERE id = #{id}", stmts[2].SQL)

	refs := factsOf[facts.TableRefFact](out)
	require.Len(t, refs, 3)
	assert.Equal(t, "orders", refs[0].Table)
	assert.Equal(t, facts.OpRead, refs[0].Op)
	assert.Equal(t, facts.OpCreate, refs[1].Op)
	assert.Equal(t, facts.OpUpdate, refs[2].Op)
}

func TestJavaExtractor_DefaultPackageSentinel(t *testing.T) {
	t.Parallel()

	source := `public class Standalone {
    private String name;
}
`
	out := extractJavaSource(t, source)

	classes := factsOf[facts.ClassFact](out)
	require.Len(t, classes, 1)
	assert.Equal(t, facts.DefaultPackage, classes[0].Package)

	fields := factsOf[facts.FieldFact](out)
	require.Len(t, fields, 1)
	assert.Equal(t, facts.DefaultPackage, fields[0].Package)
}

func TestJavaExtractor_EnumHasNoMemberFacts(t *testing.T) {
	t.Parallel()

	source := `package com.shop;

public enum Status {
    ACTIVE,
    CANCELLED
}
`
	out := extractJavaSource(t, source)

	classes := factsOf[facts.ClassFact](out)
	require.Len(t, classes, 1)
	assert.Equal(t, facts.ClassKindEnum, classes[0].Kind)
	assert.Equal(t, "Status", classes[0].Name)

	assert.Empty(t, factsOf[facts.FieldFact](out))
	assert.Empty(t, factsOf[facts.MethodFact](out))
}

func TestJavaExtractor_SharedFieldDeclaration(t *testing.T) {
	t.Parallel()

	source := `package com.shop;

class Pair {
    private int left, right;
}
`
	out := extractJavaSource(t, source)

	fields := factsOf[facts.FieldFact](out)
	require.Len(t, fields, 2)
	assert.Equal(t, "left", fields[0].Name)
	assert.Equal(t, "right", fields[1].Name)
	for _, f := range fields {
		assert.Equal(t, "int", f.Type)
		assert.Equal(t, "private", f.Visibility)
	}
}

func TestJavaExtractor_QualifiedAnnotationName(t *testing.T) {
	t.Parallel()

	source := `package com.shop;

@org.springframework.stereotype.Service
public class PricingService {
}
`
	out := extractJavaSource(t, source)

	classes := factsOf[facts.ClassFact](out)
	require.Len(t, classes, 1)
	assert.Equal(t, []string{"Service"}, classes[0].Annotations.Names())
}

func TestJavaExtractor_PackageVisibilityIsNotSubstringMatched(t *testing.T) {
	t.Parallel()

	// An annotation containing "public" in its name must not leak into
	// visibility detection.
	source := `package com.shop;

class Plain {
    @PublicApi
    String label;
}
`
	out := extractJavaSource(t, source)

	fields := factsOf[facts.FieldFact](out)
	require.Len(t, fields, 1)
	assert.Equal(t, "package", fields[0].Visibility)
	assert.Equal(t, []string{"PublicApi"}, fields[0].Annotations.Names())
}

func TestJavaExtractor_MultipleTopLevelTypes(t *testing.T) {
	t.Parallel()

	source := `package com.shop;

public class First {
}

class Second {
}
`
	out := extractJavaSource(t, source)

	classes := factsOf[facts.ClassFact](out)
	require.Len(t, classes, 2)
	names := []string{classes[0].Name, classes[1].Name}
	assert.Equal(t, []string{"First", "Second"}, names)
}

func TestJavaExtractor_UnreadableFileReturnsError(t *testing.T) {
	t.Parallel()

	ex := newJavaExtractor("shop")
	_, err := ex.ExtractFile(filepath.Join(t.TempDir(), "Missing.java"), "Missing.java")
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
