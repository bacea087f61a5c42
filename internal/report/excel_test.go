package report

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// Test Plan for the XLSX report:
// - Matrix and wiring land on separate sheets with bold headers
// - Cell values survive a read-back, ops joined with commas
// - The default sheet is dropped and Matrix opens first
// - Empty products still produce a valid workbook
// - An unwritable path surfaces as an error

func TestWriteWorkbook_RoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "shop-report.xlsx")
	require.NoError(t, WriteWorkbook(path, "shop", sampleEdges(), sampleMatrix()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{"Matrix", "Wiring"}, f.GetSheetList())

	props, err := f.GetDocProps()
	require.NoError(t, err)
	assert.Equal(t, "javamap report: shop", props.Title)

	matrixRows, err := f.GetRows("Matrix")
	require.NoError(t, err)
	require.Len(t, matrixRows, 3)
	assert.Equal(t, []string{"Package", "Class", "Method", "Schema", "Table", "Ops"}, matrixRows[0])
	assert.Equal(t, []string{"com.shop", "OrderDao", "findAll", "shop_core", "orders", "R"}, matrixRows[1])
	assert.Equal(t, []string{"com.shop", "OrderDao", "sync", "shop_core", "orders", "C,U"}, matrixRows[2])

	wiringRows, err := f.GetRows("Wiring")
	require.NoError(t, err)
	require.Len(t, wiringRows, 3)
	assert.Equal(t, "com.shop.service.OrderService", wiringRows[1][0])
	assert.Equal(t, "field", wiringRows[1][2])
	assert.Equal(t, "com.shop.repo.OrderRepository", wiringRows[1][5])
}

func TestWriteWorkbook_EmptyProducts(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, WriteWorkbook(path, "shop", nil, nil))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Matrix")
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestWriteWorkbook_BadPathFails(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "missing", "deep", "report.xlsx")
	err := WriteWorkbook(path, "shop", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save workbook")
}
