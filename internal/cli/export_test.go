package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test plan for export command helpers:
// 1. Accepted formats pass validation
// 2. Unknown formats report the valid set
// 3. Explicit --out wins over the export directory
// 4. Default output creates the export directory

func TestValidateExportFormat(t *testing.T) {
	t.Parallel()

	for _, format := range []string{"md", "xlsx", "dot"} {
		assert.NoError(t, validateExportFormat(format), format)
	}

	err := validateExportFormat("pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "pdf"`)
	assert.Contains(t, err.Error(), "md, xlsx, dot")
}

func TestExportPath_ExplicitOut(t *testing.T) {
	// Note: Cannot use t.Parallel() because the test sets a package-level flag

	old := exportOutFlag
	exportOutFlag = filepath.Join(t.TempDir(), "custom.md")
	defer func() { exportOutFlag = old }()

	out, err := exportPath(filepath.Join(t.TempDir(), "unused"), "shop-report.md")
	require.NoError(t, err)
	assert.Equal(t, exportOutFlag, out)
}

func TestExportPath_DefaultCreatesDirectory(t *testing.T) {
	// Note: Cannot use t.Parallel() because the test sets a package-level flag

	old := exportOutFlag
	exportOutFlag = ""
	defer func() { exportOutFlag = old }()

	dir := filepath.Join(t.TempDir(), "javamap-out")
	out, err := exportPath(dir, "shop-report.md")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "shop-report.md"), out)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
