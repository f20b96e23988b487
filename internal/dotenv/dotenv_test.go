package dotenv

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte(`
# comment
export TERMINAL_TEST_A=one
TERMINAL_TEST_B="two"
TERMINAL_TEST_C='three'
not a pair
=skipped
TERMINAL_TEST_D=
`), 0o600))

	t.Setenv("TERMINAL_TEST_B", "preset")
	require.NoError(t, Load(filepath.Join(dir, "missing"), path))

	assert.Equal(t, "one", os.Getenv("TERMINAL_TEST_A"))
	assert.Equal(t, "preset", os.Getenv("TERMINAL_TEST_B"), "existing environment wins")
	assert.Equal(t, "three", os.Getenv("TERMINAL_TEST_C"))
	assert.Equal(t, "", os.Getenv("TERMINAL_TEST_D"))
}

func TestLoadNoFiles(t *testing.T) {
	assert.NoError(t, Load(filepath.Join(t.TempDir(), "absent"), ""))
}
