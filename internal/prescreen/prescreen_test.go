package prescreen

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilter_AddAndTest(t *testing.T) {
	f := NewFilter(1000, 0.001)
	f.Add("SAVE10")
	f.Add("fiftyoff") // normalized on add

	assert.True(t, f.MightContain("SAVE10"))
	assert.True(t, f.MightContain("save10"), "test normalizes too")
	assert.True(t, f.MightContain("FIFTYOFF"))
	assert.False(t, f.MightContain("NEVERSEEN"))
}

func TestFilter_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codes.bloom")

	f := NewFilter(1000, 0.001)
	f.Add("SAVE10")
	f.Add("OVER9000")
	require.NoError(t, f.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)

	assert.True(t, loaded.MightContain("SAVE10"))
	assert.True(t, loaded.MightContain("OVER9000"))
	assert.False(t, loaded.MightContain("NEVERSEEN"))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.bloom"))
	assert.Error(t, err)
}
