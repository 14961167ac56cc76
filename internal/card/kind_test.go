package card

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindForPath(t *testing.T) {
	tests := []struct {
		path string
		kind string
		file string
		ok   bool
	}{
		{path: filepath.Join("data", "magic.mse-game", "game"), kind: "game", file: filepath.Join("data", "magic.mse-game", "game"), ok: true},
		{path: filepath.Join("data", "magic.mse-game"), kind: "game", file: filepath.Join("data", "magic.mse-game", "game"), ok: true},
		{path: filepath.Join("data", "magic-modern.mse-style"), kind: "style", file: filepath.Join("data", "magic-modern.mse-style", "style"), ok: true},
		{path: "set", kind: "set", file: "set", ok: true},
		{path: filepath.Join("x", "readme.txt"), ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			k, file, ok := KindForPath(tt.path)
			require.Equal(t, tt.ok, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.kind, k.Name)
			assert.Equal(t, tt.file, file)
		})
	}
}

func TestKindForTag(t *testing.T) {
	k, ok := KindForTag("stylesheet")
	require.True(t, ok)
	assert.Equal(t, "style", k.Name)
	assert.Equal(t, ".mse-style", k.Ext())
	assert.Equal(t, "magic-modern.mse-style", k.PackageDir("magic-modern"))

	_, ok = KindForTag("card")
	assert.False(t, ok)
}

func TestPackageName(t *testing.T) {
	assert.Equal(t, "magic", PackageName(filepath.Join("data", "magic.mse-game", "game")))
	assert.Equal(t, "magic-modern", PackageName(filepath.Join("magic-modern.mse-style")))
	assert.Equal(t, "", PackageName(filepath.Join("data", "set")))
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()
	for _, k := range Kinds {
		_, ok := reg.Lookup(k.Tag)
		assert.True(t, ok, k.Tag)
	}
	assert.Len(t, reg.Tags(), 17)
}
