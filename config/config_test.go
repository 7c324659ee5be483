package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultIsPopulated(t *testing.T) {
	c := Default()
	require.True(t, c.SSAO.Enabled)
	require.Greater(t, c.HDR.Gamma, float32(0))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.toml")

	want := Default()
	want.SSAO.Radius = 0.75
	want.Volumetric.Enabled = true
	want.Skybox.File = "skybox.hdr"

	require.NoError(t, Save(path, want))

	got, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}
