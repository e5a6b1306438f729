package cmd

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"squash/internal/processor"
)

func isolateConfig(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
}

func writeUncompressedPNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for i := range img.Pix {
		img.Pix[i] = uint8(i % 7)
	}
	var buf bytes.Buffer
	require.NoError(t, (&png.Encoder{CompressionLevel: png.NoCompression}).Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestOptimizeCommand(t *testing.T) {
	isolateConfig(t)
	dir := t.TempDir()
	pngPath := filepath.Join(dir, "icons", "a.png")
	require.NoError(t, os.MkdirAll(filepath.Dir(pngPath), 0o755))
	writeUncompressedPNG(t, pngPath)
	broken := filepath.Join(dir, "broken.dmi")
	require.NoError(t, os.WriteFile(broken, []byte("not an image at all"), 0o600))

	before, err := os.Stat(pngPath)
	require.NoError(t, err)

	out, err := execute(t, "optimize", "--dmi", "--threads", "2", "--no-progress", "--log-level", "ERROR", dir)
	require.NoError(t, err, "per-file failures must not fail the run")
	assert.Contains(t, out, "DMI/PNG")

	after, err := os.Stat(pngPath)
	require.NoError(t, err)
	assert.Less(t, after.Size(), before.Size())
	assert.Equal(t, before.Mode().Perm(), after.Mode().Perm())

	data, err := os.ReadFile(broken)
	require.NoError(t, err)
	assert.Equal(t, "not an image at all", string(data))

	f, err := os.Open(pngPath)
	require.NoError(t, err)
	defer f.Close()
	_, err = png.Decode(f)
	assert.NoError(t, err)
}

func TestScanCommandRejectsMissingTarget(t *testing.T) {
	isolateConfig(t)

	_, err := execute(t, "scan", t.TempDir())
	assert.ErrorIs(t, err, processor.ErrConfig)
}

func TestScanCommandListsPlan(t *testing.T) {
	isolateConfig(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.ogg"), []byte("OggS\x00\x02\x00\x00\x00"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fake.ogg"), []byte("RIFF....WAVE"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("x"), 0o644))

	out, err := execute(t, "scan", "--ogg", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "a.ogg")
	assert.Contains(t, out, "fake.ogg")
	assert.NotContains(t, out, "b.txt")
	assert.Contains(t, out, "2 files would be optimized")
	assert.Contains(t, out, "unknown (expected ogg)")
	assert.Contains(t, out, "1 files do not match their extension")

	data, err := os.ReadFile(filepath.Join(dir, "a.ogg"))
	require.NoError(t, err)
	assert.Equal(t, "OggS\x00\x02\x00\x00\x00", string(data))
}
