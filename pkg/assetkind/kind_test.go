package assetkind

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyIgnoresCase(t *testing.T) {
	both := Set{Raster: true, Audio: true}

	assert.Equal(t, CategoryRaster, Classify("x.PNG", both))
	assert.Equal(t, CategoryRaster, Classify("icons/mob.Dmi", both))
	assert.Equal(t, CategoryAudio, Classify("sound/hit.OGG", both))
	assert.Equal(t, CategoryNone, Classify("notes.txt", both))
	assert.Equal(t, CategoryNone, Classify("png", both))
}

func TestClassifyRespectsEnabledSet(t *testing.T) {
	assert.Equal(t, CategoryNone, Classify("x.png", Set{Audio: true}))
	assert.Equal(t, CategoryNone, Classify("x.ogg", Set{Raster: true}))
	assert.Equal(t, CategoryNone, Classify("x.png", Set{}))
	assert.True(t, Set{}.Empty())
}

func TestDetectHeader(t *testing.T) {
	format, err := DetectHeader(append([]byte{}, PNGSignature...))
	require.NoError(t, err)
	assert.Equal(t, FormatPNG, format)

	format, err = DetectHeader([]byte("OggS\x00\x02\x00\x00"))
	require.NoError(t, err)
	assert.Equal(t, FormatOgg, format)

	format, err = DetectHeader([]byte("GIF89a\x00\x00"))
	require.NoError(t, err)
	assert.Equal(t, FormatUnknown, format)

	_, err = DetectHeader([]byte("Og"))
	assert.Error(t, err)
}

func TestSniffFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.ogg")
	require.NoError(t, os.WriteFile(path, []byte("OggS\x00\x02\x00\x00\x00"), 0o644))

	format, err := SniffFile(path)
	require.NoError(t, err)
	assert.Equal(t, CategoryAudio.Expected(), format)
}

func TestExtensionsRoundTrip(t *testing.T) {
	all := Set{Raster: true, Audio: true}
	for _, c := range All {
		require.NotEmpty(t, c.Extensions())
		for _, ext := range c.Extensions() {
			assert.Equal(t, c, Classify("file"+ext, all), ext)
		}
		assert.NotEqual(t, FormatUnknown, c.Expected())
	}
	assert.Empty(t, CategoryNone.Extensions())
	assert.Equal(t, "none", CategoryNone.String())
}
