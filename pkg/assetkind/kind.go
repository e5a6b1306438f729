package assetkind

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Category groups file types that share one optimizer.
type Category int

const (
	CategoryNone Category = iota
	CategoryRaster
	CategoryAudio
)

// All lists every real category in display order.
var All = []Category{CategoryRaster, CategoryAudio}

func (c Category) String() string {
	switch c {
	case CategoryRaster:
		return "dmi"
	case CategoryAudio:
		return "ogg"
	default:
		return "none"
	}
}

// Title is the human label used in progress output.
func (c Category) Title() string {
	switch c {
	case CategoryRaster:
		return "DMI/PNG"
	case CategoryAudio:
		return "OGG"
	default:
		return "Unknown"
	}
}

// Extensions returns the lowercase extensions (with leading dot) of c.
func (c Category) Extensions() []string {
	switch c {
	case CategoryRaster:
		return []string{".dmi", ".png"}
	case CategoryAudio:
		return []string{".ogg"}
	default:
		return nil
	}
}

// Set is the collection of enabled categories.
type Set struct {
	Raster bool
	Audio  bool
}

// Has reports whether c is enabled.
func (s Set) Has(c Category) bool {
	switch c {
	case CategoryRaster:
		return s.Raster
	case CategoryAudio:
		return s.Audio
	default:
		return false
	}
}

// Empty reports whether no category is enabled.
func (s Set) Empty() bool {
	return !s.Raster && !s.Audio
}

// Classify maps a path to its category by extension, case-insensitively.
// Paths whose category is not enabled map to CategoryNone.
func Classify(path string, enabled Set) Category {
	ext := strings.ToLower(filepath.Ext(path))
	for _, c := range All {
		if enabled.Has(c) && slices.Contains(c.Extensions(), ext) {
			return c
		}
	}
	return CategoryNone
}

// Format identifies a container by its magic number.
type Format int

const (
	FormatUnknown Format = iota
	FormatPNG
	FormatOgg
)

func (f Format) String() string {
	switch f {
	case FormatPNG:
		return "png"
	case FormatOgg:
		return "ogg"
	default:
		return "unknown"
	}
}

var (
	PNGSignature = []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}
	OggCapture   = []byte("OggS")
)

// DetectHeader inspects the first 8 bytes of a file for known signatures.
func DetectHeader(header []byte) (Format, error) {
	if len(header) < 8 {
		return FormatUnknown, errors.New("header too short")
	}

	if bytes.HasPrefix(header, PNGSignature) {
		return FormatPNG, nil
	}
	if bytes.HasPrefix(header, OggCapture) {
		return FormatOgg, nil
	}

	return FormatUnknown, nil
}

// SniffFile reads the first 8 bytes of a file to determine its format.
func SniffFile(path string) (Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return FormatUnknown, err
	}
	defer f.Close()

	return SniffReader(f)
}

// SniffReader reads the first 8 bytes from r and determines its format.
func SniffReader(r io.Reader) (Format, error) {
	header := make([]byte, 8)
	if _, err := io.ReadFull(r, header); err != nil {
		return FormatUnknown, err
	}

	return DetectHeader(header)
}

// Expected is the container format every file of c must carry.
func (c Category) Expected() Format {
	switch c {
	case CategoryRaster:
		return FormatPNG
	case CategoryAudio:
		return FormatOgg
	default:
		return FormatUnknown
	}
}
