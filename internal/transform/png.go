package transform

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"image/png"
	"io"

	"squash/pkg/assetkind"
)

// Profile trades optimization time for output size.
type Profile int

const (
	ProfileThorough Profile = iota
	ProfileFast
)

func (p Profile) String() string {
	if p == ProfileFast {
		return "fast"
	}
	return "thorough"
}

// PNG optimizes PNG and DMI images. DMI files are PNGs whose icon-state
// table lives in a "Description" text chunk, so that chunk is always kept.
type PNG struct {
	Profile Profile
}

const dmiDescriptionKey = "Description"

// Chunks that may precede PLTE and IDAT and survive re-encoding unchanged.
var reinjectable = map[string]bool{
	"tEXt": true,
	"zTXt": true,
	"iTXt": true,
	"gAMA": true,
	"cHRM": true,
	"sRGB": true,
	"iCCP": true,
	"pHYs": true,
}

func (p PNG) Transform(ctx context.Context, src io.Reader, dst io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return err
	}
	chunks, err := readChunks(data)
	if err != nil {
		return err
	}

	kept := make([]pngChunk, 0, len(chunks))
	for _, c := range chunks {
		if !shouldDropPNGChunk(c) {
			kept = append(kept, c)
		}
	}
	best := encodeChunks(kept)

	if p.Profile == ProfileThorough {
		if smaller, ok := reencode(best, kept); ok && len(smaller) < len(best) {
			best = smaller
		}
	}

	_, err = dst.Write(best)
	return err
}

type pngChunk struct {
	name string
	data []byte
}

func readChunks(data []byte) ([]pngChunk, error) {
	if len(data) < 8 {
		return nil, io.ErrUnexpectedEOF
	}
	if format, _ := assetkind.DetectHeader(data[:8]); format != assetkind.FormatPNG {
		return nil, errors.New("invalid PNG signature")
	}

	var chunks []pngChunk
	rest := data[8:]
	for {
		if len(rest) < 12 {
			return nil, fmt.Errorf("truncated PNG: missing IEND")
		}
		length := binary.BigEndian.Uint32(rest[:4])
		if uint64(length)+12 > uint64(len(rest)) {
			return nil, fmt.Errorf("truncated PNG chunk %q", rest[4:8])
		}
		body := rest[4 : 8+length]
		crc := binary.BigEndian.Uint32(rest[8+length : 12+length])
		if crc32.ChecksumIEEE(body) != crc {
			return nil, fmt.Errorf("PNG chunk %q: checksum mismatch", body[:4])
		}

		c := pngChunk{name: string(body[:4]), data: body[4:]}
		chunks = append(chunks, c)
		rest = rest[12+length:]

		if c.name == "IEND" {
			return chunks, nil
		}
	}
}

func encodeChunks(chunks []pngChunk) []byte {
	var buf bytes.Buffer
	buf.Write(assetkind.PNGSignature)
	for _, c := range chunks {
		writeChunk(&buf, c)
	}
	return buf.Bytes()
}

func writeChunk(buf *bytes.Buffer, c pngChunk) {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(c.data)))
	buf.Write(lenBuf[:])

	crc := crc32.NewIEEE()
	crc.Write([]byte(c.name))
	crc.Write(c.data)
	buf.WriteString(c.name)
	buf.Write(c.data)

	var crcBuf [4]byte
	binary.BigEndian.PutUint32(crcBuf[:], crc.Sum32())
	buf.Write(crcBuf[:])
}

func shouldDropPNGChunk(c pngChunk) bool {
	switch c.name {
	case "tEXt", "zTXt", "iTXt":
		return textKey(c.data) != dmiDescriptionKey
	case "tIME", "eXIf":
		return true
	default:
		return false
	}
}

func textKey(data []byte) string {
	idx := bytes.IndexByte(data, 0)
	if idx <= 0 {
		return ""
	}
	return string(data[:idx])
}

// reencode decompresses the image and writes it back at the highest zlib
// level, carrying over the ancillary chunks in kept. It gives up when kept
// holds a chunk whose meaning depends on the original pixel encoding.
func reencode(encoded []byte, kept []pngChunk) ([]byte, bool) {
	var carry []pngChunk
	for _, c := range kept {
		switch c.name {
		case "IHDR", "PLTE", "IDAT", "IEND", "tRNS":
			continue
		}
		if !reinjectable[c.name] {
			return nil, false
		}
		carry = append(carry, c)
	}

	img, err := png.Decode(bytes.NewReader(encoded))
	if err != nil {
		return nil, false
	}
	var out bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&out, img); err != nil {
		return nil, false
	}
	if len(carry) == 0 {
		return out.Bytes(), true
	}

	chunks, err := readChunks(out.Bytes())
	if err != nil || len(chunks) == 0 || chunks[0].name != "IHDR" {
		return nil, false
	}
	merged := make([]pngChunk, 0, len(chunks)+len(carry))
	merged = append(merged, chunks[0])
	merged = append(merged, carry...)
	merged = append(merged, chunks[1:]...)
	return encodeChunks(merged), true
}
