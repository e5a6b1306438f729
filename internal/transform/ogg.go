package transform

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"squash/pkg/assetkind"
)

// Ogg remuxes an Ogg container into as few pages as possible. Packet data is
// copied verbatim; only page framing changes, so every granule position a
// decoder can observe at a packet boundary is preserved.
type Ogg struct{}

const (
	oggHeaderLen   = 27
	oggMaxSegments = 255

	oggFlagContinued = 0x01
	oggFlagBOS       = 0x02
	oggFlagEOS       = 0x04

	// A page on which no packet finishes carries this granule position.
	oggNoGranule = -1
)

type oggPage struct {
	flags    byte
	granule  int64
	serial   uint32
	sequence uint32
	segments []byte
	body     []byte
}

func (Ogg) Transform(ctx context.Context, src io.Reader, dst io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return err
	}
	pages, err := readOggPages(data)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	buf.Grow(len(data))
	for _, page := range repaginate(pages) {
		writeOggPage(&buf, page)
	}
	_, err = dst.Write(buf.Bytes())
	return err
}

func readOggPages(data []byte) ([]oggPage, error) {
	if len(data) == 0 {
		return nil, errors.New("empty Ogg stream")
	}

	var pages []oggPage
	for offset := 0; offset < len(data); {
		rest := data[offset:]
		if !bytes.HasPrefix(rest, assetkind.OggCapture) {
			return nil, fmt.Errorf("missing Ogg capture pattern at offset %d", offset)
		}
		if len(rest) < oggHeaderLen {
			return nil, fmt.Errorf("truncated Ogg page header at offset %d", offset)
		}
		if rest[4] != 0 {
			return nil, fmt.Errorf("unsupported Ogg version %d at offset %d", rest[4], offset)
		}

		nsegs := int(rest[26])
		if len(rest) < oggHeaderLen+nsegs {
			return nil, fmt.Errorf("truncated Ogg lacing table at offset %d", offset)
		}
		segments := rest[oggHeaderLen : oggHeaderLen+nsegs]
		bodyLen := 0
		for _, s := range segments {
			bodyLen += int(s)
		}
		pageLen := oggHeaderLen + nsegs + bodyLen
		if len(rest) < pageLen {
			return nil, fmt.Errorf("truncated Ogg page body at offset %d", offset)
		}

		want := binary.LittleEndian.Uint32(rest[22:26])
		if got := oggChecksum(rest[:pageLen]); got != want {
			return nil, fmt.Errorf("Ogg page checksum mismatch at offset %d", offset)
		}

		pages = append(pages, oggPage{
			flags:    rest[5],
			granule:  int64(binary.LittleEndian.Uint64(rest[6:14])),
			serial:   binary.LittleEndian.Uint32(rest[14:18]),
			sequence: binary.LittleEndian.Uint32(rest[18:22]),
			segments: segments,
			body:     rest[oggHeaderLen+nsegs : pageLen],
		})
		offset += pageLen
	}
	return pages, nil
}

// repaginate merges runs of adjacent pages from the same logical stream.
// Stream-start and header pages stay as they are, and a merged page always
// ends on a page whose granule position described the same packet boundary.
func repaginate(pages []oggPage) []oggPage {
	out := make([]oggPage, 0, len(pages))
	next := make(map[uint32]uint32)
	var group []oggPage

	flush := func() {
		if len(group) == 0 {
			return
		}
		merged := mergePages(group)
		seq, seen := next[merged.serial]
		if !seen {
			seq = merged.sequence
		}
		merged.sequence = seq
		next[merged.serial] = seq + 1
		out = append(out, merged)
		group = group[:0]
	}

	for _, page := range pages {
		if !canJoin(group, page) {
			flush()
		}
		group = append(group, page)
	}
	flush()
	return out
}

func canJoin(group []oggPage, page oggPage) bool {
	if len(group) == 0 {
		return false
	}
	first, last := group[0], group[len(group)-1]
	if page.serial != first.serial {
		return false
	}
	if isHeaderPage(first) || isHeaderPage(page) {
		return false
	}
	if last.flags&oggFlagEOS != 0 {
		return false
	}
	if page.granule == oggNoGranule {
		// Appending a packet-less page after a finished packet would hide
		// that packet's granule position.
		for _, p := range group {
			if p.granule != oggNoGranule {
				return false
			}
		}
	}
	total := len(page.segments)
	for _, p := range group {
		total += len(p.segments)
	}
	return total <= oggMaxSegments
}

func isHeaderPage(p oggPage) bool {
	return p.flags&oggFlagBOS != 0 || p.granule == 0
}

func mergePages(group []oggPage) oggPage {
	if len(group) == 1 {
		return group[0]
	}
	first, last := group[0], group[len(group)-1]
	merged := oggPage{
		flags:    first.flags&oggFlagContinued | last.flags&oggFlagEOS,
		granule:  last.granule,
		serial:   first.serial,
		sequence: first.sequence,
	}
	for _, p := range group {
		merged.segments = append(merged.segments, p.segments...)
		merged.body = append(merged.body, p.body...)
	}
	return merged
}

func writeOggPage(buf *bytes.Buffer, p oggPage) {
	start := buf.Len()
	var header [oggHeaderLen]byte
	copy(header[:4], assetkind.OggCapture)
	header[5] = p.flags
	binary.LittleEndian.PutUint64(header[6:14], uint64(p.granule))
	binary.LittleEndian.PutUint32(header[14:18], p.serial)
	binary.LittleEndian.PutUint32(header[18:22], p.sequence)
	header[26] = byte(len(p.segments))
	buf.Write(header[:])
	buf.Write(p.segments)
	buf.Write(p.body)

	page := buf.Bytes()[start:]
	binary.LittleEndian.PutUint32(page[22:26], oggChecksum(page))
}

var oggCRCTable = func() [256]uint32 {
	var table [256]uint32
	for i := range table {
		r := uint32(i) << 24
		for j := 0; j < 8; j++ {
			if r&0x80000000 != 0 {
				r = r<<1 ^ 0x04c11db7
			} else {
				r <<= 1
			}
		}
		table[i] = r
	}
	return table
}()

// oggChecksum computes the page CRC with the checksum field treated as zero.
func oggChecksum(page []byte) uint32 {
	var crc uint32
	for i, b := range page {
		if i >= 22 && i < 26 {
			b = 0
		}
		crc = crc<<8 ^ oggCRCTable[byte(crc>>24)^b]
	}
	return crc
}
