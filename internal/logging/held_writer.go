package logging

import (
	"bytes"
	"io"
	"sync"
)

// HeldWriter forwards writes to an underlying writer until Hold is called.
// While held, output is buffered so it does not interleave with a full-screen
// view on the same terminal; Release writes the backlog and resumes
// forwarding.
type HeldWriter struct {
	mu   sync.Mutex
	w    io.Writer
	held bool
	buf  bytes.Buffer
}

func NewHeldWriter(w io.Writer) *HeldWriter {
	return &HeldWriter{w: w}
}

func (h *HeldWriter) Write(p []byte) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.held {
		return h.buf.Write(p)
	}
	return h.w.Write(p)
}

// Hold starts buffering.
func (h *HeldWriter) Hold() {
	h.mu.Lock()
	h.held = true
	h.mu.Unlock()
}

// Release flushes everything buffered since Hold and stops buffering.
func (h *HeldWriter) Release() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.held = false
	_, err := h.buf.WriteTo(h.w)
	return err
}
