package processor

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
)

// Transformer rewrites one file's content from src into dst. It must not
// touch the filesystem itself; the engine owns the temp file and the commit.
type Transformer interface {
	Transform(ctx context.Context, src io.Reader, dst io.Writer) error
}

// TransformFunc adapts a function to Transformer.
type TransformFunc func(ctx context.Context, src io.Reader, dst io.Writer) error

func (f TransformFunc) Transform(ctx context.Context, src io.Reader, dst io.Writer) error {
	return f(ctx, src, dst)
}

// Engine applies a Transformer to files in place. The original file is only
// ever replaced by a rename of a fully written, synced temp file in the same
// directory, so a reader sees either the old content or the new, never a
// partial write.
type Engine struct {
	Transformer Transformer
}

// Apply optimizes the file at path and returns the original size minus the
// new size. On any error the file at path is byte-identical to before, except
// for a failed permission restore after the rename, which is reported as a
// commit error.
func (e Engine) Apply(ctx context.Context, path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, ioError(path, "stat", err)
	}
	original, err := os.ReadFile(path)
	if err != nil {
		return 0, ioError(path, "read", err)
	}
	mode := info.Mode()

	pending, err := renameio.NewPendingFile(path,
		renameio.WithTempDir(filepath.Dir(path)),
		renameio.WithPermissions(mode.Perm()),
	)
	if err != nil {
		return 0, ioError(path, "create temp file", err)
	}
	// No-op once CloseAtomicallyReplace has succeeded.
	defer pending.Cleanup()

	out := &countingWriter{w: pending}
	bw := bufio.NewWriter(out)
	if err := e.transform(ctx, bytes.NewReader(original), bw); err != nil {
		return 0, transformError(path, err)
	}
	if err := bw.Flush(); err != nil {
		return 0, ioError(path, "write temp file", err)
	}

	if err := pending.CloseAtomicallyReplace(); err != nil {
		return 0, commitError(path, "replace", err)
	}
	if err := os.Chmod(path, mode); err != nil {
		return 0, commitError(path, "restore permissions", err)
	}

	return int64(len(original)) - out.n, nil
}

func (e Engine) transform(ctx context.Context, src io.Reader, dst io.Writer) (err error) {
	if e.Transformer == nil {
		return fmt.Errorf("no optimizer configured")
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("optimizer panicked: %v", r)
		}
	}()
	return e.Transformer.Transform(ctx, src, dst)
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
