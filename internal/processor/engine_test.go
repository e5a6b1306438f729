package processor

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, path string, content string, perm os.FileMode) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), perm))
	require.NoError(t, os.Chmod(path, perm))
}

func constTransform(out string) Transformer {
	return TransformFunc(func(_ context.Context, src io.Reader, dst io.Writer) error {
		if _, err := io.Copy(io.Discard, src); err != nil {
			return err
		}
		_, err := io.WriteString(dst, out)
		return err
	})
}

func failTransform(partial string) Transformer {
	return TransformFunc(func(_ context.Context, _ io.Reader, dst io.Writer) error {
		_, _ = io.WriteString(dst, partial)
		return errors.New("boom")
	})
}

func dirNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestApplyCommitsOutputAndPreservesPermissions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.png")
	writeFixture(t, path, "0123456789", 0o640)

	delta, err := Engine{Transformer: constTransform("0123")}.Apply(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, int64(6), delta)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "0123", string(got))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())
	assert.Equal(t, []string{"a.png"}, dirNames(t, dir))
}

func TestApplyCommitsLargerOutput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "b.ogg")
	writeFixture(t, path, "abc", 0o644)

	delta, err := Engine{Transformer: constTransform("abcdefgh")}.Apply(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, int64(-5), delta)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "abcdefgh", string(got))
}

func TestApplyTransformFailureLeavesOriginal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.png")
	writeFixture(t, path, "original bytes", 0o600)

	delta, err := Engine{Transformer: failTransform("half")}.Apply(context.Background(), path)
	require.Error(t, err)
	assert.Zero(t, delta)
	assert.ErrorIs(t, err, ErrTransform)
	assert.Equal(t, KindTransform, KindOf(err))
	assert.Contains(t, err.Error(), path)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "original bytes", string(got))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	assert.Equal(t, []string{"a.png"}, dirNames(t, dir), "temp file must be discarded")
}

func TestApplyRecoversFromPanickingTransformer(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.png")
	writeFixture(t, path, "keep me", 0o644)

	panicky := TransformFunc(func(context.Context, io.Reader, io.Writer) error {
		panic("corrupt table")
	})
	_, err := Engine{Transformer: panicky}.Apply(context.Background(), path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransform)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(got))
	assert.Equal(t, []string{"a.png"}, dirNames(t, dir))
}

func TestApplyMissingFileIsIOError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gone.ogg")

	_, err := Engine{Transformer: constTransform("x")}.Apply(context.Background(), path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIO)
	assert.NotErrorIs(t, err, ErrCommit)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestApplyWithoutTransformerFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.png")
	writeFixture(t, path, "data", 0o644)

	_, err := Engine{}.Apply(context.Background(), path)
	assert.ErrorIs(t, err, ErrTransform)
}

func TestErrorKinds(t *testing.T) {
	err := ConfigError("parse flags", errors.New("no targets"))
	assert.ErrorIs(t, err, ErrConfig)
	assert.Equal(t, KindConfig, KindOf(err))
	assert.Equal(t, "parse flags: no targets", err.Error())

	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, "commit", KindCommit.String())
}

func TestApplyWritesTempFileBesideTarget(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.png")
	writeFixture(t, path, "0123456789", 0o644)

	var during []string
	spy := TransformFunc(func(_ context.Context, _ io.Reader, dst io.Writer) error {
		during = dirNames(t, dir)
		_, err := io.WriteString(dst, "01")
		return err
	})
	_, err := Engine{Transformer: spy}.Apply(context.Background(), path)
	require.NoError(t, err)

	require.Len(t, during, 2)
	assert.Contains(t, during, "a.png")
	assert.Equal(t, []string{"a.png"}, dirNames(t, dir))
}

func TestApplyRenameFailureIsCommitError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.png")
	writeFixture(t, path, "0123456789", 0o644)

	// Swap the target for a non-empty directory so the final rename fails.
	swap := TransformFunc(func(_ context.Context, _ io.Reader, dst io.Writer) error {
		if err := os.Remove(path); err != nil {
			return err
		}
		writeFixture(t, filepath.Join(path, "inner"), "x", 0o644)
		_, err := io.WriteString(dst, "01")
		return err
	})
	delta, err := Engine{Transformer: swap}.Apply(context.Background(), path)
	require.Error(t, err)
	assert.Zero(t, delta)
	assert.ErrorIs(t, err, ErrCommit)
	assert.Equal(t, KindCommit, KindOf(err))
	assert.Equal(t, []string{"a.png"}, dirNames(t, dir))
	assert.Equal(t, []string{"inner"}, dirNames(t, path))
}
