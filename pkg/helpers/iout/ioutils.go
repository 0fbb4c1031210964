package iout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/go-git/go-billy/v5"
)

//readerWithContext allows to perform a cancellable read operation.
type readerWithContext struct {
	ctx context.Context
	r   io.Reader
}

func NewReaderWithContext(ctx context.Context, r io.Reader) io.Reader {
	return &readerWithContext{ctx: ctx, r: r}
}

func (r *readerWithContext) Read(p []byte) (int, error) {
	select {
	case <-r.ctx.Done():
		return 0, r.ctx.Err()
	default:
		return r.r.Read(p)
	}
}

//WriteFile writes the content produced by fn into a temporary file next to dstPath
//and renames it into place, so a failed write never leaves a half-written destination.
//The parent directory is created if needed and perm is applied when the filesystem supports it.
func WriteFile(fs billy.Filesystem, dstPath string, perm os.FileMode, fn func(w io.Writer) error) error {
	dir := path.Dir(dstPath)
	if err := fs.MkdirAll(dir, os.ModePerm); err != nil {
		return fmt.Errorf("cannot make dir: %w", err)
	}

	tmp, err := fs.TempFile(dir, "."+path.Base(dstPath)+".tmp")
	if err != nil {
		return fmt.Errorf("cannot create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if err = fn(tmp); err != nil {
		tmp.Close()
		_ = fs.Remove(tmpName)
		return fmt.Errorf("cannot write file content: %w", err)
	}
	if err = tmp.Close(); err != nil {
		_ = fs.Remove(tmpName)
		return fmt.Errorf("cannot close file: %w", err)
	}

	if ch, ok := fs.(billy.Change); ok {
		if err = ch.Chmod(tmpName, perm); err != nil && !errors.Is(err, billy.ErrNotSupported) {
			_ = fs.Remove(tmpName)
			return fmt.Errorf("cannot set file mode: %w", err)
		}
	}
	if err = fs.Rename(tmpName, dstPath); err != nil {
		_ = fs.Remove(tmpName)
		return fmt.Errorf("cannot rename file: %w", err)
	}
	return nil
}
