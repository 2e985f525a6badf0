package page

import (
	"bytes"
	"context"
	"io"
	"os"

	kerrors "github.com/kuvia/kuvia/internal/errors"
)

// WriteTo renders the page and writes it to path, or to stdout when path is
// empty. The page is rendered in memory first so that a failed render never
// truncates an existing output file.
func (r *Renderer) WriteTo(ctx context.Context, path string, stdout io.Writer, opts Options) error {
	var buf bytes.Buffer
	if err := r.Render(ctx, &buf, opts); err != nil {
		return err
	}

	if path == "" {
		if _, err := stdout.Write(buf.Bytes()); err != nil {
			return kerrors.NewIOError(kerrors.ErrCodeWriteFailed, "writing page to stdout", err)
		}
		return nil
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return kerrors.NewIOError(kerrors.ErrCodeWriteFailed, "writing page", err).
			WithContext("path", path)
	}
	r.logger.Info(ctx, "Page written", "path", path, "bytes", buf.Len())
	return nil
}
