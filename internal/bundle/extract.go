package bundle

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mholt/archiver/v4"
)

// extractArchive unpacks src into dest. The archive format is identified
// from the file name and contents, so zip and tar.xz bundles are handled
// uniformly.
func extractArchive(ctx context.Context, src, dest string) error {
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	format, input, err := archiver.Identify(filepath.Base(src), f)
	if err == archiver.ErrNoMatch {
		return fmt.Errorf("unrecognized archive format: %s", src)
	} else if err != nil {
		return fmt.Errorf("identify archive: %w", err)
	}

	if decom, ok := format.(archiver.Decompressor); ok {
		rc, err := decom.OpenReader(input)
		if err != nil {
			return fmt.Errorf("open decompressor: %w", err)
		}
		defer rc.Close()
		input = rc
	}

	ex, ok := format.(archiver.Extractor)
	if !ok {
		return fmt.Errorf("format of %s does not support extraction", src)
	}

	handler := func(_ context.Context, file archiver.File) error {
		target := filepath.Join(dest, filepath.FromSlash(file.NameInArchive))
		if target != dest && !strings.HasPrefix(target, dest+string(os.PathSeparator)) {
			return fmt.Errorf("archive entry escapes destination: %s", file.NameInArchive)
		}
		if file.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}

		af, err := file.Open()
		if err != nil {
			return err
		}
		defer af.Close()

		out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, file.Mode().Perm())
		if err != nil {
			return err
		}
		if _, err := io.Copy(out, af); err != nil {
			out.Close()
			return err
		}
		return out.Close()
	}

	if err := ex.Extract(ctx, input, nil, handler); err != nil {
		return fmt.Errorf("extract: %w", err)
	}
	return nil
}
