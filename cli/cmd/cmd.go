package cmd

import (
	"context"
	"errors"
	"io"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"
)

type (
	contextKey struct{}
	ioKey      struct{}
)

// WithContext returns a copy of ctx carrying ktx.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, _ := ctx.Value(contextKey{}).(*kong.Context)

	return ktx
}

type streams struct {
	in  io.Reader
	out io.Writer
}

// WithIO returns a copy of ctx whose commands read from in and write to out.
func WithIO(ctx context.Context, in io.Reader, out io.Writer) context.Context {
	return context.WithValue(ctx, ioKey{}, streams{in: in, out: out})
}

func ioFrom(ctx context.Context) (io.Reader, io.Writer) {
	s, ok := ctx.Value(ioKey{}).(streams)
	if !ok {
		return os.Stdin, os.Stdout
	}

	return s.in, s.out
}

// stdinSource names standard input in a list of source files.
const stdinSource = "-"

// fileKey identifies a file by device and inode, or by resolved path where
// the platform has no inodes.
type fileKey struct {
	dev, ino uint64
	path     string
}

func makeFileKey(path string, info os.FileInfo) fileKey {
	if stat, ok := info.Sys().(*syscall.Stat_t); ok {
		return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}
	}

	return fileKey{path: path}
}

// sourceFiles are the distinct files named on the command line, in order.
// Standard input, named by "-" or by path, is read last and once.
type sourceFiles struct {
	files []*os.File
	stdin io.Reader
}

// openSources opens paths, skipping any that name a file already opened
// through another path or symlink.
func openSources(paths []string, stdin io.Reader) (*sourceFiles, error) {
	var (
		srcs     sourceFiles
		useStdin bool
	)

	seen := make(map[fileKey]struct{}, len(paths))

	var stdinKey *fileKey

	if f, ok := stdin.(*os.File); ok {
		if info, err := f.Stat(); err == nil {
			k := makeFileKey(f.Name(), info)
			stdinKey = &k
		}
	}

	for _, path := range paths {
		if path == stdinSource {
			useStdin = true

			continue
		}

		resolved, err := filepath.Abs(path)
		if err == nil {
			resolved, err = filepath.EvalSymlinks(resolved)
		}

		var info os.FileInfo
		if err == nil {
			info, err = os.Stat(resolved)
		}

		if err != nil {
			return nil, errors.Join(ErrSource.Wrap(err).With(slog.String("file", path)), srcs.Close())
		}

		key := makeFileKey(resolved, info)
		if stdinKey != nil && key == *stdinKey {
			useStdin = true

			continue
		}

		if _, dup := seen[key]; dup {
			continue
		}

		seen[key] = struct{}{}

		f, err := os.Open(resolved)
		if err != nil {
			return nil, errors.Join(ErrSource.Wrap(err).With(slog.String("file", path)), srcs.Close())
		}

		srcs.files = append(srcs.files, f)
	}

	if useStdin {
		srcs.stdin = stdin
	}

	return &srcs, nil
}

// All yields each source with its name, standard input last.
func (s *sourceFiles) All() iter.Seq2[string, io.Reader] {
	return func(yield func(string, io.Reader) bool) {
		for _, f := range s.files {
			if !yield(f.Name(), f) {
				return
			}
		}

		if s.stdin != nil {
			yield(stdinSource, s.stdin)
		}
	}
}

// Close closes the opened files. Standard input is left open.
func (s *sourceFiles) Close() error {
	var errs []error
	for _, f := range s.files {
		errs = append(errs, f.Close())
	}

	return errors.Join(errs...)
}
