package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type runner interface {
	Run(ctx context.Context) error
}

// run runs c with stdin as input and returns what it printed.
func run(t *testing.T, c runner, stdin string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	err := c.Run(WithIO(t.Context(), strings.NewReader(stdin), &out))

	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	return path
}

func TestOpenSources(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "a")
	b := writeFile(t, dir, "b.txt", "b")

	link := filepath.Join(dir, "link.txt")
	if err := os.Symlink(a, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	relB, err := filepath.Rel(mustGetwd(t), b)
	if err != nil {
		relB = b
	}

	tests := []struct {
		name  string
		paths []string
		want  []string
	}{
		{"in order", []string{b, a}, []string{"b", "a"}},
		{"duplicates", []string{a, link, a, relB, b}, []string{"a", "b"}},
		{"stdin last", []string{"-", a, "-"}, []string{"a", "stdin"}},
		{"stdin only", []string{"-"}, []string{"stdin"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srcs, err := openSources(tt.paths, strings.NewReader("stdin"))
			if err != nil {
				t.Fatal(err)
			}

			t.Cleanup(func() { _ = srcs.Close() })

			var got []string

			for _, r := range srcs.All() {
				data, err := io.ReadAll(r)
				if err != nil {
					t.Fatal(err)
				}

				got = append(got, string(data))
			}

			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("sources mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestOpenSources_Missing(t *testing.T) {
	t.Parallel()

	_, err := openSources([]string{filepath.Join(t.TempDir(), "missing")}, nil)
	if !errors.Is(err, ErrSource) {
		t.Errorf("error = %v, want ErrSource", err)
	}
}

func TestEachLine(t *testing.T) {
	t.Parallel()

	type entry struct {
		Src  string
		Line int
	}

	var got []entry

	err := eachLine(strings.NewReader("1 + 2\n\n# note\n  x  \r\nlast"), func(src string, line int) error {
		got = append(got, entry{src, line})

		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	want := []entry{{"1 + 2", 1}, {"x", 4}, {"last", 5}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
}

func mustGetwd(t *testing.T) string {
	t.Helper()

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}

	return wd
}
