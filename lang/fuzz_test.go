package lang

import (
	"errors"
	"testing"
)

func FuzzParse(f *testing.F) {
	for _, seed := range []string{
		"1 + 2",
		"-2 ** 2",
		"a if b else c if d else e",
		"[x * 2 for x in xs if x > 1]",
		"[a for a, b in pairs for c in a]",
		"f(x)[1:2:-1]",
		"not a in b < c",
		"(1,)",
		`'say "hi"'`,
		"dummy[::]",
		"1.5 % 2.",
		primeTower,
	} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, input string) {
		if len(input) > 4096 {
			t.Skip()
		}

		first, err := Parse(t.Context(), input)
		if err != nil {
			if !errors.Is(err, ErrSyntax) {
				t.Fatalf("Parse(%q) error %v is not a syntax error", input, err)
			}

			return
		}

		canon := first.String()

		// Canonical forms parenthesize every operation, so they nest deeper
		// than their source.
		second, err := Parse(t.Context(), canon, WithMaxDepth(1<<16))
		if err != nil {
			t.Fatalf("canonical form %q of %q does not parse: %v", canon, input, err)
		}

		if !Equal(first, second) {
			t.Fatalf("round trip of %q changed the tree:\n first: %s\nsecond: %s",
				input, canon, second)
		}

		if again := second.String(); again != canon {
			t.Fatalf("canonical form is not stable: %q then %q", canon, again)
		}
	})
}
