package lang

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFreeVariables(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  []string
	}{
		{"1 + 2", []string{}},
		{"a + b * a", []string{"a", "b"}},
		{"[x for x in dummy_array]", []string{"dummy_array"}},
		{"[x for x in x]", []string{"x"}},
		{"[item for row in matrix for item in row]", []string{"matrix"}},
		{"[x for x in xs if x > limit]", []string{"limit", "xs"}},
		{"[a + b for a, b in pairs]", []string{"pairs"}},
		{"[y for x in xs for y in x] + [y]", []string{"xs", "y"}},
		{"[[x for x in row] for row in rows] + x", []string{"rows", "x"}},
		{"f(a)[i:j:k] if c else d", []string{"a", "c", "d", "f", "i", "j", "k"}},
		{"math.pi < r < 10", []string{"math.pi", "r"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got := FreeVariables(MustParse(tt.input))
			if got == nil {
				got = []string{}
			}

			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("FreeVariables(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestWalk(t *testing.T) {
	t.Parallel()

	e := MustParse("[x + 1 for x in xs if x]")

	var got []string
	for n := range Walk(e) {
		got = append(got, n.String())
	}

	want := []string{
		"((x + 1) for x in xs if x)",
		"(x + 1)",
		"x",
		"1",
		"xs",
		"x",
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Walk mismatch (-want +got):\n%s", diff)
	}

	count := 0
	for range Walk(e) {
		count++

		if count == 2 {
			break
		}
	}

	if count != 2 {
		t.Errorf("Walk did not stop early: %d", count)
	}
}

func TestInspect_Prune(t *testing.T) {
	t.Parallel()

	var vars []string

	Inspect(MustParse("f(a, [b for b in c])"), func(n Expr) bool {
		if _, ok := n.(*Comprehension); ok {
			return false
		}

		if v, ok := n.(*Variable); ok {
			vars = append(vars, v.Name)
		}

		return true
	})

	if diff := cmp.Diff([]string{"f", "a"}, vars); diff != "" {
		t.Errorf("Inspect mismatch (-want +got):\n%s", diff)
	}
}
