package store_test

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ardnew/formula/lang"
	"github.com/ardnew/formula/lang/stdlib"
	"github.com/ardnew/formula/store"
)

func open(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.Open(filepath.Join(t.TempDir(), "nested", "vars.db"))
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}

	t.Cleanup(func() { _ = s.Close() })

	return s
}

func TestStore_RoundTrip(t *testing.T) {
	t.Parallel()

	s := open(t)

	values := map[string]lang.Value{
		"none":   lang.None(),
		"flag":   lang.Bool(true),
		"count":  lang.Int(-42),
		"height": lang.Float(0.2006),
		"tiny":   lang.Float(1e-12),
		"inf":    lang.Float(math.Inf(-1)),
		"nan":    lang.Float(math.NaN()),
		"name":   lang.String("it's"),
		"angles": lang.List(lang.Int(-40), lang.Int(50), lang.List(lang.String("x"))),
	}

	for name, v := range values {
		if err := s.Set(name, v); err != nil {
			t.Fatalf("Set(%s, %v) error: %v", name, v.Repr(), err)
		}
	}

	for name, want := range values {
		got, err := s.Get(name)
		if err != nil {
			t.Fatalf("Get(%s) error: %v", name, err)
		}

		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Get(%s) mismatch (-want +got):\n%s", name, diff)
		}
	}

	names, err := s.Names()
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"angles", "count", "flag", "height", "inf", "name", "nan", "none", "tiny"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("Names mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff(values, s.Snapshot()); diff != "" {
		t.Errorf("Snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_Unstorable(t *testing.T) {
	t.Parallel()

	s := open(t)

	abs, _ := stdlib.New().Lookup("abs")

	for _, v := range []lang.Value{
		abs,
		lang.String(`both ' and "`),
		lang.List(abs),
	} {
		if err := s.Set("bad", v); !errors.Is(err, store.ErrUnstorable) {
			t.Errorf("Set(%v) error = %v, want ErrUnstorable", v.Repr(), err)
		}
	}

	if s.Contains("bad") {
		t.Error("unstorable value was written")
	}
}

func TestStore_Delete(t *testing.T) {
	t.Parallel()

	s := open(t)

	if err := s.Set("x", lang.Int(1)); err != nil {
		t.Fatal(err)
	}

	if err := s.Delete("x"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}

	if _, ok := s.Lookup("x"); ok || s.Contains("x") {
		t.Error("deleted name still bound")
	}

	if err := s.Delete("x"); !errors.Is(err, store.ErrNoVar) {
		t.Errorf("second Delete error = %v, want ErrNoVar", err)
	}

	if _, err := s.Get("x"); !errors.Is(err, store.ErrNoVar) {
		t.Errorf("Get error = %v, want ErrNoVar", err)
	}
}

func TestStore_Environment(t *testing.T) {
	t.Parallel()

	s := open(t)

	if err := s.Set("layer_height", lang.Float(0.2)); err != nil {
		t.Fatal(err)
	}

	if err := s.Set("top_layers", lang.Int(4)); err != nil {
		t.Fatal(err)
	}

	override := lang.NewMap(map[string]lang.Value{"top_layers": lang.Int(3)})
	env := lang.Layer(override, s, stdlib.New())

	got, err := lang.Evaluate(t.Context(), lang.MustParse("round(layer_height * top_layers, 2)"), env)
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(lang.Float(0.6), got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_Reopen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "vars.db")

	s, err := store.Open(path)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Set("kept", lang.String("yes")); err != nil {
		t.Fatal(err)
	}

	if s.Path() != path {
		t.Errorf("Path() = %q, want %q", s.Path(), path)
	}

	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = store.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if v, ok := s.Lookup("kept"); !ok || !v.Equal(lang.String("yes")) {
		t.Errorf("Lookup after reopen = %v, %v", v, ok)
	}
}
