package cmd

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ardnew/formula/lang"
	"github.com/ardnew/formula/store"
)

func TestEnv_Open(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	dbPath := filepath.Join(dir, "vars.db")

	s, err := store.Open(dbPath)
	if err != nil {
		t.Fatal(err)
	}

	for name, v := range map[string]lang.Value{
		"nozzle": lang.Float(0.4),
		"layers": lang.Int(3),
		"label":  lang.String("stored"),
	} {
		if err := s.Set(name, v); err != nil {
			t.Fatal(err)
		}
	}

	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	vars := writeFile(t, dir, "a.yaml", "layers: 10\nlabel: file\nprinter:\n  bed:\n    width: 220\n")
	over := writeFile(t, dir, "b.yaml", "label: override\n")

	e := Env{
		Define:    []string{"layers = layers + 1", "height=layers * 0.5"},
		Vars:      []string{vars, over},
		Store:     true,
		StorePath: dbPath,
	}

	env, release, err := e.open(t.Context())
	if err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() {
		if err := release(); err != nil {
			t.Error(err)
		}
	})

	tests := []struct {
		name string
		want lang.Value
	}{
		{"layers", lang.Int(11)},
		{"height", lang.Float(5.5)},
		{"label", lang.String("override")},
		{"nozzle", lang.Float(0.4)},
		{"printer.bed.width", lang.Int(220)},
		{"math.pi", lang.Float(math.Pi)},
	}

	for _, tt := range tests {
		got, ok := env.Lookup(tt.name)
		if !ok || !got.Equal(tt.want) {
			t.Errorf("Lookup(%q) = %v, %t; want %v", tt.name, got, ok, tt.want)
		}
	}
}

func TestEnv_OpenNoStore(t *testing.T) {
	t.Parallel()

	e := Env{StorePath: filepath.Join(t.TempDir(), "never", "vars.db")}

	env, release, err := e.open(t.Context())
	if err != nil {
		t.Fatal(err)
	}

	if err := release(); err != nil {
		t.Error(err)
	}

	if !env.Contains("abs") {
		t.Error("standard library missing")
	}
}

func TestEnv_OpenErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	tests := []struct {
		name string
		env  Env
		want error
	}{
		{"missing equals", Env{Define: []string{"x"}}, ErrDefine},
		{"keyword name", Env{Define: []string{"for=1"}}, ErrName},
		{"expression name", Env{Define: []string{"a+b=1"}}, ErrName},
		{"syntax", Env{Define: []string{"x=1 +"}}, lang.ErrSyntax},
		{"undefined", Env{Define: []string{"x=y"}}, lang.ErrUndefinedVariable},
		{"later refers to earlier only", Env{Define: []string{"a=b", "b=1"}}, lang.ErrUndefinedVariable},
		{"bad vars key", Env{Vars: []string{writeFile(t, dir, "k.yaml", "not a name: 1\n")}}, ErrVarsFile},
		{"bad vars value", Env{Vars: []string{writeFile(t, dir, "v.yaml", "x: [{a: 1}]\n")}}, lang.ErrTypeMismatch},
		{"bad yaml", Env{Vars: []string{writeFile(t, dir, "y.yaml", "x: [1\n")}}, ErrVarsFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, _, err := tt.env.open(t.Context())
			if !errors.Is(err, tt.want) {
				t.Errorf("open() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoadVarsFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	vars, err := loadVarsFiles(t.Context(), []string{
		writeFile(t, dir, "empty.yaml", ""),
		writeFile(t, dir, "v.yaml", "speeds: [20, 40.5]\nenabled: true\nname: 'PLA'\nnothing: null\n"),
	})
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]string{
		"speeds":  "[20, 40.5]",
		"enabled": "True",
		"name":    `"PLA"`,
		"nothing": "None",
	}

	got := map[string]string{}
	for name, v := range vars.Snapshot() {
		got[name] = v.Repr()
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("vars mismatch (-want +got):\n%s", diff)
	}
}
