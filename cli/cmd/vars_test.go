package cmd

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/ardnew/formula/store"
)

func TestVars(t *testing.T) {
	t.Parallel()

	db := StoreFile{StorePath: filepath.Join(t.TempDir(), "vars.db")}

	steps := []struct {
		name string
		cmd  runner
		want string
	}{
		{"set", &VarsSet{StoreFile: db, Name: "nozzle", Formula: "0.4"}, ""},
		{"set from saved", &VarsSet{StoreFile: db, Name: "line_width", Formula: "nozzle * 2"}, ""},
		{"set string", &VarsSet{StoreFile: db, Name: "material", Formula: "'PL' + 'A'"}, ""},
		{"set list", &VarsSet{StoreFile: db, Name: "temps", Formula: "[200, 205 + 5]"}, ""},
		{"get", &VarsGet{StoreFile: db, Names: []string{"material", "temps"}, Output: outputRepr}, "\"PLA\"\n[200, 210]\n"},
		{"get text", &VarsGet{StoreFile: db, Names: []string{"material"}, Output: outputText}, "PLA\n"},
		{"ls", &VarsLs{StoreFile: db}, "line_width = 0.8\nmaterial = \"PLA\"\nnozzle = 0.4\ntemps = [200, 210]\n"},
		{"rm", &VarsRm{StoreFile: db, Names: []string{"line_width", "temps"}}, ""},
		{"ls names", &VarsLs{StoreFile: db, Names: true}, "material\nnozzle\n"},
	}

	for _, step := range steps {
		got, err := run(t, step.cmd, "")
		if err != nil {
			t.Fatalf("%s: %v", step.name, err)
		}

		if got != step.want {
			t.Errorf("%s: output = %q, want %q", step.name, got, step.want)
		}
	}
}

func TestVars_Errors(t *testing.T) {
	t.Parallel()

	db := StoreFile{StorePath: filepath.Join(t.TempDir(), "vars.db")}

	tests := []struct {
		name string
		cmd  runner
		want error
	}{
		{"bad name", &VarsSet{StoreFile: db, Name: "1x", Formula: "1"}, ErrName},
		{"function", &VarsSet{StoreFile: db, Name: "f", Formula: "abs"}, store.ErrUnstorable},
		{"eval", &VarsSet{StoreFile: db, Name: "x", Formula: "1 / 0"}, ErrEval},
		{"get missing", &VarsGet{StoreFile: db, Names: []string{"nope"}}, store.ErrNoVar},
		{"rm missing", &VarsRm{StoreFile: db, Names: []string{"nope"}}, store.ErrNoVar},
	}

	for _, tt := range tests {
		if _, err := run(t, tt.cmd, ""); !errors.Is(err, tt.want) {
			t.Errorf("%s: error = %v, want %v", tt.name, err, tt.want)
		}
	}
}
