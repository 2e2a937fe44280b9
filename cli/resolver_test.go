package cli

import (
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/google/go-cmp/cmp"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
		want config
	}{
		{"empty", "", config{}},
		{"flat", "log-level: debug\nstore: false\n", config{"log-level": "debug", "store": false}},
		{"underscores", "log_time_layout: kitchen\n", config{"log-time-layout": "kitchen"}},
		{
			"nested",
			"log:\n  level: trace\n  pretty: true\n",
			config{"log-level": "trace", "log-pretty": true},
		},
		{"numbers", "count: 3\nratio: 0.5\n", config{"count": "3", "ratio": "0.5"}},
		{"list", "define: [a=1, 2]\n", config{"define": []any{"a=1", "2"}}},
		{"malformed", "log: [unterminated\n", config{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res, err := resolve(t.Context())(strings.NewReader(tt.doc))
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}

			if diff := cmp.Diff(tt.want, res.(config)); diff != "" {
				t.Errorf("config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolve_Kong(t *testing.T) {
	t.Parallel()

	var flags struct {
		LogLevel string   `default:"info"`
		Store    bool     `default:"true" negatable:""`
		Define   []string `short:"D"`
		Count    int      `default:"1"`
	}

	res, err := resolve(t.Context())(strings.NewReader(
		"log:\n  level: debug\nstore: false\ndefine:\n  - a=1\n  - b=a+1\ncount: 3\n"))
	if err != nil {
		t.Fatal(err)
	}

	parser, err := kong.New(&flags, kong.Resolvers(res), kong.Exit(func(int) { t.Fatal("exit") }))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := parser.Parse([]string{"--count=4"}); err != nil {
		t.Fatal(err)
	}

	if flags.LogLevel != "debug" || flags.Store || flags.Count != 4 {
		t.Errorf("flags = %+v", flags)
	}

	if diff := cmp.Diff([]string{"a=1", "b=a+1"}, flags.Define); diff != "" {
		t.Errorf("define mismatch (-want +got):\n%s", diff)
	}
}
