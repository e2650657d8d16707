package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewRootCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()

	t.Run("has expected subcommands", func(t *testing.T) {
		t.Parallel()

		want := map[string]bool{
			"crawl":   false,
			"retry":   false,
			"repair":  false,
			"images":  false,
			"stats":   false,
			"search":  false,
			"migrate": false,
			"version": false,
		}
		for _, sub := range cmd.Commands() {
			name := strings.Fields(sub.Use)[0]
			if _, ok := want[name]; ok {
				want[name] = true
			}
		}
		for name, found := range want {
			if !found {
				t.Errorf("subcommand %q not registered", name)
			}
		}
	})

	t.Run("has persistent flags", func(t *testing.T) {
		t.Parallel()

		for _, name := range []string{"verbose", "config", "db-dir"} {
			if cmd.PersistentFlags().Lookup(name) == nil {
				t.Errorf("persistent flag %q not registered", name)
			}
		}
	})

	t.Run("silences usage and errors", func(t *testing.T) {
		t.Parallel()

		if !cmd.SilenceUsage || !cmd.SilenceErrors {
			t.Error("expected SilenceUsage and SilenceErrors to be set")
		}
	})
}

func TestRootCmdHelp(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"--help"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("help execution error: %v", err)
	}
	if !strings.Contains(buf.String(), "delica-crawler") {
		t.Error("help output missing command name")
	}
}

func TestUnknownSubcommand(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"does-not-exist"})

	if err := cmd.Execute(); err == nil {
		t.Error("expected error for unknown subcommand")
	}
}
