package cmd

import (
	"testing"
)

func TestSubcommandsRegistered(t *testing.T) {
	want := []string{"serve", "mcp", "migrate", "version"}
	for _, name := range want {
		found := false
		for _, c := range rootCmd.Commands() {
			if c.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestRootCommandUse(t *testing.T) {
	if rootCmd.Use != "origin" {
		t.Errorf("Use = %q, want origin", rootCmd.Use)
	}
}
