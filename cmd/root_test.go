package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_Subcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"classify", "scan", "results", "serve"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestResultsCommand_Subcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range resultsCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"list", "search", "delete"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestSearchCommand_Flags(t *testing.T) {
	f := resultsSearchCmd.Flags()
	for _, name := range []string{"label", "severity", "action", "location", "keyword", "from", "to", "limit"} {
		require.NotNil(t, f.Lookup(name), "missing flag %s", name)
	}
}
