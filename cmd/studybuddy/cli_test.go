package main

import (
	"bytes"
	"strings"
	"testing"
)

func runRootCommandForTest(args ...string) (string, error) {
	root := buildRootCommand()
	buf := &bytes.Buffer{}
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestRootHelpListsSubcommands(t *testing.T) {
	output, err := runRootCommandForTest("--help")
	if err != nil {
		t.Fatalf("execute --help: %v\nOutput:\n%s", err, output)
	}

	for _, name := range []string{"onboard", "chat", "ask", "stats", "cleanup", "version"} {
		if !strings.Contains(output, name) {
			t.Errorf("help output missing subcommand %q\nOutput:\n%s", name, output)
		}
	}
	if strings.Contains(output, "completion") {
		t.Errorf("default completion command should be disabled\nOutput:\n%s", output)
	}
}

func TestRootWithoutSubcommandFails(t *testing.T) {
	if _, err := runRootCommandForTest(); err == nil {
		t.Fatal("bare invocation should require a subcommand")
	}
}

func TestAskRequiresMessage(t *testing.T) {
	if _, err := runRootCommandForTest("ask"); err == nil {
		t.Fatal("ask without a message should fail argument validation")
	}
}

func TestStatsRequiresConversationID(t *testing.T) {
	if _, err := runRootCommandForTest("stats"); err == nil {
		t.Fatal("stats without a conversation id should fail argument validation")
	}
}
