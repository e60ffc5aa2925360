package agent

import (
	"strings"
	"testing"

	"github.com/studybuddyhq/studybuddy/pkg/tools"
)

func TestCritic_RetriesOnToolError(t *testing.T) {
	c := NewCritic()
	retry, _ := c.Reflect("quantum physics", tools.ErrorResult("upstream down"))
	if !retry {
		t.Fatal("failed tool output should trigger a retry")
	}
	retry, _ = c.Reflect("quantum physics", nil)
	if !retry {
		t.Fatal("nil result should trigger a retry")
	}
}

func TestCritic_RetriesOnThinOutput(t *testing.T) {
	c := NewCritic()
	retry, _ := c.Reflect("quantum physics", tools.TextResult("short"))
	if !retry {
		t.Fatal("thin output should trigger a retry")
	}
}

func TestCritic_RetriesOnPoorCoverage(t *testing.T) {
	c := NewCritic()
	offTopic := strings.Repeat("completely unrelated cooking content. ", 20)
	retry, _ := c.Reflect("quantum entanglement experiments", tools.TextResult(offTopic))
	if !retry {
		t.Fatal("output missing every query term should trigger a retry")
	}
}

func TestCritic_AcceptsCoveringOutput(t *testing.T) {
	c := NewCritic()
	covering := strings.Repeat("quantum entanglement experiments show nonlocal correlations. ", 10)
	retry, verdict := c.Reflect("quantum entanglement experiments", tools.TextResult(covering))
	if retry {
		t.Fatalf("covering output should be accepted, verdict: %s", verdict)
	}
}
