package tutor

import (
	"strings"
	"testing"
)

func TestFallbackAnswer_DrawsFromLevelPool(t *testing.T) {
	pool := FallbackResponses(LevelG3)
	answer := FallbackAnswer("how do I size a pipe", LevelG3)

	found := false
	for _, p := range pool {
		if answer == p {
			found = true
		}
	}
	if !found {
		t.Fatalf("answer not drawn from the G3 pool: %q", answer)
	}
}

func TestFallbackAnswer_SafetyPrefix(t *testing.T) {
	answer := FallbackAnswer("what about safety clearances", LevelG3)
	if !strings.HasPrefix(answer, "Safety is the top priority in gas technician work.") {
		t.Fatalf("expected safety prefix, got %q", answer)
	}
}

func TestFallbackAnswer_ExamSuffix(t *testing.T) {
	answer := FallbackAnswer("will this be on the exam", LevelG2)
	if !strings.HasSuffix(answer, "This topic is crucial for your certification exam preparation.") {
		t.Fatalf("expected exam suffix, got %q", answer)
	}
}

func TestFallbackAnswer_BTUCapacityByLevel(t *testing.T) {
	g3 := FallbackAnswer("what is the btu limit", LevelG3)
	if !strings.Contains(g3, "400,000 BTU/hr") {
		t.Fatalf("expected G3 capacity note, got %q", g3)
	}

	g2 := FallbackAnswer("what is the btu limit", LevelG2)
	if !strings.Contains(g2, "unlimited BTU capacity") {
		t.Fatalf("expected G2 capacity note, got %q", g2)
	}
}

func TestLocalAnswer_NonEmptyForBothLevels(t *testing.T) {
	for _, l := range Levels() {
		if LocalAnswer("tell me about venting", l) == "" {
			t.Fatalf("empty local answer for level %s", l)
		}
	}
}
