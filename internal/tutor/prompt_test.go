package tutor

import (
	"strings"
	"testing"
)

func TestBuildSystemPrompt_G3(t *testing.T) {
	cfg := Lookup(LevelG3)
	prompt := BuildSystemPrompt(LevelG3, cfg)

	for _, want := range []string{
		"G3 Gas Technician AI Tutor",
		"CSA B149.1-25",
		"G3 FOCUS AREAS",
		"400,000 BTU/hr",
		"- Unit 1: Safety",
		"- Unit 9: Introduction to Gas Appliances",
		"residential/small commercial",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("G3 prompt missing %q", want)
		}
	}
	if strings.Contains(prompt, "CSA B149.2-25") {
		t.Fatalf("G3 prompt should not mention the propane code")
	}
}

func TestBuildSystemPrompt_G2(t *testing.T) {
	cfg := Lookup(LevelG2)
	prompt := BuildSystemPrompt(LevelG2, cfg)

	for _, want := range []string{
		"G2 FOCUS AREAS",
		"CSA B149.2-25",
		"- Unit 10: Advanced Piping and Tubing Systems",
		"- Unit 24: Air Handling",
		"large commercial/industrial",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("G2 prompt missing %q", want)
		}
	}
	if strings.Contains(prompt, "- Unit 1: Safety\n") {
		t.Fatalf("G2 prompt should not list G3 units")
	}
}
