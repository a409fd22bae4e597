package tutor

import "testing"

func TestExtractCodeReferences_B1491(t *testing.T) {
	content := "Per CSA B149.1-25, Section 5.2 the pipe must be sized for the connected load. See also CSA B149.1-25 Section 7.1."

	refs := ExtractCodeReferences(content, LevelG3)
	if len(refs) != 2 {
		t.Fatalf("expected 2 references, got %d: %+v", len(refs), refs)
	}
	if refs[0].Code != "CSA B149.1-25" || refs[0].Section != "5.2" {
		t.Fatalf("unexpected first ref: %+v", refs[0])
	}
	if refs[0].Title != "Pipe Sizing" {
		t.Fatalf("expected mapped title, got %q", refs[0].Title)
	}
	if refs[1].Section != "7.1" || refs[1].Title != "Testing Procedures" {
		t.Fatalf("unexpected second ref: %+v", refs[1])
	}
}

func TestExtractCodeReferences_PropaneGatedByLevel(t *testing.T) {
	content := "CSA B149.2-25, Section 5.1 governs propane cylinder placement."

	if refs := ExtractCodeReferences(content, LevelG3); len(refs) != 0 {
		t.Fatalf("G3 should not extract propane refs, got %+v", refs)
	}

	refs := ExtractCodeReferences(content, LevelG2)
	if len(refs) != 1 {
		t.Fatalf("expected 1 propane ref for G2, got %d", len(refs))
	}
	if refs[0].Code != "CSA B149.2-25" || refs[0].Section != "5.1" {
		t.Fatalf("unexpected ref: %+v", refs[0])
	}
	if refs[0].Title != "Propane Installation Code" {
		t.Fatalf("unexpected title: %q", refs[0].Title)
	}
}

func TestExtractCodeReferences_NoMatches(t *testing.T) {
	if refs := ExtractCodeReferences("check the manufacturer manual", LevelG2); len(refs) != 0 {
		t.Fatalf("expected no refs, got %+v", refs)
	}
}

func TestExtractModuleReferences(t *testing.T) {
	content := "Review Module 8 before Unit 13, then revisit module 1."

	refs := ExtractModuleReferences(content)
	if len(refs) != 3 {
		t.Fatalf("expected 3 references, got %d: %+v", len(refs), refs)
	}
	if refs[0].ModuleNumber != 8 || refs[0].Title != "Introduction to Piping and Tubing Systems" {
		t.Fatalf("unexpected first ref: %+v", refs[0])
	}
	if refs[1].ModuleNumber != 13 {
		t.Fatalf("expected unit syntax to match, got %+v", refs[1])
	}
	if len(refs[2].Competencies) == 0 {
		t.Fatalf("expected competencies for module 1")
	}
}

func TestExtractModuleReferences_UnknownModuleGetsGenericCompetencies(t *testing.T) {
	refs := ExtractModuleReferences("see Module 22")
	if len(refs) != 1 {
		t.Fatalf("expected 1 ref, got %d", len(refs))
	}
	if len(refs[0].Competencies) != 1 || refs[0].Competencies[0] != "General competencies" {
		t.Fatalf("unexpected competencies: %v", refs[0].Competencies)
	}
}
