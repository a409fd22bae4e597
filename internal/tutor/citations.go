package tutor

import (
	"regexp"
	"strconv"
)

// CodeReference is an advisory citation pulled out of assistant text. It is
// derived by pattern matching, not verified against the code documents.
type CodeReference struct {
	Code      string `json:"code"`
	Section   string `json:"section"`
	Title     string `json:"title"`
	Relevance string `json:"relevance"`
}

type ModuleReference struct {
	ModuleNumber int      `json:"module_number"`
	Title        string   `json:"title"`
	Relevance    string   `json:"relevance"`
	Competencies []string `json:"competencies"`
}

var (
	b1491Re  = regexp.MustCompile(`(?i)CSA B149\.1-25[,\s]*Section\s*([\d.]+)`)
	b1492Re  = regexp.MustCompile(`(?i)CSA B149\.2-25[,\s]*Section\s*([\d.]+)`)
	moduleRe = regexp.MustCompile(`(?i)(?:Module|Unit)\s*(\d+)`)
)

// ExtractCodeReferences scans completion text for code-section citations.
// The propane code family is only scanned for G2, matching that tier's coverage.
func ExtractCodeReferences(content string, level Level) []CodeReference {
	var refs []CodeReference

	for _, m := range b1491Re.FindAllStringSubmatch(content, -1) {
		refs = append(refs, CodeReference{
			Code:      "CSA B149.1-25",
			Section:   m[1],
			Title:     SectionTitle(m[1]),
			Relevance: "direct",
		})
	}

	if level == LevelG2 {
		for _, m := range b1492Re.FindAllStringSubmatch(content, -1) {
			refs = append(refs, CodeReference{
				Code:      "CSA B149.2-25",
				Section:   m[1],
				Title:     "Propane Installation Code",
				Relevance: "direct",
			})
		}
	}

	return refs
}

// ExtractModuleReferences scans completion text for training unit citations.
func ExtractModuleReferences(content string) []ModuleReference {
	var refs []ModuleReference
	for _, m := range moduleRe.FindAllStringSubmatch(content, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 {
			continue
		}
		refs = append(refs, ModuleReference{
			ModuleNumber: n,
			Title:        ModuleTitle(n),
			Relevance:    "direct",
			Competencies: ModuleCompetencies(n),
		})
	}
	return refs
}
