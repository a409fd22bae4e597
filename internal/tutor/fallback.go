package tutor

import (
	"math/rand"
	"strings"
)

// Canned answers used when no provider credential is configured or a remote
// call fails. The conversation always gets a reply; it is just a lower
// confidence one.
var fallbackResponses = map[Level][]string{
	LevelG3: {
		"That's an excellent question about G3 gas technician requirements. For residential and small commercial installations up to 400,000 BTU/hr, CSA B149.1-25 provides comprehensive guidance on installation procedures and safety protocols. Always ensure proper ventilation and follow manufacturer guidelines for optimal safety.",

		"According to CSA B149.1-25 standards for G3 technicians, proper clearances and installation requirements are essential. Remember to verify gas pressure, conduct thorough leak testing, and ensure adequate combustion air supply for all appliances.",

		"For G3 certification success, focus on understanding residential gas systems, basic piping design, and safety procedures. Units 1-9 cover the fundamental competencies including safety, tools, gas properties, codes, electricity, and appliance basics.",

		"Safety is paramount in G3 work. Always follow proper lockout/tagout procedures, use appropriate PPE, and maintain adequate ventilation. CSA B149.1-25 Section 3 outlines critical safety requirements for residential installations.",
	},
	LevelG2: {
		"Excellent question regarding G2 advanced gas systems. CSA B149.1-25 and B149.2-25 provide comprehensive coverage for large commercial and industrial installations. G2 technicians must master complex system design, load calculations, and advanced venting requirements.",

		"As a G2 technician, you'll handle unlimited BTU capacity systems and complex multi-appliance installations. Units 10-24 cover advanced topics including pressure regulators, controls, commercial appliances, and sophisticated venting systems.",

		"For G2 certification, understanding both CSA B149.1-25 and B149.2-25 (Propane) codes is essential. Focus on advanced piping calculations, industrial applications, and complex system commissioning procedures.",

		"Advanced G2 work requires expertise in commercial boilers, industrial systems, and propane installations. Study complex piping networks, advanced controls, and system integration for comprehensive competency development.",
	},
}

// FallbackResponses exposes the canned answer set for a level.
func FallbackResponses(level Level) []string {
	return fallbackResponses[Lookup(level).Level]
}

// FallbackAnswer picks a canned answer for the level and augments it with
// keyword-driven context from the user's message.
func FallbackAnswer(message string, level Level) string {
	responses := FallbackResponses(level)
	answer := responses[rand.Intn(len(responses))]
	return augment(answer, message, level)
}

func augment(answer, message string, level Level) string {
	lower := strings.ToLower(message)

	if strings.Contains(lower, "safety") {
		answer = "Safety is the top priority in gas technician work. " + answer
	}
	if strings.Contains(lower, "exam") || strings.Contains(lower, "test") || strings.Contains(lower, "certification") {
		answer += " This topic is crucial for your certification exam preparation."
	}
	if strings.Contains(lower, "btu") {
		if level == LevelG2 {
			answer += " As a G2 technician, you can work with unlimited BTU capacity systems."
		} else {
			answer += " Remember, G3 technicians work with appliances up to 400,000 BTU/hr capacity."
		}
	}
	return answer
}

// Per-level paragraphs for the self-contained local chat endpoint. Unlike the
// fallback set these are phrased for quick study prompts and occasionally get
// a code reference appended.
var localResponses = map[Level][]string{
	LevelG3: {
		"That's a great question about G3 gas technician requirements. For natural gas appliances up to 400,000 BTU/hr, CSA B149.1-25 requires specific installation procedures and safety protocols. Always ensure proper ventilation and follow manufacturer guidelines.",

		"According to CSA B149.1-25 standards for G3 technicians, proper ventilation and clearance requirements are essential for safe gas appliance installation. Remember to check gas pressure, test for leaks, and verify proper combustion air supply.",

		"For G3 certification preparation, understanding the BTU capacity limits and basic gas installation procedures is crucial for your exam success. Focus on studying gas piping sizing, appliance connections, and safety shut-off procedures.",

		"CSA B149.1-25 outlines specific requirements for G3 technicians working with residential gas appliances. Key areas include proper pipe sizing, leak testing procedures, and understanding gas appliance venting requirements.",

		"Safety is paramount in G3 gas technician work. Always follow lockout/tagout procedures, use proper PPE, and ensure adequate ventilation when working with gas systems. Never skip leak testing procedures.",
	},
	LevelG2: {
		"Excellent question regarding G2 advanced gas systems. CSA B149.1-25 and B149.2-25 outline comprehensive requirements for complex installations and commercial systems. Advanced G2 technicians must understand system design, load calculations, and complex venting systems.",

		"As a G2 technician, you'll work with all gas appliances including complex commercial systems. Understanding advanced troubleshooting, system commissioning, and proper testing procedures is essential for safe installations.",

		"For G2 certification, mastering both residential and commercial gas systems, including proper testing procedures and safety protocols, is required. Study complex piping systems, pressure regulation, and advanced appliance controls.",

		"G2 technicians handle unlimited BTU capacity systems and complex installations. CSA B149.1-25 and B149.2-25 require thorough understanding of gas system design, pressure testing, and advanced safety systems.",

		"Advanced G2 work includes commercial boilers, industrial appliances, and complex distribution systems. Focus on understanding gas train components, safety interlocks, and proper commissioning procedures for your certification exam.",
	},
}

var localCodeReferences = []string{
	"According to CSA B149.1-25, section 5.2, all gas piping must be properly sized and tested for leaks before commissioning.",
	"CSA B149.2-25 requires specific venting requirements for appliances in commercial installations.",
	"Per CSA standards, proper combustion air supply calculations are essential for safe appliance operation.",
	"CSA code requires annual inspection and maintenance of gas appliances in commercial settings.",
	"Gas technician certification requires understanding of both CSA B149.1-25 residential and B149.2-25 commercial codes.",
}

// LocalAnswer generates a reply for the non-AI chat endpoint: a random
// per-level paragraph, an occasional code reference, and the same keyword
// augmentation as the fallback path. No remote model is involved.
func LocalAnswer(message string, level Level) string {
	responses := localResponses[Lookup(level).Level]
	answer := responses[rand.Intn(len(responses))]

	if rand.Float64() > 0.6 {
		answer += " " + localCodeReferences[rand.Intn(len(localCodeReferences))]
	}

	return augment(answer, message, level)
}
