package tutor

import "strconv"

// Level is the certification tier a tutoring session is scoped to.
type Level string

const (
	LevelG3 Level = "G3"
	LevelG2 Level = "G2"
)

type Coverage struct {
	Codes        []string `json:"codes"`
	Modules      []int    `json:"modules"`
	Regulations  []string `json:"regulations"`
	SpecialFocus []string `json:"special_focus"`
}

type Configuration struct {
	Level        Level    `json:"level"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Coverage     Coverage `json:"coverage"`
	Capabilities []string `json:"capabilities"`
	LearningPath []string `json:"learning_path"`
}

var configurations = map[Level]Configuration{
	LevelG3: {
		Level:       LevelG3,
		Name:        "G3 Gas Technician Tutor",
		Description: "residential and small commercial gas installations up to 400,000 BTU/hr",
		Coverage: Coverage{
			Codes:       []string{"CSA B149.1-25"},
			Modules:     []int{1, 2, 3, 4, 5, 6, 7, 8, 9},
			Regulations: []string{"TSSA Act", "Ontario Regulation 215/01"},
			SpecialFocus: []string{
				"Residential appliances",
				"Basic piping systems",
				"Standard venting",
				"Clearance requirements",
			},
		},
		Capabilities: []string{
			"CSA B149.1-25 code interpretation",
			"Residential appliance installation guidance",
			"Basic piping and tubing sizing",
			"Venting system requirements",
			"Safety procedures and compliance",
			"Units 1-9 exam preparation",
		},
		LearningPath: []string{
			"Safety fundamentals",
			"Fasteners, tools and testing equipment",
			"Properties of natural gas and safe handling",
			"Codes and regulations",
			"Introduction to electricity",
			"Technical manuals, specs and drawings",
			"Customer relations",
			"Introduction to piping and tubing systems",
			"Introduction to gas appliances",
		},
	},
	LevelG2: {
		Level:       LevelG2,
		Name:        "G2 Gas Technician Tutor",
		Description: "large commercial, industrial and propane gas systems with unlimited BTU capacity",
		Coverage: Coverage{
			Codes:       []string{"CSA B149.1-25", "CSA B149.2-25"},
			Modules:     []int{10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20, 21, 22, 23, 24},
			Regulations: []string{"TSSA Act", "Ontario Regulation 215/01", "Propane storage and handling regulations"},
			SpecialFocus: []string{
				"Commercial and industrial systems",
				"Propane installations",
				"Complex piping calculations",
				"Multi-appliance coordination",
			},
		},
		Capabilities: []string{
			"Advanced CSA B149.1-25 applications",
			"Complete CSA B149.2-25 propane expertise",
			"Complex piping calculations and system design",
			"Commercial boiler and process equipment guidance",
			"Advanced troubleshooting and diagnostics",
			"Units 10-24 exam preparation",
		},
		LearningPath: []string{
			"Advanced piping and tubing systems",
			"Pressure regulators",
			"Basic electricity for gas fired equipment",
			"Controls",
			"Building as a system",
			"Domestic and commercial appliances",
			"Water heaters and combination systems",
			"Forced warm air and hydronic heating",
			"Venting systems and air handling",
		},
	},
}

// Levels returns the supported certification levels in selection order.
func Levels() []Level { return []Level{LevelG3, LevelG2} }

// Valid reports whether level is one of the supported tiers.
func Valid(level Level) bool {
	_, ok := configurations[level]
	return ok
}

// Lookup resolves the configuration for a level. It is total: unknown levels
// resolve to the G3 configuration so callers never handle a missing tier.
func Lookup(level Level) Configuration {
	if cfg, ok := configurations[level]; ok {
		return cfg
	}
	return configurations[LevelG3]
}

var moduleTitles = map[int]string{
	1:  "Safety",
	2:  "Fasteners, Tools and Testing Equipment",
	3:  "Properties of Natural Gas and Fuels Safe Handling",
	4:  "Code and Regulations",
	5:  "Introduction to Electricity",
	6:  "Technical Manuals, Specs, Drawings and Graphs",
	7:  "Customer Relations",
	8:  "Introduction to Piping and Tubing Systems",
	9:  "Introduction to Gas Appliances",
	10: "Advanced Piping and Tubing Systems",
	11: "Pressure Regulators",
	12: "Basic Electricity for Gas Fired Equipment",
	13: "Controls",
	14: "Building as a System",
	15: "Domestic Appliances",
	16: "Gas Fired Refrigerators",
	17: "Conversion Burners",
	18: "Water Heaters and Combination Systems",
	19: "Forced Warm Air Heating Systems",
	20: "Hydronic Heating Systems",
	21: "Space Heaters and Fireplaces",
	22: "Venting Systems",
	23: "Forced Air Add-On Devices",
	24: "Air Handling",
}

// ModuleTitle resolves a CSA training unit number to its title, with a generic
// label for unknown units.
func ModuleTitle(n int) string {
	if t, ok := moduleTitles[n]; ok {
		return t
	}
	return "Module " + strconv.Itoa(n)
}

var sectionTitles = map[string]string{
	"6.2.1": "Installation Requirements",
	"5.1":   "Piping Materials",
	"5.2":   "Pipe Sizing",
	"7.1":   "Testing Procedures",
	"3.1":   "Safety Requirements",
	"4.1":   "Appliance Classifications",
	"8.1":   "Venting Systems",
	"9.1":   "Service Requirements",
}

// SectionTitle maps a B149.1 section number to its title where known.
func SectionTitle(section string) string {
	if t, ok := sectionTitles[section]; ok {
		return t
	}
	return "Code Section"
}

var moduleCompetencies = map[int][]string{
	1:  {"Safety procedures", "Emergency response", "PPE usage"},
	4:  {"Code interpretation", "Compliance requirements", "Permit processes"},
	8:  {"Pipe sizing", "Installation methods", "Leak testing"},
	13: {"Control systems", "Safety devices", "Troubleshooting"},
}

func ModuleCompetencies(n int) []string {
	if c, ok := moduleCompetencies[n]; ok {
		return c
	}
	return []string{"General competencies"}
}

// Sources returns the study source labels cited for a level's answers.
func Sources(level Level) []string {
	sources := []string{"CSA B149.1-25", "TSSA Regulations", "LARK Labs Training Materials"}
	if level == LevelG2 {
		sources = append(sources, "CSA B149.2-25")
	}
	return sources
}
