// Package triage maps free-text patient complaints to medical specializations.
package triage

import "strings"

// Specialization is one of the hospital's fixed set of departments.
type Specialization string

const (
	Cardiology      Specialization = "Cardiology"
	Orthopedics     Specialization = "Orthopedics"
	GeneralMedicine Specialization = "General Medicine"
	Dermatology     Specialization = "Dermatology"
	ENT             Specialization = "ENT"
	Gynecology      Specialization = "Gynecology"
	Pediatrics      Specialization = "Pediatrics"
)

// All lists every known specialization.
func All() []Specialization {
	return []Specialization{
		Cardiology, Orthopedics, GeneralMedicine, Dermatology, ENT, Gynecology, Pediatrics,
	}
}

type keywordRule struct {
	keywords []string
	spec     Specialization
}

// fallbackRules are evaluated in order; the first rule with a matching keyword
// wins. Cardiac and respiratory symptoms take priority over everything else.
var fallbackRules = []keywordRule{
	{[]string{"chest", "heart", "bp", "breath"}, Cardiology},
	{[]string{"bone", "joint", "fracture"}, Orthopedics},
	{[]string{"fever", "stomach", "weak", "cold", "flu"}, GeneralMedicine},
	{[]string{"rash", "itch", "skin", "allergy"}, Dermatology},
	{[]string{"ear", "nose", "throat"}, ENT},
	{[]string{"preg", "period", "women"}, Gynecology},
	{[]string{"child", "kid", "children"}, Pediatrics},
}

// FallbackClassify maps a complaint to a specialization using the keyword
// table alone. Unmatched or empty complaints go to General Medicine.
func FallbackClassify(complaint string) Specialization {
	text := strings.ToLower(complaint)
	for _, rule := range fallbackRules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return rule.spec
			}
		}
	}
	return GeneralMedicine
}

// replyRules map a model reply onto a specialization. Order matters: "ent" is
// a substring of several words, so it is checked after the more specific
// prefixes.
var replyRules = []keywordRule{
	{[]string{"cardio"}, Cardiology},
	{[]string{"ortho"}, Orthopedics},
	{[]string{"derm"}, Dermatology},
	{[]string{"ent"}, ENT},
	{[]string{"gyn", "women"}, Gynecology},
	{[]string{"pedi", "child"}, Pediatrics},
	{[]string{"general", "medicine"}, GeneralMedicine},
}

// MatchReply extracts a specialization from a model's free-text reply. Only
// the first line is considered. Returns false when no specialization can be
// recognized.
func MatchReply(reply string) (Specialization, bool) {
	line := reply
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx]
	}
	line = strings.ToLower(strings.TrimSpace(line))
	if line == "" {
		return "", false
	}
	for _, rule := range replyRules {
		for _, kw := range rule.keywords {
			if strings.Contains(line, kw) {
				return rule.spec, true
			}
		}
	}
	return "", false
}
