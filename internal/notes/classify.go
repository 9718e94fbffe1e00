package notes

import "strings"

// rule pairs a keyword set with the category it selects. Rules are
// evaluated top-down and the first match wins, so slice order is the
// priority order: Feature > Improvement > Fix > Documentation.
type rule struct {
	category Category
	keywords []string
}

var classificationRules = []rule{
	{CategoryFeature, []string{"feat", "add", "new"}},
	{CategoryImprovement, []string{"improve", "enhance", "update", "refactor"}},
	{CategoryFix, []string{"fix", "bug"}},
	{CategoryDocumentation, []string{"doc", "docs"}},
}

// Classify assigns a commit subject to exactly one category by testing
// its leading keyword against the rules, case-insensitively. Subjects
// matching no rule land in Other, making classification total.
func Classify(subject string) Category {
	s := strings.ToLower(strings.TrimSpace(subject))
	for _, r := range classificationRules {
		for _, keyword := range r.keywords {
			if strings.HasPrefix(s, keyword) {
				return r.category
			}
		}
	}
	return CategoryOther
}

// Generate builds release notes from commit subjects ordered oldest
// first. Blank subjects are skipped. An empty history produces the
// default boilerplate so a release never ships without notes.
func Generate(subjects []string) *Notes {
	n := &Notes{}
	for _, subject := range subjects {
		if strings.TrimSpace(subject) == "" {
			continue
		}
		n.add(Classify(subject), subject)
	}
	if n.IsEmpty() {
		return DefaultNotes()
	}
	return n
}

// DefaultNotes returns the fixed boilerplate used when no commits landed
// since the previous marker (first release, or a re-release with no new
// history).
func DefaultNotes() *Notes {
	return &Notes{
		Other: []string{
			"General maintenance and stability improvements",
			"Dependency and toolchain updates",
		},
	}
}
