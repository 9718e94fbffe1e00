package notes

// Category classifies a commit subject for release notes grouping.
type Category string

// Release note categories in their fixed display order.
const (
	CategoryFeature       Category = "feature"
	CategoryImprovement   Category = "improvement"
	CategoryFix           Category = "fix"
	CategoryDocumentation Category = "documentation"
	CategoryOther         Category = "other"
)

// Categories returns all categories in their standard rendering order.
func Categories() []Category {
	return []Category{
		CategoryFeature,
		CategoryImprovement,
		CategoryFix,
		CategoryDocumentation,
		CategoryOther,
	}
}

// Title returns the section heading used when rendering the category.
func (c Category) Title() string {
	switch c {
	case CategoryFeature:
		return "Features"
	case CategoryImprovement:
		return "Improvements"
	case CategoryFix:
		return "Fixes"
	case CategoryDocumentation:
		return "Documentation"
	default:
		return "Other"
	}
}

// Notes groups commit subjects by category for one release. Subjects keep
// their original chronological order (oldest first) within each category.
type Notes struct {
	Features      []string
	Improvements  []string
	Fixes         []string
	Documentation []string
	Other         []string
}

// IsEmpty returns true if the notes have no subjects in any category.
func (n *Notes) IsEmpty() bool {
	return len(n.Features) == 0 &&
		len(n.Improvements) == 0 &&
		len(n.Fixes) == 0 &&
		len(n.Documentation) == 0 &&
		len(n.Other) == 0
}

// Count returns the total number of subjects across all categories.
func (n *Notes) Count() int {
	return len(n.Features) +
		len(n.Improvements) +
		len(n.Fixes) +
		len(n.Documentation) +
		len(n.Other)
}

// Section returns the subjects recorded under the given category.
func (n *Notes) Section(c Category) []string {
	switch c {
	case CategoryFeature:
		return n.Features
	case CategoryImprovement:
		return n.Improvements
	case CategoryFix:
		return n.Fixes
	case CategoryDocumentation:
		return n.Documentation
	default:
		return n.Other
	}
}

// add appends a subject to the category's section.
func (n *Notes) add(c Category, subject string) {
	switch c {
	case CategoryFeature:
		n.Features = append(n.Features, subject)
	case CategoryImprovement:
		n.Improvements = append(n.Improvements, subject)
	case CategoryFix:
		n.Fixes = append(n.Fixes, subject)
	case CategoryDocumentation:
		n.Documentation = append(n.Documentation, subject)
	default:
		n.Other = append(n.Other, subject)
	}
}
