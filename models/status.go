package models

// Status tracks a curated article through its lifecycle. Transitions are
// selected -> rewritten -> published; a rewritten article may be rewritten
// again, nothing ever skips selected.
type Status string

const (
	StatusSelected  Status = "selected"
	StatusRewritten Status = "rewritten"
	StatusPublished Status = "published"
)

func (s Status) Valid() bool {
	switch s {
	case StatusSelected, StatusRewritten, StatusPublished:
		return true
	}
	return false
}

// CanTransition reports whether moving from s to next is allowed.
func (s Status) CanTransition(next Status) bool {
	switch next {
	case StatusRewritten:
		return s == StatusSelected || s == StatusRewritten
	case StatusPublished:
		return s == StatusRewritten
	}
	return false
}

// Category is the closed set of built-in categories that ship with default
// keyword lists. Feed sources may use any string as their category; only the
// built-ins get default keywords, everything else needs custom keywords on
// the source or an entry in the config keyword map.
type Category string

const (
	CategoryTech     Category = "tech"
	CategoryBusiness Category = "business"
	CategoryScience  Category = "science"
	CategorySecurity Category = "security"
)

// BuiltinCategory reports whether the registry category string is one of the
// built-in categories.
func BuiltinCategory(category string) bool {
	switch Category(category) {
	case CategoryTech, CategoryBusiness, CategoryScience, CategorySecurity:
		return true
	}
	return false
}
