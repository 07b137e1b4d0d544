package domain

// Category represents a token lifecycle stage. The three categories
// partition all tracked tokens.
type Category string

const (
	CategoryNewPairs     Category = "new-pairs"
	CategoryFinalStretch Category = "final-stretch"
	CategoryMigrated     Category = "migrated"
)

// FinalStretchThreshold is the bonding progress at which a token moves
// from new-pairs to final-stretch.
const FinalStretchThreshold = 80.0

// String returns the string representation of Category.
func (c Category) String() string {
	return string(c)
}

// IsValid checks if the category is a valid value.
func (c Category) IsValid() bool {
	return c == CategoryNewPairs || c == CategoryFinalStretch || c == CategoryMigrated
}

// CategoryOf derives a token's category from its lifecycle fields.
func CategoryOf(t *Token) Category {
	switch {
	case t.IsMigrated:
		return CategoryMigrated
	case t.BondingProgress >= FinalStretchThreshold:
		return CategoryFinalStretch
	default:
		return CategoryNewPairs
	}
}

// CategoryInfo describes a category for display purposes.
type CategoryInfo struct {
	ID          Category `json:"id"`
	Label       string   `json:"label"`
	Description string   `json:"description"`
}

// Categories returns the dashboard category table in display order.
func Categories() []CategoryInfo {
	return []CategoryInfo{
		{ID: CategoryNewPairs, Label: "New Pairs", Description: "Newly created tokens"},
		{ID: CategoryFinalStretch, Label: "Final Stretch", Description: "Tokens close to migration"},
		{ID: CategoryMigrated, Label: "Migrated", Description: "Recently migrated to a liquid venue"},
	}
}
