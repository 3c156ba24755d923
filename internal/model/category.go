package model

// Category is a two-level taxonomy: items reference subcategory ids only.
// Deleting a category never cascades to items; a dangling reference is a
// display concern, not a data-integrity violation.
type Category struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Subcategories []Subcategory `json:"subcategories"`
}

type Subcategory struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// DefaultCategories is the built-in taxonomy used when no categories
// document is stored.
func DefaultCategories() []Category {
	return []Category{
		{
			ID:   "cat-life",
			Name: "Life",
			Subcategories: []Subcategory{
				{ID: "sub-health", Name: "Health", Icon: "💪"},
				{ID: "sub-home", Name: "Home", Icon: "🏠"},
				{ID: "sub-errands", Name: "Errands", Icon: "🛒"},
			},
		},
		{
			ID:   "cat-work",
			Name: "Work",
			Subcategories: []Subcategory{
				{ID: "sub-deep", Name: "Deep Work", Icon: "🧠"},
				{ID: "sub-meetings", Name: "Meetings", Icon: "📅"},
			},
		},
		{
			ID:   "cat-growth",
			Name: "Growth",
			Subcategories: []Subcategory{
				{ID: "sub-learning", Name: "Learning", Icon: "📚"},
				{ID: "sub-side", Name: "Side Projects", Icon: "🛠️"},
			},
		},
	}
}

// SubcategoryName resolves a subcategory id for display. Unknown ids
// degrade to "uncategorized".
func SubcategoryName(categories []Category, id string) string {
	if id == "" {
		return "uncategorized"
	}
	for _, cat := range categories {
		for _, sub := range cat.Subcategories {
			if sub.ID == id {
				return sub.Name
			}
		}
	}
	return "uncategorized"
}
