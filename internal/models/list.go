package models

// ShoppingItem is a single ingredient line added from a recipe. Only Checked
// changes after creation.
type ShoppingItem struct {
	ID             string `json:"id" validate:"required"`
	RecipeID       string `json:"recipeId"`
	RecipeName     string `json:"recipeName"`
	IngredientName string `json:"ingredientName"`
	Amount         string `json:"amount"`
	Checked        bool   `json:"checked"`
}

// ShoppingList timestamps are milliseconds since the Unix epoch.
type ShoppingList struct {
	ID        string         `json:"id"`
	Items     []ShoppingItem `json:"items"`
	CreatedAt int64          `json:"createdAt"`
	UpdatedAt int64          `json:"updatedAt"`
}

// Clone returns a deep copy so callers never share the items slice.
func (l *ShoppingList) Clone() *ShoppingList {
	if l == nil {
		return nil
	}
	c := *l
	c.Items = CloneItems(l.Items)
	return &c
}

func CloneItems(items []ShoppingItem) []ShoppingItem {
	out := make([]ShoppingItem, len(items))
	copy(out, items)
	return out
}

// RecipeIDs returns the distinct recipe ids of items in first-seen order.
func RecipeIDs(items []ShoppingItem) []string {
	seen := make(map[string]bool, len(items))
	ids := []string{}
	for _, item := range items {
		if seen[item.RecipeID] {
			continue
		}
		seen[item.RecipeID] = true
		ids = append(ids, item.RecipeID)
	}
	return ids
}
