package shoppinglist

import "lista-zakupow/internal/models"

type Stats struct {
	Items    int     `json:"items"`
	Checked  int     `json:"checked"`
	Recipes  int     `json:"recipes"`
	Progress float64 `json:"progress"`
}

type RecipeGroup struct {
	RecipeID   string                `json:"recipeId"`
	RecipeName string                `json:"recipeName"`
	Items      []models.ShoppingItem `json:"items"`
}

func (m *Machine) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.list == nil {
		return Stats{}
	}
	s := Stats{Items: len(m.list.Items), Recipes: len(models.RecipeIDs(m.list.Items))}
	for _, item := range m.list.Items {
		if item.Checked {
			s.Checked++
		}
	}
	if s.Items > 0 {
		s.Progress = float64(s.Checked) / float64(s.Items) * 100
	}
	return s
}

// GroupedItems groups items by recipe in order of first appearance.
func (m *Machine) GroupedItems() []RecipeGroup {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.list == nil {
		return nil
	}
	var groups []RecipeGroup
	index := make(map[string]int)
	for _, item := range m.list.Items {
		i, ok := index[item.RecipeID]
		if !ok {
			i = len(groups)
			index[item.RecipeID] = i
			groups = append(groups, RecipeGroup{RecipeID: item.RecipeID, RecipeName: item.RecipeName})
		}
		groups[i].Items = append(groups[i].Items, item)
	}
	return groups
}
