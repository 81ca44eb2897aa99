package models

import "slices"

type Recipe struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Ingredients []string `json:"ingredients"`
}

func (r Recipe) HasIngredient(line string) bool {
	return slices.Contains(r.Ingredients, line)
}
