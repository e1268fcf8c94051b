package orders

import "github.com/franciscosanchezn/stellar-burgers-api/internal/models"

// Line is one distinct ingredient of an order with its multiplicity
type Line struct {
	Ingredient models.Ingredient `json:"ingredient"`
	Count      int               `json:"count"`
}

// Details expands an order's ingredient ids into display lines
type Details struct {
	models.Order
	Lines []Line `json:"lines"`
	Total int64  `json:"total"`
}

// IngredientLookup resolves catalog ids; catalog.Catalog satisfies it
type IngredientLookup interface {
	Lookup(id string) (models.Ingredient, bool)
}

// Describe groups the order's ingredients in first-seen order and prices
// them. Ids missing from the catalog are skipped.
func Describe(order models.Order, catalog IngredientLookup) Details {
	details := Details{Order: order, Lines: []Line{}}
	index := make(map[string]int)

	for _, id := range order.Ingredients {
		if i, ok := index[id]; ok {
			details.Lines[i].Count++
			continue
		}
		ingredient, ok := catalog.Lookup(id)
		if !ok {
			continue
		}
		index[id] = len(details.Lines)
		details.Lines = append(details.Lines, Line{Ingredient: ingredient, Count: 1})
	}

	for _, line := range details.Lines {
		details.Total += line.Ingredient.Price * int64(line.Count)
	}
	return details
}
