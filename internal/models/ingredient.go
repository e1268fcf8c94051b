package models

// Category classifies an ingredient for the constructor
type Category string

const (
	// CategoryBun contributes a top and a bottom half; at most one per burger
	CategoryBun Category = "bun"
	// CategoryMain is a filling topping
	CategoryMain Category = "main"
	// CategorySauce is a sauce topping
	CategorySauce Category = "sauce"
)

// IsTopping reports whether the category goes into the ordered topping stack
func (c Category) IsTopping() bool {
	return c == CategoryMain || c == CategorySauce
}

// Ingredient is an immutable catalog record
type Ingredient struct {
	ID            string   `json:"_id" gorm:"primaryKey" validate:"required"`
	Name          string   `json:"name" gorm:"not null" validate:"required"`
	Type          Category `json:"type" gorm:"not null;index" validate:"required,oneof=bun main sauce"`
	Proteins      int      `json:"proteins" validate:"gte=0"`
	Fat           int      `json:"fat" validate:"gte=0"`
	Carbohydrates int      `json:"carbohydrates" validate:"gte=0"`
	Calories      int      `json:"calories" validate:"gte=0"`
	Price         int64    `json:"price" gorm:"not null" validate:"gte=0"`
	Image         string   `json:"image"`
	ImageMobile   string   `json:"image_mobile"`
	ImageLarge    string   `json:"image_large"`
	// Position keeps the catalog display order when persisted
	Position int `json:"-" gorm:"index"`
}

// ConstructorEntry is one placement of an ingredient inside the builder.
// The same ingredient can be placed many times, each with its own PlacementID.
type ConstructorEntry struct {
	PlacementID string `json:"id"`
	Ingredient
}
