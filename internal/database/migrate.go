package database

import (
	"fmt"

	"github.com/franciscosanchezn/stellar-burgers-api/internal/models"
	"gorm.io/gorm"
)

// Migrate creates or updates the kitchen schema
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Ingredient{}, &models.Order{}); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}
	return nil
}

// Seed inserts the default ingredient catalog when the table is empty
func Seed(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Ingredient{}).Count(&count).Error; err != nil {
		return fmt.Errorf("counting ingredients: %w", err)
	}
	if count > 0 {
		log.WithField("ingredients", count).Info("Database already seeded with initial data")
		return nil
	}

	log.Info("Database is empty, seeding initial data")
	items := DefaultIngredients()
	for i := range items {
		items[i].Position = i
	}
	if err := db.Create(&items).Error; err != nil {
		return fmt.Errorf("seeding ingredients: %w", err)
	}
	log.WithField("ingredients", len(items)).Info("Database seeded successfully")
	return nil
}

const imageBase = "https://code.s3.yandex.net/react/code/"

func ingredient(id, name string, kind models.Category, proteins, fat, carbs, calories int, price int64, image string) models.Ingredient {
	return models.Ingredient{
		ID:            id,
		Name:          name,
		Type:          kind,
		Proteins:      proteins,
		Fat:           fat,
		Carbohydrates: carbs,
		Calories:      calories,
		Price:         price,
		Image:         imageBase + image + ".png",
		ImageMobile:   imageBase + image + "-mobile.png",
		ImageLarge:    imageBase + image + "-large.png",
	}
}

// DefaultIngredients is the catalog the local kitchen starts with
func DefaultIngredients() []models.Ingredient {
	return []models.Ingredient{
		ingredient("643d69a5c3f7b9001cfa093c", "Craterbun N-200i", models.CategoryBun, 80, 24, 53, 420, 1255, "bun-02"),
		ingredient("643d69a5c3f7b9001cfa093d", "Fluorescent bun R2-D3", models.CategoryBun, 44, 26, 85, 643, 988, "bun-01"),
		ingredient("643d69a5c3f7b9001cfa0941", "Martian Magnolia bio-cutlet", models.CategoryMain, 420, 142, 242, 4242, 424, "meat-01"),
		ingredient("643d69a5c3f7b9001cfa093e", "Luminescent tetraodontimform fillet", models.CategoryMain, 44, 26, 85, 643, 988, "meat-03"),
		ingredient("643d69a5c3f7b9001cfa0946", "Crunchy mineral rings", models.CategoryMain, 808, 689, 609, 986, 300, "mineral_rings"),
		ingredient("643d69a5c3f7b9001cfa0947", "Fallenian tree fruit", models.CategoryMain, 20, 5, 55, 77, 874, "sp_1"),
		ingredient("643d69a5c3f7b9001cfa0948", "Martian alpha-saccharide crystals", models.CategoryMain, 234, 432, 111, 189, 762, "core"),
		ingredient("643d69a5c3f7b9001cfa0942", "Spicy-X sauce", models.CategorySauce, 30, 20, 40, 30, 90, "sauce-02"),
		ingredient("643d69a5c3f7b9001cfa0943", "Space Sauce", models.CategorySauce, 50, 22, 11, 14, 80, "sauce-04"),
		ingredient("643d69a5c3f7b9001cfa0944", "Traditional galactic sauce", models.CategorySauce, 42, 24, 42, 99, 15, "sauce-03"),
	}
}
