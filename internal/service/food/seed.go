package food

import "github.com/dumeirei/foodstay-backend/internal/models"

func demoFood(name, description string, price float64, category, image string, ingredients []string, prepMinutes int, vegetarian, vegan bool, spice string) *models.Food {
	return &models.Food{
		Name:            name,
		Description:     description,
		Price:           price,
		Category:        category,
		Image:           image,
		Ingredients:     ingredients,
		PreparationTime: prepMinutes,
		IsAvailable:     true,
		IsVegetarian:    vegetarian,
		IsVegan:         vegan,
		SpiceLevel:      spice,
		Tags:            []string{},
	}
}

// demoFoods 开发环境演示菜品
func demoFoods() []*models.Food {
	return []*models.Food{
		demoFood("Margherita Pizza", "Classic pizza with tomato sauce, fresh mozzarella, and basil", 12.99,
			models.FoodCategoryMainCourse, "https://images.unsplash.com/photo-1604068549290-dea0e4a305ca?w=400",
			[]string{"Tomato sauce", "Mozzarella", "Basil", "Olive oil"}, 20, true, false, models.SpiceLevelMild),
		demoFood("Caesar Salad", "Fresh romaine lettuce with Caesar dressing, croutons, and parmesan", 8.99,
			models.FoodCategoryAppetizer, "https://images.unsplash.com/photo-1546793665-c74683f339c1?w=400",
			[]string{"Romaine lettuce", "Caesar dressing", "Croutons", "Parmesan"}, 10, true, false, models.SpiceLevelMild),
		demoFood("Grilled Salmon", "Fresh salmon grilled to perfection with herbs and lemon", 18.99,
			models.FoodCategoryMainCourse, "https://images.unsplash.com/photo-1467003909585-2f8a72700288?w=400",
			[]string{"Salmon", "Herbs", "Lemon", "Olive oil"}, 25, false, false, models.SpiceLevelMild),
		demoFood("Chocolate Lava Cake", "Warm chocolate cake with a molten chocolate center, served with vanilla ice cream", 6.99,
			models.FoodCategoryDessert, "https://images.unsplash.com/photo-1624353365286-3f8d62daad51?w=400",
			[]string{"Chocolate", "Flour", "Eggs", "Butter", "Sugar"}, 15, true, false, models.SpiceLevelMild),
		demoFood("Fresh Orange Juice", "Freshly squeezed orange juice, served chilled", 3.99,
			models.FoodCategoryBeverage, "https://images.unsplash.com/photo-1613478223719-2ab802602423?w=400",
			[]string{"Fresh oranges"}, 5, true, true, models.SpiceLevelMild),
		demoFood("Vegetable Stir Fry", "Mixed vegetables stir-fried in a savory sauce with tofu", 10.99,
			models.FoodCategoryVegetarian, "https://images.unsplash.com/photo-1512058564366-18510be2db19?w=400",
			[]string{"Broccoli", "Carrots", "Bell peppers", "Tofu", "Soy sauce"}, 15, true, true, models.SpiceLevelMedium),
	}
}
