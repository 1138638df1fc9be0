// internal/models/plan.go
package models

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

type MacroNutrients struct {
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fats    float64 `json:"fats"`
}

func (m MacroNutrients) Validate() error {
	if m.Protein < 0 || m.Carbs < 0 || m.Fats < 0 {
		return fmt.Errorf("macros must be non-negative (protein=%v carbs=%v fats=%v)", m.Protein, m.Carbs, m.Fats)
	}
	return nil
}

func (m MacroNutrients) TotalGrams() float64 {
	return m.Protein + m.Carbs + m.Fats
}

// Split returns the percentage of total grams held by each macro, rounded to
// whole numbers. All zeros when there is nothing to split.
func (m MacroNutrients) Split() (protein, carbs, fats int) {
	total := m.TotalGrams()
	if total <= 0 {
		return 0, 0, 0
	}
	protein = int(math.Round(m.Protein / total * 100))
	carbs = int(math.Round(m.Carbs / total * 100))
	fats = int(math.Round(m.Fats / total * 100))
	return protein, carbs, fats
}

type FoodItem struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
}

type Meal struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Time         string          `json:"time"`
	Calories     float64         `json:"calories"`
	Macros       *MacroNutrients `json:"macros,omitempty"` // optional in the response schema
	Items        []FoodItem      `json:"items"`
	ImageKeyword string          `json:"imageKeyword,omitempty"`
}

type ShoppingCategory struct {
	Category string   `json:"category"`
	Items    []string `json:"items"`
}

type DietPlan struct {
	TotalCalories float64            `json:"totalCalories"`
	DailyMacros   MacroNutrients     `json:"dailyMacros"`
	Meals         []Meal             `json:"meals"`
	ShoppingList  []ShoppingCategory `json:"shoppingList"`
}

var ErrEmptyPlan = errors.New("diet plan has no meals")

// Validate checks the structural invariants a plan must satisfy before it can
// be shown to the user.
func (p DietPlan) Validate() error {
	if p.TotalCalories < 0 {
		return fmt.Errorf("total calories must be non-negative, got %v", p.TotalCalories)
	}
	if err := p.DailyMacros.Validate(); err != nil {
		return fmt.Errorf("daily macros: %w", err)
	}
	if len(p.Meals) == 0 {
		return ErrEmptyPlan
	}

	for i, meal := range p.Meals {
		if strings.TrimSpace(meal.Name) == "" {
			return fmt.Errorf("meal %d: name is required", i)
		}
		if meal.Calories < 0 {
			return fmt.Errorf("meal %d (%s): calories must be non-negative, got %v", i, meal.Name, meal.Calories)
		}
		if meal.Macros != nil {
			if err := meal.Macros.Validate(); err != nil {
				return fmt.Errorf("meal %d (%s): %w", i, meal.Name, err)
			}
		}
		for j, item := range meal.Items {
			if strings.TrimSpace(item.Name) == "" || strings.TrimSpace(item.Quantity) == "" {
				return fmt.Errorf("meal %d (%s) item %d: name and quantity are required", i, meal.Name, j)
			}
		}
	}

	for i, category := range p.ShoppingList {
		if strings.TrimSpace(category.Category) == "" {
			return fmt.Errorf("shopping list category %d: name is required", i)
		}
	}

	return nil
}

func (p DietPlan) MealCaloriesTotal() float64 {
	var total float64
	for _, meal := range p.Meals {
		total += meal.Calories
	}
	return total
}

// CalorieDrift is the relative difference between the declared daily total
// and the sum of the meals. Advisory only.
func (p DietPlan) CalorieDrift() float64 {
	if p.TotalCalories == 0 {
		return 0
	}
	return (p.MealCaloriesTotal() - p.TotalCalories) / p.TotalCalories
}

// NextMeal is the first meal of the day, or nil for an empty plan.
func (p DietPlan) NextMeal() *Meal {
	if len(p.Meals) == 0 {
		return nil
	}
	return &p.Meals[0]
}

func (p DietPlan) ShoppingItemCount() int {
	count := 0
	for _, category := range p.ShoppingList {
		count += len(category.Items)
	}
	return count
}
