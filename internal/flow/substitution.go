// internal/flow/substitution.go
package flow

import (
	"context"
	"math"

	"nutrifacil/internal/models"
)

const SubstitutionFallback = "Erro ao buscar."

type Substituter interface {
	GetSubstitution(ctx context.Context, food string, targetCalories int) (string, error)
}

// Substitution is the last substitution lookup shown on the diet screen.
type Substitution struct {
	MealID   string `json:"mealId"`
	Food     string `json:"food"`
	Calories int    `json:"calories"`
	Text     string `json:"text"`
	Failed   bool   `json:"failed"`
}

// SubstitutionTarget picks the food and calorie target offered for a meal:
// the first item and the meal calories split evenly across its items.
func SubstitutionTarget(meal models.Meal) (food string, calories int, ok bool) {
	if len(meal.Items) == 0 {
		return "", 0, false
	}
	calories = int(math.Round(meal.Calories / float64(len(meal.Items))))
	return meal.Items[0].Name, calories, true
}

// Substitute returns the suggestion text. When the lookup fails for any
// reason the text is SubstitutionFallback and the cause is returned with it.
func Substitute(ctx context.Context, substituter Substituter, food string, calories int) (string, error) {
	text, err := substituter.GetSubstitution(ctx, food, calories)
	if err != nil {
		return SubstitutionFallback, err
	}
	return text, nil
}
