// internal/gateway/parse.go
package gateway

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"nutrifacil/internal/models"
)

type rawMacros struct {
	Protein *float64 `json:"protein"`
	Carbs   *float64 `json:"carbs"`
	Fats    *float64 `json:"fats"`
}

type rawFood struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
}

type rawMeal struct {
	ID           string     `json:"id"`
	Name         *string    `json:"name"`
	Time         *string    `json:"time"`
	Calories     *float64   `json:"calories"`
	Macros       *rawMacros `json:"macros"`
	Items        *[]rawFood `json:"items"`
	ImageKeyword *string    `json:"imageKeyword"`
}

type rawCategory struct {
	Category string   `json:"category"`
	Items    []string `json:"items"`
}

// rawPlan mirrors dietSchema with pointers so that a missing field can be
// told apart from a zero value.
type rawPlan struct {
	TotalCalories *float64       `json:"totalCalories"`
	DailyMacros   *rawMacros     `json:"dailyMacros"`
	Meals         *[]rawMeal     `json:"meals"`
	ShoppingList  *[]rawCategory `json:"shoppingList"`
}

// cleanResponse strips markdown fences and anything outside the outermost
// JSON object.
func cleanResponse(response string) string {
	response = strings.ReplaceAll(response, "```json", "")
	response = strings.ReplaceAll(response, "```", "")
	response = strings.TrimSpace(response)

	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start != -1 && end != -1 && end > start {
		response = response[start : end+1]
	}

	return response
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedResponse, fmt.Sprintf(format, args...))
}

// parseDietPlan converts the model output into a DietPlan. It either returns
// a fully validated plan or an error wrapping ErrMalformedResponse.
func parseDietPlan(text string) (*models.DietPlan, error) {
	var raw rawPlan
	if err := json.Unmarshal([]byte(cleanResponse(text)), &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	switch {
	case raw.TotalCalories == nil:
		return nil, malformed("missing totalCalories")
	case raw.DailyMacros == nil:
		return nil, malformed("missing dailyMacros")
	case raw.Meals == nil:
		return nil, malformed("missing meals")
	case raw.ShoppingList == nil:
		return nil, malformed("missing shoppingList")
	}

	dailyMacros, err := raw.DailyMacros.required("dailyMacros")
	if err != nil {
		return nil, err
	}

	plan := &models.DietPlan{
		TotalCalories: *raw.TotalCalories,
		DailyMacros:   dailyMacros,
		Meals:         make([]models.Meal, 0, len(*raw.Meals)),
		ShoppingList:  make([]models.ShoppingCategory, 0, len(*raw.ShoppingList)),
	}

	for i, entry := range *raw.Meals {
		meal, err := entry.toMeal(i)
		if err != nil {
			return nil, err
		}
		plan.Meals = append(plan.Meals, meal)
	}

	for _, category := range *raw.ShoppingList {
		items := make([]string, 0, len(category.Items))
		for _, item := range category.Items {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				items = append(items, trimmed)
			}
		}
		plan.ShoppingList = append(plan.ShoppingList, models.ShoppingCategory{
			Category: strings.TrimSpace(category.Category),
			Items:    items,
		})
	}

	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	return plan, nil
}

func (m *rawMacros) required(field string) (models.MacroNutrients, error) {
	switch {
	case m.Protein == nil:
		return models.MacroNutrients{}, malformed("missing %s.protein", field)
	case m.Carbs == nil:
		return models.MacroNutrients{}, malformed("missing %s.carbs", field)
	case m.Fats == nil:
		return models.MacroNutrients{}, malformed("missing %s.fats", field)
	}
	return models.MacroNutrients{Protein: *m.Protein, Carbs: *m.Carbs, Fats: *m.Fats}, nil
}

func (m *rawMacros) optional() *models.MacroNutrients {
	if m == nil {
		return nil
	}
	macros := &models.MacroNutrients{}
	if m.Protein != nil {
		macros.Protein = *m.Protein
	}
	if m.Carbs != nil {
		macros.Carbs = *m.Carbs
	}
	if m.Fats != nil {
		macros.Fats = *m.Fats
	}
	return macros
}

func (m rawMeal) toMeal(index int) (models.Meal, error) {
	switch {
	case m.Name == nil:
		return models.Meal{}, malformed("meal %d: missing name", index)
	case m.Time == nil:
		return models.Meal{}, malformed("meal %d: missing time", index)
	case m.Calories == nil:
		return models.Meal{}, malformed("meal %d: missing calories", index)
	case m.Items == nil:
		return models.Meal{}, malformed("meal %d: missing items", index)
	case m.ImageKeyword == nil:
		return models.Meal{}, malformed("meal %d: missing imageKeyword", index)
	}

	id := strings.TrimSpace(m.ID)
	if id == "" {
		id = uuid.NewString()
	}

	items := make([]models.FoodItem, 0, len(*m.Items))
	for _, item := range *m.Items {
		items = append(items, models.FoodItem{
			Name:     strings.TrimSpace(item.Name),
			Quantity: strings.TrimSpace(item.Quantity),
		})
	}

	return models.Meal{
		ID:           id,
		Name:         strings.TrimSpace(*m.Name),
		Time:         strings.TrimSpace(*m.Time),
		Calories:     *m.Calories,
		Macros:       m.Macros.optional(),
		Items:        items,
		ImageKeyword: strings.TrimSpace(*m.ImageKeyword),
	}, nil
}
