// internal/views/pagedata.go
package views

import (
	"nutrifacil/internal/flow"
	"nutrifacil/internal/models"
)

type NavItem struct {
	Label  string
	Path   string
	Active bool
}

type MacroSplit struct {
	Protein int
	Carbs   int
	Fats    int
}

type MealShare struct {
	Name    string
	Time    string
	Percent int
}

type PremiumFeature string

var PremiumFeatures = []PremiumFeature{
	"Dietas ilimitadas",
	"Chat ilimitado com IA",
	"Receitas exclusivas",
	"Análise de evolução",
}

// PageData is everything a template may read. It embeds the session snapshot
// and adds values derived from it.
type PageData struct {
	flow.Snapshot

	Title   string
	Notice  string
	Refresh int
	ShowNav bool
	Nav     []NavItem

	Genders        []models.Gender
	Goals          []models.Goal
	ActivityLevels []models.ActivityLevel
	Budgets        []models.Budget
	MealOptions    []int

	NextMeal      *models.Meal
	Split         MacroSplit
	HasBMI        bool
	BMI           float64
	BMICategory   string
	DriftPercent  float64
	MealShares    []MealShare
	ShoppingItems int
	Premium       []PremiumFeature
	PlanLabel     string
}

// NewPageData derives the view model for snapshot.
func NewPageData(snapshot flow.Snapshot) PageData {
	data := PageData{
		Snapshot:       snapshot,
		Title:          "NutriFácil",
		ShowNav:        snapshot.Screen.Lateral() && snapshot.Plan != nil,
		Genders:        models.Genders,
		Goals:          models.Goals,
		ActivityLevels: models.ActivityLevels,
		Budgets:        models.Budgets,
		MealOptions:    []int{3, 4, 5, 6},
		Premium:        PremiumFeatures,
		PlanLabel:      "Plano Gratuito",
	}

	if snapshot.Screen == flow.ScreenGenerating {
		data.Refresh = 2
	}

	for _, screen := range flow.LateralScreens() {
		data.Nav = append(data.Nav, NavItem{
			Label:  screen.Label(),
			Path:   "/" + screen.String(),
			Active: screen == snapshot.Screen,
		})
	}

	if snapshot.Profile != nil {
		if snapshot.Profile.IsPremium {
			data.PlanLabel = "Plano Premium"
		}
		if bmi, err := snapshot.Profile.BMI(); err == nil {
			data.HasBMI = true
			data.BMI = bmi
			data.BMICategory = models.BMICategory(bmi)
		}
	}

	if plan := snapshot.Plan; plan != nil {
		data.NextMeal = plan.NextMeal()
		protein, carbs, fats := plan.DailyMacros.Split()
		data.Split = MacroSplit{Protein: protein, Carbs: carbs, Fats: fats}
		data.DriftPercent = plan.CalorieDrift() * 100
		data.ShoppingItems = plan.ShoppingItemCount()

		total := plan.MealCaloriesTotal()
		for _, meal := range plan.Meals {
			share := MealShare{Name: meal.Name, Time: meal.Time}
			if total > 0 {
				share.Percent = int(meal.Calories / total * 100)
			}
			data.MealShares = append(data.MealShares, share)
		}
	}

	return data
}
