package models

import (
	"errors"
	"strings"
	"testing"

	"github.com/jaswdr/faker"
)

func validProfile() UserProfile {
	return UserProfile{
		Name:          "Ana",
		Age:           30,
		Weight:        62,
		Height:        165,
		Gender:        GenderFemale,
		Goal:          GoalLose,
		ActivityLevel: ActivityModerate,
		MealsPerDay:   DefaultMealsPerDay,
		Restrictions:  []string{"Sem glúten"},
		Dislikes:      []string{"Cebola"},
		Budget:        BudgetMedium,
	}
}

func randomProfile(fake faker.Faker) UserProfile {
	return UserProfile{
		Name:          fake.Person().FirstName(),
		Age:           fake.IntBetween(16, 90),
		Weight:        float64(fake.IntBetween(40, 180)),
		Height:        float64(fake.IntBetween(140, 210)),
		Gender:        Genders[fake.IntBetween(0, len(Genders)-1)],
		Goal:          Goals[fake.IntBetween(0, len(Goals)-1)],
		ActivityLevel: ActivityLevels[fake.IntBetween(0, len(ActivityLevels)-1)],
		MealsPerDay:   fake.IntBetween(3, 6),
		Budget:        Budgets[fake.IntBetween(0, len(Budgets)-1)],
	}
}

func TestUserProfile_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*UserProfile)
		wantErr string
	}{
		{name: "complete profile", mutate: func(*UserProfile) {}},
		{name: "empty name", mutate: func(p *UserProfile) { p.Name = "  " }, wantErr: "name is required"},
		{name: "zero age", mutate: func(p *UserProfile) { p.Age = 0 }, wantErr: "age"},
		{name: "negative weight", mutate: func(p *UserProfile) { p.Weight = -1 }, wantErr: "weight"},
		{name: "missing height", mutate: func(p *UserProfile) { p.Height = 0 }, wantErr: "height"},
		{name: "unknown gender", mutate: func(p *UserProfile) { p.Gender = "x" }, wantErr: "gender"},
		{name: "unknown goal", mutate: func(p *UserProfile) { p.Goal = "" }, wantErr: "goal"},
		{name: "unknown activity", mutate: func(p *UserProfile) { p.ActivityLevel = "Atleta" }, wantErr: "activity"},
		{name: "too many meals", mutate: func(p *UserProfile) { p.MealsPerDay = 12 }, wantErr: "meals per day"},
		{name: "unknown budget", mutate: func(p *UserProfile) { p.Budget = "Luxo" }, wantErr: "budget"},
		{name: "no restrictions is fine", mutate: func(p *UserProfile) { p.Restrictions = nil; p.Dislikes = nil }},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			profile := validProfile()
			testCase.mutate(&profile)

			err := profile.Validate()
			if testCase.wantErr == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), testCase.wantErr) {
				t.Fatalf("expected error containing %q, got %v", testCase.wantErr, err)
			}
		})
	}
}

func TestUserProfile_ValidateRandomProfiles(t *testing.T) {
	fake := faker.New()

	for i := 0; i < 50; i++ {
		profile := randomProfile(fake)
		if err := profile.Validate(); err != nil {
			t.Fatalf("random profile %+v should be valid: %v", profile, err)
		}
	}
}

func TestUserProfile_CloneIsIndependent(t *testing.T) {
	original := validProfile()
	clone := original.Clone()

	clone.Restrictions[0] = "Vegano"
	clone.Dislikes = append(clone.Dislikes, "Fígado")

	if original.Restrictions[0] != "Sem glúten" {
		t.Errorf("expected original restrictions untouched, got %v", original.Restrictions)
	}
	if len(original.Dislikes) != 1 {
		t.Errorf("expected original dislikes untouched, got %v", original.Dislikes)
	}
}

func TestUserProfile_BMI(t *testing.T) {
	profile := validProfile()
	profile.Weight = 70
	profile.Height = 175

	bmi, err := profile.BMI()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bmi != 22.9 {
		t.Errorf("expected BMI 22.9, got %v", bmi)
	}
	if category := BMICategory(bmi); category != "Peso normal" {
		t.Errorf("expected normal category, got %q", category)
	}

	profile.Height = 20
	if _, err := profile.BMI(); err == nil {
		t.Error("expected error for implausible height")
	}
}

func TestBMICategory(t *testing.T) {
	tests := []struct {
		bmi      float64
		expected string
	}{
		{17, "Abaixo do peso"},
		{18.5, "Peso normal"},
		{27, "Sobrepeso"},
		{31, "Obesidade grau I"},
		{36, "Obesidade grau II"},
		{45, "Obesidade grau III"},
	}

	for _, testCase := range tests {
		if got := BMICategory(testCase.bmi); got != testCase.expected {
			t.Errorf("BMICategory(%v): expected %q, got %q", testCase.bmi, testCase.expected, got)
		}
	}
}

func samplePlan() DietPlan {
	return DietPlan{
		TotalCalories: 1800,
		DailyMacros:   MacroNutrients{Protein: 120, Carbs: 200, Fats: 60},
		Meals: []Meal{
			{ID: "1", Name: "Café da Manhã", Time: "08:00", Calories: 450, Items: []FoodItem{{Name: "Aveia", Quantity: "40g"}}},
			{ID: "2", Name: "Almoço", Time: "12:30", Calories: 700, Items: []FoodItem{{Name: "Arroz branco", Quantity: "100g"}, {Name: "Frango", Quantity: "150g"}}},
			{ID: "3", Name: "Jantar", Time: "19:30", Calories: 650, Items: []FoodItem{{Name: "Peixe", Quantity: "150g"}}},
		},
		ShoppingList: []ShoppingCategory{{Category: "Grãos", Items: []string{"Aveia", "Arroz"}}},
	}
}

func TestDietPlan_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*DietPlan)
		wantErr bool
	}{
		{name: "valid plan", mutate: func(*DietPlan) {}},
		{name: "no meals", mutate: func(p *DietPlan) { p.Meals = nil }, wantErr: true},
		{name: "negative meal calories", mutate: func(p *DietPlan) { p.Meals[1].Calories = -5 }, wantErr: true},
		{name: "negative daily protein", mutate: func(p *DietPlan) { p.DailyMacros.Protein = -1 }, wantErr: true},
		{name: "food without quantity", mutate: func(p *DietPlan) { p.Meals[0].Items[0].Quantity = "" }, wantErr: true},
		{name: "meal without name", mutate: func(p *DietPlan) { p.Meals[2].Name = "" }, wantErr: true},
		{name: "negative meal macros", mutate: func(p *DietPlan) { p.Meals[0].Macros = &MacroNutrients{Fats: -2} }, wantErr: true},
		{name: "unnamed shopping category", mutate: func(p *DietPlan) { p.ShoppingList[0].Category = "" }, wantErr: true},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			plan := samplePlan()
			testCase.mutate(&plan)

			err := plan.Validate()
			if testCase.wantErr && err == nil {
				t.Fatal("expected error, got nil")
			}
			if !testCase.wantErr && err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})
	}

	empty := samplePlan()
	empty.Meals = []Meal{}
	if err := empty.Validate(); !errors.Is(err, ErrEmptyPlan) {
		t.Errorf("expected ErrEmptyPlan, got %v", err)
	}
}

func TestDietPlan_Totals(t *testing.T) {
	plan := samplePlan()

	if total := plan.MealCaloriesTotal(); total != 1800 {
		t.Errorf("expected meal total 1800, got %v", total)
	}
	if drift := plan.CalorieDrift(); drift != 0 {
		t.Errorf("expected zero drift, got %v", drift)
	}
	if next := plan.NextMeal(); next == nil || next.Name != "Café da Manhã" {
		t.Errorf("expected breakfast as next meal, got %+v", next)
	}
	if count := plan.ShoppingItemCount(); count != 2 {
		t.Errorf("expected 2 shopping items, got %d", count)
	}

	plan.TotalCalories = 2000
	if drift := plan.CalorieDrift(); drift != -0.1 {
		t.Errorf("expected -0.1 drift, got %v", drift)
	}

	if (DietPlan{}).NextMeal() != nil {
		t.Error("expected nil next meal for empty plan")
	}
}

func TestMacroNutrients_Split(t *testing.T) {
	protein, carbs, fats := MacroNutrients{Protein: 100, Carbs: 250, Fats: 50}.Split()
	if protein != 25 || carbs != 63 || fats != 13 {
		t.Errorf("unexpected split %d/%d/%d", protein, carbs, fats)
	}

	protein, carbs, fats = MacroNutrients{}.Split()
	if protein != 0 || carbs != 0 || fats != 0 {
		t.Errorf("expected zero split, got %d/%d/%d", protein, carbs, fats)
	}
}
