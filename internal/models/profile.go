// internal/models/profile.go
package models

import (
	"fmt"
	"math"
	"strings"
)

type Gender string

const (
	GenderMale   Gender = "Masculino"
	GenderFemale Gender = "Feminino"
	GenderOther  Gender = "Outro"
)

type Goal string

const (
	GoalLose     Goal = "Emagrecer"
	GoalGain     Goal = "Ganhar Massa"
	GoalMaintain Goal = "Manter Peso"
)

type ActivityLevel string

const (
	ActivitySedentary ActivityLevel = "Sedentário"
	ActivityLight     ActivityLevel = "Levemente Ativo"
	ActivityModerate  ActivityLevel = "Moderado"
	ActivityHeavy     ActivityLevel = "Muito Ativo"
)

type Budget string

const (
	BudgetLow    Budget = "Baixo"
	BudgetMedium Budget = "Médio"
	BudgetHigh   Budget = "Alto"
)

const (
	DefaultMealsPerDay = 3
	MinMealsPerDay     = 1
	MaxMealsPerDay     = 8
)

var (
	Genders        = []Gender{GenderMale, GenderFemale, GenderOther}
	Goals          = []Goal{GoalLose, GoalGain, GoalMaintain}
	ActivityLevels = []ActivityLevel{ActivitySedentary, ActivityLight, ActivityModerate, ActivityHeavy}
	Budgets        = []Budget{BudgetLow, BudgetMedium, BudgetHigh}
)

func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

func (g Goal) Valid() bool {
	switch g {
	case GoalLose, GoalGain, GoalMaintain:
		return true
	}
	return false
}

func (a ActivityLevel) Valid() bool {
	switch a {
	case ActivitySedentary, ActivityLight, ActivityModerate, ActivityHeavy:
		return true
	}
	return false
}

func (b Budget) Valid() bool {
	switch b {
	case BudgetLow, BudgetMedium, BudgetHigh:
		return true
	}
	return false
}

// Label is the wording shown next to each budget option on the intake form.
func (b Budget) Label() string {
	switch b {
	case BudgetLow:
		return "Econômico"
	case BudgetMedium:
		return "Moderado"
	case BudgetHigh:
		return "Livre"
	}
	return string(b)
}

type UserProfile struct {
	Name          string        `json:"name" mapstructure:"name"`
	Age           int           `json:"age" mapstructure:"age"`
	Weight        float64       `json:"weight" mapstructure:"weight"`
	Height        float64       `json:"height" mapstructure:"height"`
	Gender        Gender        `json:"gender" mapstructure:"gender"`
	Goal          Goal          `json:"goal" mapstructure:"goal"`
	ActivityLevel ActivityLevel `json:"activityLevel" mapstructure:"activity_level"`
	MealsPerDay   int           `json:"mealsPerDay" mapstructure:"meals_per_day"`
	Restrictions  []string      `json:"restrictions" mapstructure:"restrictions"`
	Dislikes      []string      `json:"dislikes" mapstructure:"dislikes"`
	Budget        Budget        `json:"budget" mapstructure:"budget"`
	IsPremium     bool          `json:"isPremium" mapstructure:"is_premium"`
}

// Validate reports every field that keeps the profile from being sent for
// plan generation.
func (p UserProfile) Validate() error {
	var problems []string

	if strings.TrimSpace(p.Name) == "" {
		problems = append(problems, "name is required")
	}
	if p.Age <= 0 || p.Age > 120 {
		problems = append(problems, "age must be between 1 and 120")
	}
	if p.Weight <= 0 {
		problems = append(problems, "weight must be positive")
	}
	if p.Height <= 0 {
		problems = append(problems, "height must be positive")
	}
	if !p.Gender.Valid() {
		problems = append(problems, fmt.Sprintf("invalid gender %q", p.Gender))
	}
	if !p.Goal.Valid() {
		problems = append(problems, fmt.Sprintf("invalid goal %q", p.Goal))
	}
	if !p.ActivityLevel.Valid() {
		problems = append(problems, fmt.Sprintf("invalid activity level %q", p.ActivityLevel))
	}
	if p.MealsPerDay < MinMealsPerDay || p.MealsPerDay > MaxMealsPerDay {
		problems = append(problems, fmt.Sprintf("meals per day must be between %d and %d", MinMealsPerDay, MaxMealsPerDay))
	}
	if !p.Budget.Valid() {
		problems = append(problems, fmt.Sprintf("invalid budget %q", p.Budget))
	}

	if len(problems) > 0 {
		return fmt.Errorf("incomplete profile: %s", strings.Join(problems, "; "))
	}
	return nil
}

func (p UserProfile) Clone() UserProfile {
	clone := p
	clone.Restrictions = append([]string(nil), p.Restrictions...)
	clone.Dislikes = append([]string(nil), p.Dislikes...)
	return clone
}

// BMI expects height in centimeters and weight in kilograms.
func (p UserProfile) BMI() (float64, error) {
	if p.Height <= 0 || p.Weight <= 0 {
		return 0, fmt.Errorf("height and weight must be positive")
	}
	if p.Height < 50 || p.Height > 250 || p.Weight < 10 || p.Weight > 400 {
		return 0, fmt.Errorf("height/weight out of plausible range")
	}

	meters := p.Height / 100.0
	bmi := p.Weight / (meters * meters)
	return math.Round(bmi*10) / 10, nil
}

func BMICategory(bmi float64) string {
	switch {
	case bmi < 18.5:
		return "Abaixo do peso"
	case bmi < 25.0:
		return "Peso normal"
	case bmi < 30.0:
		return "Sobrepeso"
	case bmi < 35.0:
		return "Obesidade grau I"
	case bmi < 40.0:
		return "Obesidade grau II"
	default:
		return "Obesidade grau III"
	}
}
