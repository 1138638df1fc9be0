// internal/flow/wizard.go
package flow

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"nutrifacil/internal/models"
)

const WizardSteps = 3

// Form field names used by the intake form.
const (
	FieldName          = "name"
	FieldAge           = "age"
	FieldGender        = "gender"
	FieldWeight        = "weight"
	FieldHeight        = "height"
	FieldGoal          = "goal"
	FieldActivityLevel = "activity_level"
	FieldMealsPerDay   = "meals_per_day"
	FieldRestrictions  = "restrictions"
	FieldDislikes      = "dislikes"
	FieldBudget        = "budget"
)

var ErrStepIncomplete = errors.New("intake step is incomplete")

// Wizard collects a UserProfile over three steps. Values typed on any step
// survive Back and Next.
type Wizard struct {
	step  int
	draft models.UserProfile
}

func NewWizard() *Wizard {
	return &Wizard{
		step: 1,
		draft: models.UserProfile{
			MealsPerDay: models.DefaultMealsPerDay,
			Budget:      models.BudgetMedium,
		},
	}
}

// WizardFrom starts a wizard at step 1 prefilled with profile.
func WizardFrom(profile models.UserProfile) *Wizard {
	w := &Wizard{step: 1, draft: profile.Clone()}
	if w.draft.MealsPerDay < models.MinMealsPerDay || w.draft.MealsPerDay > models.MaxMealsPerDay {
		w.draft.MealsPerDay = models.DefaultMealsPerDay
	}
	if !w.draft.Budget.Valid() {
		w.draft.Budget = models.BudgetMedium
	}
	return w
}

func (w *Wizard) Step() int {
	return w.step
}

func (w *Wizard) Draft() models.UserProfile {
	return w.draft.Clone()
}

// Progress is the completion percentage shown in the progress bar.
func (w *Wizard) Progress() int {
	return w.step * 100 / WizardSteps
}

func (w *Wizard) SetName(value string) {
	w.draft.Name = strings.TrimSpace(value)
}

func (w *Wizard) SetAge(value string) {
	age, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || age < 0 {
		age = 0
	}
	w.draft.Age = age
}

func (w *Wizard) SetGender(value string) {
	w.draft.Gender = models.Gender(strings.TrimSpace(value))
}

func (w *Wizard) SetWeight(value string) {
	w.draft.Weight = parseMeasure(value)
}

func (w *Wizard) SetHeight(value string) {
	w.draft.Height = parseMeasure(value)
}

func (w *Wizard) SetGoal(value string) {
	w.draft.Goal = models.Goal(strings.TrimSpace(value))
}

func (w *Wizard) SetActivityLevel(value string) {
	w.draft.ActivityLevel = models.ActivityLevel(strings.TrimSpace(value))
}

// SetMealsPerDay ignores values outside the accepted range.
func (w *Wizard) SetMealsPerDay(value string) {
	meals, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || meals < models.MinMealsPerDay || meals > models.MaxMealsPerDay {
		return
	}
	w.draft.MealsPerDay = meals
}

func (w *Wizard) SetRestrictions(value string) {
	w.draft.Restrictions = ParseList(value)
}

func (w *Wizard) SetDislikes(value string) {
	w.draft.Dislikes = ParseList(value)
}

// SetBudget ignores unknown values and keeps the current choice.
func (w *Wizard) SetBudget(value string) {
	budget := models.Budget(strings.TrimSpace(value))
	if budget.Valid() {
		w.draft.Budget = budget
	}
}

// Apply copies every known field present in values into the draft. Absent
// fields are left untouched.
func (w *Wizard) Apply(values url.Values) {
	setters := map[string]func(string){
		FieldName:          w.SetName,
		FieldAge:           w.SetAge,
		FieldGender:        w.SetGender,
		FieldWeight:        w.SetWeight,
		FieldHeight:        w.SetHeight,
		FieldGoal:          w.SetGoal,
		FieldActivityLevel: w.SetActivityLevel,
		FieldMealsPerDay:   w.SetMealsPerDay,
		FieldRestrictions:  w.SetRestrictions,
		FieldDislikes:      w.SetDislikes,
		FieldBudget:        w.SetBudget,
	}
	for field, set := range setters {
		if _, ok := values[field]; ok {
			set(values.Get(field))
		}
	}
}

// Missing lists the fields of the current step that still block Next.
func (w *Wizard) Missing() []string {
	var missing []string
	switch w.step {
	case 1:
		if w.draft.Name == "" {
			missing = append(missing, "nome")
		}
		if w.draft.Age <= 0 || w.draft.Age > 120 {
			missing = append(missing, "idade")
		}
		if !w.draft.Gender.Valid() {
			missing = append(missing, "gênero")
		}
	case 2:
		if w.draft.Weight <= 0 {
			missing = append(missing, "peso")
		}
		if w.draft.Height <= 0 {
			missing = append(missing, "altura")
		}
		if !w.draft.Goal.Valid() {
			missing = append(missing, "objetivo")
		}
		if !w.draft.ActivityLevel.Valid() {
			missing = append(missing, "nível de atividade")
		}
	}
	return missing
}

func (w *Wizard) CanAdvance() bool {
	return len(w.Missing()) == 0
}

// Next moves to the following step. On the last step it reports done once
// the whole draft is a valid profile.
func (w *Wizard) Next() (done bool, err error) {
	if missing := w.Missing(); len(missing) > 0 {
		return false, fmt.Errorf("%w: %s", ErrStepIncomplete, strings.Join(missing, ", "))
	}
	if w.step < WizardSteps {
		w.step++
		return false, nil
	}
	if _, err := w.Profile(); err != nil {
		return false, err
	}
	return true, nil
}

// Back is always allowed and keeps every value entered so far.
func (w *Wizard) Back() {
	if w.step > 1 {
		w.step--
	}
}

// Profile returns the collected profile when every field is acceptable.
func (w *Wizard) Profile() (models.UserProfile, error) {
	profile := w.draft.Clone()
	if err := profile.Validate(); err != nil {
		return models.UserProfile{}, fmt.Errorf("%w: %w", ErrStepIncomplete, err)
	}
	return profile, nil
}

// ParseList splits comma-separated input, trimming entries and dropping
// blanks and case-insensitive repeats. The first spelling wins.
func ParseList(input string) []string {
	var items []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(input, ",") {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		key := strings.ToLower(item)
		if seen[key] {
			continue
		}
		seen[key] = true
		items = append(items, item)
	}
	return items
}

// parseMeasure accepts both "62.5" and "62,5". Anything unparsable or
// negative reads as zero.
func parseMeasure(value string) float64 {
	value = strings.ReplaceAll(strings.TrimSpace(value), ",", ".")
	number, err := strconv.ParseFloat(value, 64)
	if err != nil || number < 0 || math.IsNaN(number) || math.IsInf(number, 0) {
		return 0
	}
	return number
}
