// internal/flow/session.go
package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"nutrifacil/internal/models"
)

const GenerationFailedAlert = "Houve um erro ao gerar sua dieta. Tente novamente."

var (
	ErrInvalidTransition  = errors.New("invalid screen transition")
	ErrNoPlan             = errors.New("no diet plan yet")
	ErrGenerationInFlight = errors.New("a diet plan is already being generated")
	ErrMealNotFound       = errors.New("meal not found in the current plan")
	ErrSubstitutionBusy   = errors.New("a substitution lookup is still pending")
)

// Generator produces a diet plan for a complete profile.
type Generator interface {
	GenerateDietPlan(ctx context.Context, profile models.UserProfile) (*models.DietPlan, error)
}

// Session is the single owner of one user's state. All mutation goes through
// its methods; HTTP handlers and the generation goroutine share it.
type Session struct {
	mu sync.Mutex

	id        string
	createdAt time.Time
	logger    *slog.Logger

	screen  Screen
	wizard  *Wizard
	profile *models.UserProfile
	// plan is replaced wholesale and never mutated, so it may be shared.
	plan    *models.DietPlan
	loading bool
	alert   string

	// generation counts submissions; a result from an older one is dropped.
	generation uint64
	cancel     context.CancelFunc
	running    bool

	transcript   *Transcript
	substitution *Substitution
	substituting bool
}

func NewSession(id string, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		id:         id,
		createdAt:  time.Now(),
		logger:     logger.With("session", id),
		screen:     ScreenWelcome,
		wizard:     NewWizard(),
		transcript: NewTranscript(),
	}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Screen() Screen {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.screen
}

func (s *Session) Transcript() *Transcript {
	return s.transcript
}

// Begin leaves the welcome screen.
func (s *Session) Begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.screen != ScreenWelcome {
		return s.invalid(ScreenOnboarding)
	}
	s.screen = ScreenOnboarding
	return nil
}

// Advance applies the posted values of the current intake step and moves
// forward. Completing the last step submits the profile; the caller then
// starts RunGeneration.
func (s *Session) Advance(values url.Values) (submitted bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.screen != ScreenOnboarding {
		return false, s.invalid(ScreenOnboarding)
	}

	s.wizard.Apply(values)
	done, err := s.wizard.Next()
	if err != nil || !done {
		return false, err
	}

	profile, err := s.wizard.Profile()
	if err != nil {
		return false, err
	}
	s.submit(profile)
	return true, nil
}

// Retreat keeps whatever was typed on the current step and goes one step back.
func (s *Session) Retreat(values url.Values) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.screen != ScreenOnboarding {
		return s.invalid(ScreenOnboarding)
	}
	s.wizard.Apply(values)
	s.wizard.Back()
	return nil
}

// SubmitProfile moves from onboarding to generating with profile.
func (s *Session) SubmitProfile(profile models.UserProfile) error {
	if err := profile.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrStepIncomplete, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.screen != ScreenOnboarding {
		return s.invalid(ScreenGenerating)
	}
	s.wizard = WizardFrom(profile)
	s.wizard.step = WizardSteps
	s.submit(profile)
	return nil
}

// Regenerate requests a fresh plan for the current profile. The existing
// plan stays visible to lateral screens until a new one replaces it.
func (s *Session) Regenerate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.plan == nil || s.profile == nil {
		return ErrNoPlan
	}
	if !s.screen.Lateral() {
		return s.invalid(ScreenGenerating)
	}

	profile := s.profile.Clone()
	s.wizard = WizardFrom(profile)
	s.wizard.step = WizardSteps
	s.submit(profile)
	return nil
}

// EditProfile reopens the intake form prefilled with the current profile.
func (s *Session) EditProfile() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.profile == nil {
		return ErrNoPlan
	}
	if !s.screen.Lateral() {
		return s.invalid(ScreenOnboarding)
	}
	s.wizard = WizardFrom(*s.profile)
	s.screen = ScreenOnboarding
	return nil
}

func (s *Session) submit(profile models.UserProfile) {
	captured := profile.Clone()
	s.profile = &captured
	s.screen = ScreenGenerating
	s.loading = true
	s.alert = ""
	s.generation++
}

// RunGeneration performs the outbound request for the submitted profile and
// applies its outcome. It blocks until the generator returns; callers run it
// in its own goroutine. A failure of any kind returns the session to the
// intake form with the draft kept and the alert set.
func (s *Session) RunGeneration(ctx context.Context, generator Generator) error {
	s.mu.Lock()
	if s.screen != ScreenGenerating {
		s.mu.Unlock()
		return s.invalid(ScreenDashboard)
	}
	if s.running {
		s.mu.Unlock()
		return ErrGenerationInFlight
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.cancel = cancel
	s.running = true
	generation := s.generation
	profile := s.profile.Clone()
	s.mu.Unlock()

	started := time.Now()
	plan, err := generator.GenerateDietPlan(ctx, profile)
	if err == nil && plan == nil {
		err = errors.New("generator returned no plan")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// A canceled run already handed the slot to the next submission.
	if generation == s.generation {
		s.running = false
		s.cancel = nil
	}

	if generation != s.generation || s.screen != ScreenGenerating {
		s.logger.Info("discarding stale generation result", "generation", generation)
		if err != nil {
			return err
		}
		return context.Canceled
	}

	s.loading = false
	if err != nil {
		s.screen = ScreenOnboarding
		s.alert = GenerationFailedAlert
		s.logger.Warn("diet plan generation failed", "duration_ms", time.Since(started).Milliseconds(), "error", err)
		return err
	}

	s.plan = plan
	s.substitution = nil
	s.screen = ScreenDashboard
	s.logger.Info("diet plan ready", "meals", len(plan.Meals), "calories", plan.TotalCalories,
		"duration_ms", time.Since(started).Milliseconds())
	return nil
}

// CancelGeneration abandons the in-flight generation. It is treated like a
// failed attempt. Reports whether there was anything to cancel.
func (s *Session) CancelGeneration() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.screen != ScreenGenerating {
		return false
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.cancel = nil
	s.running = false
	s.generation++
	s.loading = false
	s.screen = ScreenOnboarding
	s.alert = GenerationFailedAlert
	s.logger.Info("diet plan generation canceled")
	return true
}

// Navigate moves between lateral screens. A plan must exist.
func (s *Session) Navigate(target Screen) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !target.Lateral() {
		return s.invalid(target)
	}
	if s.screen == ScreenGenerating {
		return ErrGenerationInFlight
	}
	if s.plan == nil {
		return ErrNoPlan
	}
	s.screen = target
	return nil
}

// DismissAlert clears the alert after it has been shown once.
func (s *Session) DismissAlert() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alert = ""
}

// SubstituteMeal looks up alternatives for the meal's substitution target and
// keeps the result for the diet screen.
func (s *Session) SubstituteMeal(ctx context.Context, substituter Substituter, mealID string) (Substitution, error) {
	s.mu.Lock()
	if s.plan == nil {
		s.mu.Unlock()
		return Substitution{}, ErrNoPlan
	}
	if s.substituting {
		s.mu.Unlock()
		return Substitution{}, ErrSubstitutionBusy
	}

	var (
		meal  models.Meal
		found bool
	)
	for _, candidate := range s.plan.Meals {
		if candidate.ID == mealID {
			meal, found = candidate, true
			break
		}
	}
	food, calories, ok := SubstitutionTarget(meal)
	if !found || !ok {
		s.mu.Unlock()
		return Substitution{}, fmt.Errorf("%w: %q", ErrMealNotFound, mealID)
	}
	s.substituting = true
	s.mu.Unlock()

	text, err := Substitute(ctx, substituter, food, calories)
	if err != nil {
		s.logger.Warn("substitution lookup failed", "meal", mealID, "food", food, "calories", calories, "error", err)
	}
	result := Substitution{
		MealID:   mealID,
		Food:     food,
		Calories: calories,
		Text:     text,
		Failed:   err != nil,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.substituting = false
	s.substitution = &result
	return result, nil
}

// CloseSubstitution hides the last substitution result.
func (s *Session) CloseSubstitution() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.substitution = nil
}

func (s *Session) invalid(target Screen) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.screen, target)
}

// Snapshot is a read-only copy of the session for rendering.
type Snapshot struct {
	ID           string               `json:"id"`
	Screen       Screen               `json:"screen"`
	Step         int                  `json:"step"`
	Progress     int                  `json:"progress"`
	Missing      []string             `json:"missing,omitempty"`
	Draft        models.UserProfile   `json:"draft"`
	Profile      *models.UserProfile  `json:"profile,omitempty"`
	Plan         *models.DietPlan     `json:"plan,omitempty"`
	Loading      bool                 `json:"loading"`
	Alert        string               `json:"alert,omitempty"`
	Messages     []models.ChatMessage `json:"messages"`
	ChatPending  bool                 `json:"chatPending"`
	Substitution *Substitution        `json:"substitution,omitempty"`
	Substituting bool                 `json:"substituting"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := Snapshot{
		ID:           s.id,
		Screen:       s.screen,
		Step:         s.wizard.Step(),
		Progress:     s.wizard.Progress(),
		Missing:      s.wizard.Missing(),
		Draft:        s.wizard.Draft(),
		Plan:         s.plan,
		Loading:      s.loading,
		Alert:        s.alert,
		Messages:     s.transcript.Messages(),
		ChatPending:  s.transcript.Pending(),
		Substituting: s.substituting,
	}
	if s.profile != nil {
		profile := s.profile.Clone()
		snapshot.Profile = &profile
	}
	if s.substitution != nil {
		substitution := *s.substitution
		snapshot.Substitution = &substitution
	}
	return snapshot
}
