package views

import (
	"bytes"
	"regexp"
	"strings"
	"testing"

	"nutrifacil/internal/flow"
	"nutrifacil/internal/models"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	renderer, err := NewRenderer()
	if err != nil {
		t.Fatalf("parsing templates: %v", err)
	}
	return renderer
}

func testProfile() *models.UserProfile {
	return &models.UserProfile{
		Name:          "Ana",
		Age:           30,
		Weight:        70,
		Height:        175,
		Gender:        models.GenderFemale,
		Goal:          models.GoalLose,
		ActivityLevel: models.ActivityModerate,
		MealsPerDay:   4,
		Restrictions:  []string{"Sem glúten"},
		Budget:        models.BudgetLow,
	}
}

func testPlan() *models.DietPlan {
	return &models.DietPlan{
		TotalCalories: 1800,
		DailyMacros:   models.MacroNutrients{Protein: 120, Carbs: 200, Fats: 60},
		Meals: []models.Meal{
			{ID: "m1", Name: "Café da Manhã", Time: "08:00", Calories: 450, ImageKeyword: "oatmeal",
				Items: []models.FoodItem{{Name: "Aveia", Quantity: "40g"}}},
			{ID: "m2", Name: "Almoço", Time: "12:30", Calories: 700, ImageKeyword: "rice and beans",
				Items: []models.FoodItem{{Name: "Arroz branco", Quantity: "100g"}, {Name: "Feijão", Quantity: "1 concha"}}},
			{ID: "m3", Name: "Lanche", Time: "16:00", Calories: 200,
				Items: []models.FoodItem{{Name: "Iogurte", Quantity: "1 pote"}}},
			{ID: "m4", Name: "Jantar", Time: "19:30", Calories: 450, ImageKeyword: "grilled fish",
				Items: []models.FoodItem{{Name: "Tilápia", Quantity: "150g"}}},
		},
		ShoppingList: []models.ShoppingCategory{
			{Category: "Grãos", Items: []string{"Aveia", "Arroz"}},
			{Category: "Proteínas", Items: []string{"Tilápia"}},
		},
	}
}

func snapshotOn(screen flow.Screen) flow.Snapshot {
	return flow.Snapshot{
		ID:       "s1",
		Screen:   screen,
		Step:     1,
		Progress: 33,
		Draft:    *testProfile(),
		Profile:  testProfile(),
		Plan:     testPlan(),
		Messages: []models.ChatMessage{
			{ID: "1", Role: models.RoleAssistant, Text: flow.ChatGreeting},
			{ID: "2", Role: models.RoleUser, Text: "Posso comer pão?"},
		},
	}
}

func render(t *testing.T, renderer *Renderer, screen flow.Screen, snapshot flow.Snapshot) string {
	t.Helper()
	var buf bytes.Buffer
	if err := renderer.Render(&buf, screen, NewPageData(snapshot)); err != nil {
		t.Fatalf("rendering %s: %v", screen, err)
	}
	return buf.String()
}

func TestRender_EveryScreen(t *testing.T) {
	renderer := newTestRenderer(t)

	expected := map[flow.Screen]string{
		flow.ScreenWelcome:    "Começar Agora",
		flow.ScreenOnboarding: "Vamos nos conhecer?",
		flow.ScreenGenerating: "Criando sua dieta...",
		flow.ScreenDashboard:  "Olá, Ana! 👋",
		flow.ScreenDiet:       "Minha Dieta",
		flow.ScreenChat:       "Chat NutriFácil",
		flow.ScreenProgress:   "Evolução",
		flow.ScreenProfile:    "Assinatura Premium",
	}

	for _, screen := range flow.Screens() {
		t.Run(screen.String(), func(t *testing.T) {
			html := render(t, renderer, screen, snapshotOn(screen))
			if !strings.Contains(html, expected[screen]) {
				t.Errorf("expected %q in %s page", expected[screen], screen)
			}
			hasNav := strings.Contains(html, `<nav class="bottom">`)
			if hasNav != screen.Lateral() {
				t.Errorf("expected nav=%v on %s", screen.Lateral(), screen)
			}
		})
	}
}

func TestRender_DietMealCardsInOrder(t *testing.T) {
	renderer := newTestRenderer(t)
	snapshot := snapshotOn(flow.ScreenDiet)

	html := render(t, renderer, flow.ScreenDiet, snapshot)

	matches := regexp.MustCompile(`data-meal-id="([^"]+)"`).FindAllStringSubmatch(html, -1)
	if len(matches) != len(snapshot.Plan.Meals) {
		t.Fatalf("expected %d meal cards, got %d", len(snapshot.Plan.Meals), len(matches))
	}
	for i, match := range matches {
		if match[1] != snapshot.Plan.Meals[i].ID {
			t.Errorf("card %d: expected %s, got %s", i, snapshot.Plan.Meals[i].ID, match[1])
		}
	}

	if !strings.Contains(html, "https://picsum.photos/seed/rice%20and%20beans/600/300") {
		t.Error("expected image keyword in card image")
	}
	if !strings.Contains(html, "https://picsum.photos/seed/food/600/300") {
		t.Error("expected fallback image seed for meals without a keyword")
	}
	if !strings.Contains(html, "Foco em 4 refeições") {
		t.Error("expected meal count in the header")
	}
}

func TestRender_DietSubstitutionInline(t *testing.T) {
	renderer := newTestRenderer(t)
	snapshot := snapshotOn(flow.ScreenDiet)
	snapshot.Substitution = &flow.Substitution{
		MealID:   "m2",
		Food:     "Arroz branco",
		Calories: 350,
		Text:     "1. Batata doce\n2. Mandioca\n3. Quinoa",
	}

	html := render(t, renderer, flow.ScreenDiet, snapshot)

	if strings.Count(html, `class="suggestion"`) != 1 {
		t.Fatal("expected exactly one suggestion box")
	}
	if !strings.Contains(html, "1. Batata doce\n2. Mandioca\n3. Quinoa") {
		t.Error("expected suggestion text verbatim")
	}
	if !strings.Contains(html, "~350 kcal") {
		t.Error("expected target calories")
	}
}

func TestRender_LateralWithoutPlanFallsBack(t *testing.T) {
	renderer := newTestRenderer(t)
	snapshot := snapshotOn(flow.ScreenDiet)
	snapshot.Plan = nil

	html := render(t, renderer, flow.ScreenDiet, snapshot)
	if !strings.Contains(html, "Sua dieta ainda não está pronta") {
		t.Error("expected not-ready page")
	}
}

func TestRender_EscapesModelText(t *testing.T) {
	renderer := newTestRenderer(t)
	snapshot := snapshotOn(flow.ScreenChat)
	snapshot.Messages = append(snapshot.Messages, models.ChatMessage{
		ID: "3", Role: models.RoleAssistant, Text: "<script>alert(1)</script>",
	})

	html := render(t, renderer, flow.ScreenChat, snapshot)
	if strings.Contains(html, "<script>alert(1)</script>") {
		t.Fatal("model text must be escaped")
	}
	if !strings.Contains(html, "&lt;script&gt;") {
		t.Error("expected escaped text")
	}
}

func TestRender_OnboardingSteps(t *testing.T) {
	renderer := newTestRenderer(t)

	tests := []struct {
		step     int
		expected []string
	}{
		{1, []string{`value="Ana"`, `value="30"`, `<option value="Feminino" selected>`}},
		{2, []string{"Medidas e Objetivo", `value="70"`, `<option value="Emagrecer" selected>`, `formaction="/onboarding/back"`}},
		{3, []string{"Preferências", `<option value="4" selected>`, `value="Sem glúten"`, `<option value="Baixo" selected>Econômico</option>`, "Gerar Dieta Mágica"}},
	}

	for _, testCase := range tests {
		snapshot := snapshotOn(flow.ScreenOnboarding)
		snapshot.Step = testCase.step
		snapshot.Alert = flow.GenerationFailedAlert

		html := render(t, renderer, flow.ScreenOnboarding, snapshot)
		for _, fragment := range testCase.expected {
			if !strings.Contains(html, fragment) {
				t.Errorf("step %d: expected %q", testCase.step, fragment)
			}
		}
		if !strings.Contains(html, flow.GenerationFailedAlert) {
			t.Errorf("step %d: expected alert", testCase.step)
		}
	}
}

func TestRender_GeneratingRefreshes(t *testing.T) {
	renderer := newTestRenderer(t)

	html := render(t, renderer, flow.ScreenGenerating, snapshotOn(flow.ScreenGenerating))
	if !strings.Contains(html, `http-equiv="refresh"`) {
		t.Error("expected auto refresh while generating")
	}
	if !strings.Contains(html, `action="/generating/cancel"`) {
		t.Error("expected cancel form")
	}
}

func TestRenderPage_ShoppingList(t *testing.T) {
	renderer := newTestRenderer(t)
	snapshot := snapshotOn(flow.ScreenDiet)

	var buf bytes.Buffer
	if err := renderer.RenderPage(&buf, PageShoppingList, NewPageData(snapshot)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	html := buf.String()
	if strings.Count(html, `type="checkbox"`) != 3 {
		t.Errorf("expected one checkbox per item")
	}
	if !strings.Contains(html, "Proteínas") {
		t.Error("expected category heading")
	}

	if err := renderer.RenderPage(&buf, Page("missing"), NewPageData(snapshot)); err == nil {
		t.Error("expected error for unknown page")
	}
}

func TestNewPageData(t *testing.T) {
	data := NewPageData(snapshotOn(flow.ScreenProgress))

	if !data.HasBMI || data.BMI != 22.9 || data.BMICategory != "Peso normal" {
		t.Errorf("unexpected BMI fields %v %v %q", data.HasBMI, data.BMI, data.BMICategory)
	}
	if data.Split != (MacroSplit{Protein: 32, Carbs: 53, Fats: 16}) {
		t.Errorf("unexpected split %+v", data.Split)
	}
	if data.NextMeal == nil || data.NextMeal.ID != "m1" {
		t.Errorf("expected first meal next, got %+v", data.NextMeal)
	}
	if data.ShoppingItems != 3 {
		t.Errorf("expected 3 shopping items, got %d", data.ShoppingItems)
	}
	if len(data.MealShares) != 4 || data.MealShares[1].Percent != 38 {
		t.Errorf("unexpected meal shares %+v", data.MealShares)
	}

	var active []string
	for _, item := range data.Nav {
		if item.Active {
			active = append(active, item.Label)
		}
	}
	if len(data.Nav) != 5 || len(active) != 1 || active[0] != "Evolução" {
		t.Errorf("unexpected nav %+v", data.Nav)
	}
}
