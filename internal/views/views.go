// internal/views/views.go
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"math"
	"net/url"
	"strconv"
	"strings"

	"nutrifacil/internal/flow"
	"nutrifacil/internal/models"
)

//go:embed templates/*.html
var templatesFS embed.FS

type Page string

const (
	PageWelcome      Page = "welcome"
	PageOnboarding   Page = "onboarding"
	PageGenerating   Page = "generating"
	PageDashboard    Page = "dashboard"
	PageDiet         Page = "diet"
	PageShoppingList Page = "shopping"
	PageChat         Page = "chat"
	PageProgress     Page = "progress"
	PageProfile      Page = "profile"
	PageNotReady     Page = "notready"
)

var pages = []Page{
	PageWelcome, PageOnboarding, PageGenerating, PageDashboard, PageDiet,
	PageShoppingList, PageChat, PageProgress, PageProfile, PageNotReady,
}

// PageFor maps every screen to the page that draws it.
func PageFor(screen flow.Screen) Page {
	switch screen {
	case flow.ScreenWelcome:
		return PageWelcome
	case flow.ScreenOnboarding:
		return PageOnboarding
	case flow.ScreenGenerating:
		return PageGenerating
	case flow.ScreenDashboard:
		return PageDashboard
	case flow.ScreenDiet:
		return PageDiet
	case flow.ScreenChat:
		return PageChat
	case flow.ScreenProgress:
		return PageProgress
	case flow.ScreenProfile:
		return PageProfile
	}
	panic(fmt.Sprintf("views: no page for %s", screen))
}

// Renderer holds one parsed template set per page, each joined with the
// shared layout.
type Renderer struct {
	templates map[Page]*template.Template
}

func NewRenderer() (*Renderer, error) {
	renderer := &Renderer{templates: make(map[Page]*template.Template, len(pages))}

	for _, page := range pages {
		tmpl, err := template.New("layout.html").Funcs(funcs).ParseFS(templatesFS,
			"templates/layout.html", "templates/"+string(page)+".html")
		if err != nil {
			return nil, fmt.Errorf("parsing %s template: %w", page, err)
		}
		renderer.templates[page] = tmpl
	}

	return renderer, nil
}

// Render draws the page for screen. Lateral screens without a plan fall
// back to the not-ready page.
func (r *Renderer) Render(w io.Writer, screen flow.Screen, data PageData) error {
	page := PageFor(screen)
	if screen.Lateral() && data.Plan == nil {
		page = PageNotReady
	}
	return r.RenderPage(w, page, data)
}

// RenderPage executes into a buffer first so that a template error never
// leaves a half-written response.
func (r *Renderer) RenderPage(w io.Writer, page Page, data PageData) error {
	tmpl, ok := r.templates[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("rendering %s: %w", page, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

var funcs = template.FuncMap{
	"number":   formatNumber,
	"imageURL": ImageURL,
	"joinList": func(values []string) string { return strings.Join(values, ", ") },
	"isUser":   func(role models.ChatRole) bool { return role == models.RoleUser },
}

func formatNumber(value float64) string {
	return strconv.FormatFloat(math.Round(value*10)/10, 'f', -1, 64)
}

// ImageURL is the placeholder photo for a meal card, seeded by the image
// keyword.
func ImageURL(meal models.Meal) string {
	seed := strings.TrimSpace(meal.ImageKeyword)
	if seed == "" {
		seed = "food"
	}
	return "https://picsum.photos/seed/" + url.PathEscape(seed) + "/600/300"
}
