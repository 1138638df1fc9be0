// internal/gateway/schema.go
package gateway

import (
	"google.golang.org/genai"
)

func macrosSchema(description string) *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"protein": {Type: genai.TypeNumber, Description: "Total grams of protein"},
			"carbs":   {Type: genai.TypeNumber, Description: "Total grams of carbs"},
			"fats":    {Type: genai.TypeNumber, Description: "Total grams of fats"},
		},
		Required:    []string{"protein", "carbs", "fats"},
		Description: description,
	}
}

// dietSchema is the response contract for plan generation. Per-meal macros
// and ids are optional; everything listed in Required is enforced again when
// the answer is decoded.
func dietSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"totalCalories": {Type: genai.TypeNumber, Description: "Total daily calories target"},
			"dailyMacros":   macrosSchema("Daily macro targets"),
			"meals": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"id":       {Type: genai.TypeString},
						"name":     {Type: genai.TypeString, Description: "e.g., Café da Manhã"},
						"time":     {Type: genai.TypeString, Description: "e.g., 08:00"},
						"calories": {Type: genai.TypeNumber},
						"macros": {
							Type: genai.TypeObject,
							Properties: map[string]*genai.Schema{
								"protein": {Type: genai.TypeNumber},
								"carbs":   {Type: genai.TypeNumber},
								"fats":    {Type: genai.TypeNumber},
							},
						},
						"items": {
							Type: genai.TypeArray,
							Items: &genai.Schema{
								Type: genai.TypeObject,
								Properties: map[string]*genai.Schema{
									"name":     {Type: genai.TypeString},
									"quantity": {Type: genai.TypeString},
								},
								Required: []string{"name", "quantity"},
							},
						},
						"imageKeyword": {
							Type:        genai.TypeString,
							Description: "A simple English keyword for image search, e.g., 'oatmeal', 'grilled chicken'",
						},
					},
					Required: []string{"name", "time", "calories", "items", "imageKeyword"},
				},
			},
			"shoppingList": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"category": {Type: genai.TypeString},
						"items":    {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
					},
					Required: []string{"category", "items"},
				},
			},
		},
		Required: []string{"totalCalories", "dailyMacros", "meals", "shoppingList"},
	}
}
