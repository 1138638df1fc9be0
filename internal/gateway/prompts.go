// internal/gateway/prompts.go
package gateway

import (
	"fmt"
	"strings"

	"nutrifacil/internal/models"
)

const nutritionistPersona = "Você é o NutriFácil, um assistente nutricional amigável, motivador e especialista. " +
	"Responda de forma clara, concisa e direta. Use emojis ocasionalmente. Fale português do Brasil."

func joinOr(values []string, fallback string) string {
	var kept []string
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			kept = append(kept, trimmed)
		}
	}
	if len(kept) == 0 {
		return fallback
	}
	return strings.Join(kept, ", ")
}

func buildDietPrompt(profile models.UserProfile) string {
	var sb strings.Builder

	sb.WriteString("Crie um plano de dieta completo para um usuário com o seguinte perfil:\n")
	sb.WriteString(fmt.Sprintf("Nome: %s.\n", profile.Name))
	sb.WriteString(fmt.Sprintf("Gênero: %s.\n", profile.Gender))
	sb.WriteString(fmt.Sprintf("Idade: %d, Peso: %gkg, Altura: %gcm.\n", profile.Age, profile.Weight, profile.Height))
	sb.WriteString(fmt.Sprintf("Objetivo: %s.\n", profile.Goal))
	sb.WriteString(fmt.Sprintf("Nível de Atividade: %s.\n", profile.ActivityLevel))
	sb.WriteString(fmt.Sprintf("Refeições por dia: %d.\n", profile.MealsPerDay))
	sb.WriteString(fmt.Sprintf("Restrições: %s.\n", joinOr(profile.Restrictions, "Nenhuma")))
	sb.WriteString(fmt.Sprintf("Não gosta de: %s.\n", joinOr(profile.Dislikes, "Nada")))
	sb.WriteString(fmt.Sprintf("Orçamento: %s.\n", profile.Budget))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("O plano deve ter exatamente %d refeições, ordenadas pelo horário.\n", profile.MealsPerDay))
	sb.WriteString("A dieta deve ser prática e realista para o Brasil.\n")
	sb.WriteString("Retorne APENAS o JSON seguindo o schema especificado, sem texto adicional.\n")

	return sb.String()
}

func buildSubstitutionPrompt(food string, calories int) string {
	return fmt.Sprintf(
		"Sugira 3 opções de substituição para %q que tenham aproximadamente %d calorias. "+
			"Seja direto e breve. Formate como uma lista simples.",
		food, calories)
}
