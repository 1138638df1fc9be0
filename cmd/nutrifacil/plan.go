// cmd/nutrifacil/plan.go
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"nutrifacil/internal/gateway"
	"nutrifacil/internal/models"
	"nutrifacil/internal/storage"
)

var (
	profileFile string
	planJSON    bool
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Generate one diet plan for a profile file",
	Example: `  nutrifacil plan --profile ana.yaml
  nutrifacil plan --profile ana.yaml --json > plano.json`,
	RunE: runPlan,
}

func init() {
	planCmd.Flags().StringVar(&profileFile, "profile", "", "profile file (yaml, json or toml)")
	planCmd.Flags().BoolVar(&planJSON, "json", false, "print the plan as JSON")
	planCmd.MarkFlagRequired("profile")
}

func runPlan(cmd *cobra.Command, args []string) error {
	profile, err := readProfile(profileFile)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	callLog, err := storage.NewCallLog(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize call log: %w", err)
	}
	defer callLog.Close()

	ctx := cmd.Context()
	gw, err := gateway.New(ctx, cfg, callLog)
	if err != nil {
		return err
	}

	stopSpinner := startSpinner(cmd.ErrOrStderr(), "Criando sua dieta...")
	plan, err := gw.GenerateDietPlan(ctx, profile)
	stopSpinner()
	if err != nil {
		return fmt.Errorf("generating plan (%s): %w", gateway.Kind(err), err)
	}

	if planJSON {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(plan)
	}
	printPlan(cmd.OutOrStdout(), profile, plan)
	return nil
}

// readProfile decodes a profile file using the mapstructure tags of
// models.UserProfile. Lists may be given as sequences or comma-separated
// strings.
func readProfile(path string) (models.UserProfile, error) {
	pv := viper.New()
	pv.SetConfigFile(path)
	if err := pv.ReadInConfig(); err != nil {
		return models.UserProfile{}, fmt.Errorf("reading profile file: %w", err)
	}

	profile := models.UserProfile{
		MealsPerDay: models.DefaultMealsPerDay,
		Budget:      models.BudgetMedium,
	}
	decodeHook := viper.DecodeHook(mapstructure.StringToSliceHookFunc(","))
	if err := pv.Unmarshal(&profile, decodeHook); err != nil {
		return models.UserProfile{}, fmt.Errorf("decoding profile: %w", err)
	}
	profile.Restrictions = trimAll(profile.Restrictions)
	profile.Dislikes = trimAll(profile.Dislikes)

	if err := profile.Validate(); err != nil {
		return models.UserProfile{}, fmt.Errorf("incomplete profile: %w", err)
	}
	return profile, nil
}

func trimAll(values []string) []string {
	var trimmed []string
	for _, value := range values {
		if value = strings.TrimSpace(value); value != "" {
			trimmed = append(trimmed, value)
		}
	}
	return trimmed
}

// startSpinner draws an indeterminate progress bar until the returned
// function is called.
func startSpinner(w io.Writer, description string) func() {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)

	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				bar.Finish()
				return
			case <-ticker.C:
				bar.Add(1)
			}
		}
	}()

	return func() {
		close(done)
		<-stopped
	}
}

func printPlan(w io.Writer, profile models.UserProfile, plan *models.DietPlan) {
	protein, carbs, fats := plan.DailyMacros.Split()
	fmt.Fprintf(w, "Dieta de %s: %.0f kcal\n", profile.Name, plan.TotalCalories)
	fmt.Fprintf(w, "Proteínas %.0fg (%d%%) • Carboidratos %.0fg (%d%%) • Gorduras %.0fg (%d%%)\n\n",
		plan.DailyMacros.Protein, protein, plan.DailyMacros.Carbs, carbs, plan.DailyMacros.Fats, fats)

	for _, meal := range plan.Meals {
		fmt.Fprintf(w, "%s  %s (%.0f kcal)\n", meal.Time, meal.Name, meal.Calories)
		for _, item := range meal.Items {
			fmt.Fprintf(w, "    - %s: %s\n", item.Name, item.Quantity)
		}
	}

	if len(plan.ShoppingList) > 0 {
		fmt.Fprintln(w, "\nLista de compras")
		for _, category := range plan.ShoppingList {
			fmt.Fprintf(w, "  %s: %s\n", category.Category, strings.Join(category.Items, ", "))
		}
	}
}
