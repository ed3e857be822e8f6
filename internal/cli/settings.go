package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/utilaudit/utilaudit/pkg/client"
)

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Manage detection settings",
	}

	cmd.AddCommand(newSettingsGetCmd())
	cmd.AddCommand(newSettingsSetCmd())

	return cmd
}

func newSettingsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Show the active detection settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := apiClient.Settings().Get(context.Background())
			if err != nil {
				return err
			}

			if getOutputFormat() != "table" {
				return printOutput(settings)
			}

			fmt.Println("Thresholds")
			fmt.Printf("  YoY deviation:        %.1f%%\n", settings.Thresholds.YoYDeviationPercent)
			fmt.Printf("  MoM deviation:        %.1f%%\n", settings.Thresholds.MoMDeviationPercent)
			fmt.Printf("  Price/unit deviation: %.1f%%\n", settings.Thresholds.PricePerUnitDeviationPercent)
			fmt.Printf("  Z-score:              %.2f\n", settings.Thresholds.ZScoreThreshold)
			fmt.Printf("  Budget exceeded:      %.1f%%\n", settings.Thresholds.BudgetExceededPercent)
			fmt.Println("Alerting")
			fmt.Printf("  Max alerts/day: %d\n", settings.MaxAlertsPerDay)
			fmt.Printf("  Digest:         enabled=%v hour=%d\n", settings.DigestEnabled, settings.DigestHour)
			fmt.Printf("Enabled checks: %s\n", strings.Join(settings.EnabledChecks, ", "))
			return nil
		},
	}
}

func newSettingsSetCmd() *cobra.Command {
	var (
		yoy, mom, ppu, zscore, budget float64
		maxAlerts, digestHour         int
		digestEnabled                 bool
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update detection settings",
		Long:  `Update individual detection settings. Only the flags you pass change.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := client.SettingsPatch{}
			thresholds := client.ThresholdsPatch{}
			touched := false

			if cmd.Flags().Changed("yoy-threshold") {
				thresholds.YoYDeviationPercent = &yoy
				touched = true
			}
			if cmd.Flags().Changed("mom-threshold") {
				thresholds.MoMDeviationPercent = &mom
				touched = true
			}
			if cmd.Flags().Changed("price-threshold") {
				thresholds.PricePerUnitDeviationPercent = &ppu
				touched = true
			}
			if cmd.Flags().Changed("zscore-threshold") {
				thresholds.ZScoreThreshold = &zscore
				touched = true
			}
			if cmd.Flags().Changed("budget-threshold") {
				thresholds.BudgetExceededPercent = &budget
				touched = true
			}
			if touched {
				patch.Thresholds = &thresholds
			}

			if cmd.Flags().Changed("max-alerts") {
				patch.MaxAlertsPerDay = &maxAlerts
			}
			if cmd.Flags().Changed("digest") {
				patch.DigestEnabled = &digestEnabled
			}
			if cmd.Flags().Changed("digest-hour") {
				patch.DigestHour = &digestHour
			}

			settings, err := apiClient.Settings().Update(context.Background(), patch)
			if err != nil {
				return err
			}
			return printOutput(settings)
		},
	}

	cmd.Flags().Float64Var(&yoy, "yoy-threshold", 0, "year-over-year deviation threshold percent")
	cmd.Flags().Float64Var(&mom, "mom-threshold", 0, "month-over-month deviation threshold percent")
	cmd.Flags().Float64Var(&ppu, "price-threshold", 0, "price-per-unit deviation threshold percent")
	cmd.Flags().Float64Var(&zscore, "zscore-threshold", 0, "statistical outlier z-score threshold")
	cmd.Flags().Float64Var(&budget, "budget-threshold", 0, "budget exceeded threshold percent")
	cmd.Flags().IntVar(&maxAlerts, "max-alerts", 0, "maximum live alerts per day")
	cmd.Flags().BoolVar(&digestEnabled, "digest", false, "enable digest mode")
	cmd.Flags().IntVar(&digestHour, "digest-hour", 0, "hour of day to send the digest (0-23)")

	return cmd
}
