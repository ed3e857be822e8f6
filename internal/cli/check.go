package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Inspect and toggle detection checks",
	}

	cmd.AddCommand(newCheckListCmd())
	cmd.AddCommand(newCheckEnableCmd())
	cmd.AddCommand(newCheckDisableCmd())

	return cmd
}

func newCheckListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered detection checks",
		RunE: func(cmd *cobra.Command, args []string) error {
			checks, err := apiClient.Settings().ListChecks(context.Background())
			if err != nil {
				return err
			}

			if getOutputFormat() != "table" {
				return printOutput(checks)
			}

			t := NewTable("ID", "NAME", "ENABLED", "MIN MONTHS", "COST TYPES")
			for _, c := range checks {
				costTypes := "all"
				if len(c.ApplicableCostTypes) > 0 {
					costTypes = strings.Join(c.ApplicableCostTypes, ",")
				}
				t.AddRow(
					c.ID,
					c.Name,
					strconv.FormatBool(c.Enabled),
					strconv.Itoa(c.MinHistoricalMonths),
					truncate(costTypes, 50),
				)
			}
			t.Render()
			return nil
		},
	}
}

func newCheckEnableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enable <id>",
		Short: "Enable a detection check",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := apiClient.Settings().EnableCheck(context.Background(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Check %s enabled\n", args[0])
			return nil
		},
	}
}

func newCheckDisableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disable <id>",
		Short: "Disable a detection check",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := apiClient.Settings().DisableCheck(context.Background(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Check %s disabled\n", args[0])
			return nil
		},
	}
}
