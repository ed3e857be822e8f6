package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/utilaudit/utilaudit/pkg/client"
)

func newAnomalyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "anomaly",
		Short: "Review detected anomalies",
	}

	cmd.AddCommand(newAnomalyListCmd())
	cmd.AddCommand(newAnomalyGetCmd())
	cmd.AddCommand(newAnomalyStatusCmd())
	cmd.AddCommand(newAnomalySummaryCmd())

	return cmd
}

func newAnomalyListCmd() *cobra.Command {
	var (
		opts     client.AnomalyListOptions
		backfill bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List anomalies",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("backfill") {
				opts.IsBackfill = &backfill
			}

			page, err := apiClient.Anomalies().List(context.Background(), &opts)
			if err != nil {
				return err
			}

			if getOutputFormat() != "table" {
				return printOutput(page)
			}

			t := NewTable("ID", "TYPE", "SEVERITY", "STATUS", "DETECTED", "MESSAGE")
			for _, a := range page.Data {
				t.AddRow(
					truncate(a.ID, 12),
					a.Type,
					formatSeverity(a.Severity),
					a.Status,
					a.DetectedAt.Format("2006-01-02"),
					truncate(a.Message, 60),
				)
			}
			t.Render()
			fmt.Printf("\nPage %d of %d (%d anomalies)\n", page.Page, page.TotalPages, page.TotalItems)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&opts.PageSize, "page-size", 20, "page size")
	cmd.Flags().StringVar(&opts.CostRecordID, "record", "", "filter by cost record ID")
	cmd.Flags().StringVar(&opts.Type, "type", "", "filter by anomaly type")
	cmd.Flags().StringVar(&opts.Severity, "severity", "", "filter by severity")
	cmd.Flags().StringVar(&opts.Status, "status", "", "filter by status")
	cmd.Flags().BoolVar(&backfill, "backfill", false, "filter by backfill flag")

	return cmd
}

func newAnomalyGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show an anomaly",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := apiClient.Anomalies().Get(context.Background(), args[0])
			if err != nil {
				return err
			}
			return printOutput(a)
		},
	}
}

func newAnomalyStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-status <id> <status>",
		Short: "Transition an anomaly to a new status",
		Long:  `Valid statuses: open, acknowledged, resolved, false_positive.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := apiClient.Anomalies().UpdateStatus(context.Background(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("Anomaly %s is now %s\n", args[0], args[1])
			return nil
		},
	}
}

func newAnomalySummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show anomaly counts by severity",
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := apiClient.Anomalies().Summary(context.Background())
			if err != nil {
				return err
			}

			if getOutputFormat() != "table" {
				return printOutput(summary)
			}

			t := NewTable("SEVERITY", "COUNT")
			for _, sev := range []string{"critical", "warning", "info"} {
				if n, ok := summary[sev]; ok {
					t.AddRow(sev, fmt.Sprintf("%d", n))
				}
			}
			t.Render()
			return nil
		},
	}
}
