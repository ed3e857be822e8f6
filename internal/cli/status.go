package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show server and anomaly summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			if err := apiClient.Health().Ready(ctx); err != nil {
				return fmt.Errorf("server not ready: %w", err)
			}

			summary, err := apiClient.Anomalies().Summary(ctx)
			if err != nil {
				return err
			}

			if getOutputFormat() != "table" {
				return printOutput(map[string]interface{}{
					"server":                "ready",
					"anomalies_by_severity": summary,
				})
			}

			fmt.Println("UtilAudit Status")
			fmt.Println(strings.Repeat("=", 40))
			fmt.Println("  Server:    ready")

			total := 0
			for _, n := range summary {
				total += n
			}
			fmt.Printf("  Anomalies: %d total", total)
			if n := summary["critical"]; n > 0 {
				fmt.Printf(" (%d critical)", n)
			}
			fmt.Println()
			for _, sev := range []string{"critical", "warning", "info"} {
				if n, ok := summary[sev]; ok {
					fmt.Printf("    %-10s %d\n", sev+":", n)
				}
			}

			return nil
		},
	}
}
