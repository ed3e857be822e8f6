package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/utilaudit/utilaudit/internal/detector"
	"github.com/utilaudit/utilaudit/internal/pkg/logger"
	"github.com/utilaudit/utilaudit/pkg/client"
)

func newRecordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Manage cost records",
	}

	cmd.AddCommand(newRecordListCmd())
	cmd.AddCommand(newRecordGetCmd())
	cmd.AddCommand(newRecordIngestCmd())
	cmd.AddCommand(newRecordBackfillCmd())
	cmd.AddCommand(newRecordDetectCmd())

	return cmd
}

func newRecordListCmd() *cobra.Command {
	var opts client.RecordListOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cost records",
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := apiClient.Records().List(context.Background(), &opts)
			if err != nil {
				return err
			}

			if getOutputFormat() != "table" {
				return printOutput(page)
			}

			t := NewTable("ID", "COST TYPE", "AMOUNT", "PERIOD START", "PERIOD END", "SUPPLIER")
			for _, r := range page.Data {
				t.AddRow(
					truncate(r.ID, 12),
					r.CostType,
					r.Amount,
					r.PeriodStart.Format("2006-01-02"),
					r.PeriodEnd.Format("2006-01-02"),
					truncate(r.SupplierID, 12),
				)
			}
			t.Render()
			fmt.Printf("\nPage %d of %d (%d records)\n", page.Page, page.TotalPages, page.TotalItems)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&opts.PageSize, "page-size", 20, "page size")
	cmd.Flags().StringVar(&opts.LocationID, "location", "", "filter by location ID")
	cmd.Flags().StringVar(&opts.SupplierID, "supplier", "", "filter by supplier ID")
	cmd.Flags().StringVar(&opts.CostType, "cost-type", "", "filter by cost type")
	cmd.Flags().StringVar(&opts.StartDate, "start", "", "filter by period start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.EndDate, "end", "", "filter by period end (YYYY-MM-DD)")

	return cmd
}

func newRecordGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a cost record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := apiClient.Records().Get(context.Background(), args[0])
			if err != nil {
				return err
			}
			return printOutput(rec)
		},
	}
}

func newRecordIngestCmd() *cobra.Command {
	var req client.IngestRecordRequest

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Submit a cost record and run detection",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := apiClient.Records().Ingest(context.Background(), req)
			if err != nil {
				return err
			}

			if getOutputFormat() != "table" {
				return printOutput(result)
			}

			fmt.Printf("Record %s ingested, %d anomalies detected\n", result.RecordID, len(result.Anomalies))
			for _, a := range result.Anomalies {
				fmt.Printf("  %s %s: %s\n", formatSeverity(a.Severity), a.Type, a.Message)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&req.LocationID, "location", "", "location ID")
	cmd.Flags().StringVar(&req.SupplierID, "supplier", "", "supplier ID")
	cmd.Flags().StringVar(&req.CostType, "cost-type", "", "cost type")
	cmd.Flags().StringVar(&req.Amount, "amount", "", "invoice amount")
	cmd.Flags().StringVar(&req.Quantity, "quantity", "", "consumed quantity")
	cmd.Flags().StringVar(&req.Unit, "unit", "", "quantity unit")
	cmd.Flags().StringVar(&req.PricePerUnit, "price-per-unit", "", "price per unit")
	cmd.Flags().StringVar(&req.PeriodStart, "period-start", "", "billing period start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&req.PeriodEnd, "period-end", "", "billing period end (YYYY-MM-DD)")
	cmd.Flags().StringVar(&req.InvoiceNumber, "invoice", "", "invoice number")

	_ = cmd.MarkFlagRequired("location")
	_ = cmd.MarkFlagRequired("supplier")
	_ = cmd.MarkFlagRequired("cost-type")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("period-start")
	_ = cmd.MarkFlagRequired("period-end")

	return cmd
}

func newRecordBackfillCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Import historical records from a JSON file",
		Long: `Import a batch of historical cost records from a JSON file containing
an array of record objects. Anomalies found during a backfill are stored
but not alerted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return err
			}

			var records []client.IngestRecordRequest
			if err := json.Unmarshal(data, &records); err != nil {
				return fmt.Errorf("failed to parse %s: %w", file, err)
			}

			result, err := apiClient.Records().Backfill(context.Background(), client.BackfillRequest{Records: records})
			if err != nil {
				return err
			}

			if getOutputFormat() != "table" {
				return printOutput(result)
			}

			fmt.Printf("Imported %d records (%d failed), %d anomalies detected\n",
				result.Imported, result.Failed, result.Anomalies)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON file with records to import")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func newRecordDetectCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Run detection locally on a records JSON file",
		Long: `Run the detection engine locally against a JSON file containing an
array of record objects, without contacting the server. The record with the
latest period start is checked; the remaining records form its history.
Default thresholds apply.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return err
			}

			var raw []client.IngestRecordRequest
			if err := json.Unmarshal(data, &raw); err != nil {
				return fmt.Errorf("failed to parse %s: %w", file, err)
			}
			if len(raw) == 0 {
				return fmt.Errorf("%s contains no records", file)
			}

			records := make([]detector.HistoricalCostRecord, 0, len(raw))
			latestLocation := raw[0].LocationID
			var latestStart time.Time
			for i, req := range raw {
				rec, err := parseLocalRecord(req, i)
				if err != nil {
					return err
				}
				if rec.PeriodStart.After(latestStart) {
					latestStart = rec.PeriodStart
					latestLocation = req.LocationID
				}
				records = append(records, rec)
			}
			sort.Slice(records, func(i, j int) bool {
				return records[i].PeriodStart.Before(records[j].PeriodStart)
			})

			latest := records[len(records)-1]
			subject := detector.CostRecordToCheck{
				ID:            latest.ID,
				LocationID:    latestLocation,
				SupplierID:    latest.SupplierID,
				CostType:      latest.CostType,
				Amount:        latest.Amount,
				Quantity:      latest.Quantity,
				Unit:          latest.Unit,
				PricePerUnit:  latest.PricePerUnit,
				PeriodStart:   latest.PeriodStart,
				PeriodEnd:     latest.PeriodEnd,
				InvoiceNumber: latest.InvoiceNumber,
			}

			log := logger.New(logger.Config{Level: "error", Format: "console"})
			engine := detector.NewEngine(detector.DefaultSettings(), log)
			checkCtx := &detector.CheckContext{
				Location:          detector.LocationContext{ID: subject.LocationID},
				Supplier:          detector.SupplierContext{ID: subject.SupplierID},
				HistoricalRecords: records[:len(records)-1],
			}
			result := engine.Detect(subject, checkCtx, detector.DetectOptions{})

			if getOutputFormat() != "table" {
				return printOutput(result)
			}

			fmt.Printf("Checked record for period %s against %d historical records\n",
				subject.PeriodStart.Format("2006-01-02"), len(checkCtx.HistoricalRecords))
			for _, tr := range result.CheckResults {
				if tr.Skipped {
					fmt.Printf("  - %s skipped: %s\n", tr.CheckID, tr.SkipReason)
				}
			}
			if len(result.Anomalies) == 0 {
				fmt.Println("No anomalies detected")
				return nil
			}
			for _, a := range result.Anomalies {
				fmt.Printf("  %s %s: %s\n", formatSeverity(string(a.Severity)), a.Type, a.Message)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON file with records to check")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func parseLocalRecord(req client.IngestRecordRequest, idx int) (detector.HistoricalCostRecord, error) {
	var rec detector.HistoricalCostRecord

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return rec, fmt.Errorf("record %d: invalid amount %q", idx, req.Amount)
	}
	start, err := time.Parse("2006-01-02", req.PeriodStart)
	if err != nil {
		return rec, fmt.Errorf("record %d: invalid period_start %q", idx, req.PeriodStart)
	}
	end, err := time.Parse("2006-01-02", req.PeriodEnd)
	if err != nil {
		return rec, fmt.Errorf("record %d: invalid period_end %q", idx, req.PeriodEnd)
	}

	rec = detector.HistoricalCostRecord{
		ID:            fmt.Sprintf("local-%d", idx),
		CostType:      detector.CostType(req.CostType),
		Amount:        amount,
		Unit:          req.Unit,
		PeriodStart:   start,
		PeriodEnd:     end,
		SupplierID:    req.SupplierID,
		InvoiceNumber: req.InvoiceNumber,
	}
	if req.Quantity != "" {
		q, err := decimal.NewFromString(req.Quantity)
		if err != nil {
			return rec, fmt.Errorf("record %d: invalid quantity %q", idx, req.Quantity)
		}
		rec.Quantity = &q
	}
	if req.PricePerUnit != "" {
		p, err := decimal.NewFromString(req.PricePerUnit)
		if err != nil {
			return rec, fmt.Errorf("record %d: invalid price_per_unit %q", idx, req.PricePerUnit)
		}
		rec.PricePerUnit = &p
	}
	return rec, nil
}
