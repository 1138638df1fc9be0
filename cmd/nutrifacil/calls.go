// cmd/nutrifacil/calls.go
package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"nutrifacil/internal/config"
	"nutrifacil/internal/models"
	"nutrifacil/internal/storage"
)

var callsLimit int

var callsCmd = &cobra.Command{
	Use:   "calls",
	Short: "Show recent AI calls and a per-operation summary",
	RunE:  runCalls,
}

func init() {
	callsCmd.Flags().IntVar(&callsLimit, "limit", 20, "Maximum number of calls to list")
}

func runCalls(cmd *cobra.Command, args []string) error {
	// The call log is readable without an API key.
	cfg, err := config.Read(v, cfgFile)
	if err != nil {
		return err
	}
	setupLogger(cfg)

	callLog, err := storage.NewCallLog(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open call log: %w", err)
	}
	defer callLog.Close()

	recent, err := callLog.RecentCalls(cmd.Context(), callsLimit)
	if err != nil {
		return err
	}
	summary, err := callLog.Summary(cmd.Context())
	if err != nil {
		return err
	}

	printCalls(cmd.OutOrStdout(), recent, summary)
	return nil
}

func printCalls(w io.Writer, recent []models.CallRecord, summary []models.CallSummary) {
	if len(recent) == 0 {
		fmt.Fprintln(w, "No AI calls recorded yet.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tOPERATION\tMODEL\tSTATUS\tDURATION")
	for _, record := range recent {
		status := string(record.Status)
		if record.ErrorKind != "" {
			status += " (" + record.ErrorKind + ")"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", record.CreatedAt.Local().Format(time.DateTime),
			record.Operation, record.Model, status, record.Duration.Round(time.Millisecond))
	}
	tw.Flush()

	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "OPERATION\tCALLS\tFAILURES\tAVERAGE")
	for _, row := range summary {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", row.Operation, row.Calls, row.Failures, row.Average.Round(time.Millisecond))
	}
	tw.Flush()
}
