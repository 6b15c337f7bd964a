package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/sentiment-cli/internal/model"
	"github.com/sells-group/sentiment-cli/internal/monitoring"
	"github.com/sells-group/sentiment-cli/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect the run ledger",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs, newest first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if err := validate(cmd, "runs"); err != nil {
			return err
		}
		st, err := openLedger(cmd)
		if err != nil {
			return err
		}
		defer closeStore(st)

		status, _ := cmd.Flags().GetString("status")
		kind, _ := cmd.Flags().GetString("kind")
		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := st.ListRuns(ctx, store.RunFilter{
			Status: model.RunStatus(status),
			Kind:   model.RunKind(kind),
			Limit:  limit,
		})
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No runs found.")
			return nil
		}
		return formatRunsList(cmd.OutOrStdout(), runs)
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := validate(cmd, "runs"); err != nil {
			return err
		}
		st, err := openLedger(cmd)
		if err != nil {
			return err
		}
		defer closeStore(st)

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return err
		}
		formatRun(cmd.OutOrStdout(), run)
		return nil
	},
}

var runsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize ledger health over a lookback window",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if err := validate(cmd, "runs"); err != nil {
			return err
		}
		st, err := openLedger(cmd)
		if err != nil {
			return err
		}
		defer closeStore(st)

		lookback, _ := cmd.Flags().GetInt("lookback")
		if lookback <= 0 {
			lookback = cfg.Monitoring.LookbackHours
		}
		staleAfter := time.Duration(cfg.Monitoring.StaleAfterMins) * time.Minute
		snap, err := monitoring.NewCollector(st, staleAfter).Collect(ctx, lookback)
		if err != nil {
			return err
		}
		if err := formatSnapshot(cmd.OutOrStdout(), snap); err != nil {
			return err
		}

		alerter := monitoring.NewAlerter(cfg.Monitoring)
		alerts := alerter.Evaluate(snap)
		for _, a := range alerts {
			fmt.Fprintf(cmd.OutOrStdout(), "ALERT [%s] %s\n", a.Severity, a.Message)
		}
		if notify, _ := cmd.Flags().GetBool("notify"); notify && len(alerts) > 0 {
			sent := alerter.SendAlerts(ctx, alerts)
			fmt.Fprintf(cmd.OutOrStdout(), "Sent %d of %d alerts\n", sent, len(alerts))
		}
		return nil
	},
}

func formatSnapshot(w io.Writer, snap *monitoring.MetricsSnapshot) error {
	fmt.Fprintf(w, "Runs in last %dh: %d (done %d, failed %d, in flight %d, stale %d)\n",
		snap.LookbackHours, snap.Total, snap.Done, snap.Failed, snap.InFlight, snap.Stale)
	fmt.Fprintf(w, "Failure rate: %.1f%%  Rows written: %d  Empty runs: %d\n",
		snap.FailRate*100, snap.Rows, snap.Empty)
	if len(snap.ByKind) == 0 {
		return nil
	}

	kinds := make([]string, 0, len(snap.ByKind))
	for k := range snap.ByKind {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tTOTAL\tDONE\tFAILED\tEMPTY\tROWS")
	for _, k := range kinds {
		km := snap.ByKind[model.RunKind(k)]
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\n", k, km.Total, km.Done, km.Failed, km.Empty, km.Rows)
	}
	return tw.Flush()
}

func openLedger(cmd *cobra.Command) (store.Store, error) {
	st, err := initStore(cmd.Context(), cfg)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, eris.New("run ledger disabled (store.driver=none)")
	}
	return st, nil
}

func formatRunsList(w io.Writer, runs []model.Run) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKIND\tSTATUS\tROWS\tCREATED\tOUTPUT")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
			truncateID(r.ID), r.Kind, r.Status, r.RowsWritten,
			r.CreatedAt.UTC().Format(time.DateTime), r.Output)
	}
	return tw.Flush()
}

func formatRun(w io.Writer, r *model.Run) {
	fmt.Fprintf(w, "ID:       %s\n", r.ID)
	fmt.Fprintf(w, "Kind:     %s\n", r.Kind)
	fmt.Fprintf(w, "Status:   %s\n", r.Status)
	if len(r.Subjects) > 0 {
		fmt.Fprintf(w, "Subjects: %s\n", strings.Join(r.Subjects, ", "))
	}
	if r.Output != "" {
		fmt.Fprintf(w, "Output:   %s\n", r.Output)
	}
	fmt.Fprintf(w, "Rows:     %d\n", r.RowsWritten)
	if r.Error != "" {
		fmt.Fprintf(w, "Error:    %s\n", r.Error)
	}
	fmt.Fprintf(w, "Created:  %s\n", r.CreatedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(w, "Updated:  %s\n", r.UpdatedAt.UTC().Format(time.RFC3339))
}

func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	runsListCmd.Flags().String("status", "", "filter by status")
	runsListCmd.Flags().String("kind", "", "filter by kind (news, social, peers, keywords, score)")
	runsListCmd.Flags().Int("limit", 20, "max runs to show")
	runsStatsCmd.Flags().Int("lookback", 0, "lookback window in hours (overrides monitoring.lookback_hours)")
	runsStatsCmd.Flags().Bool("notify", false, "post triggered alerts to monitoring.webhook_url")
	runsCmd.AddCommand(runsListCmd, runsShowCmd, runsStatsCmd)
	rootCmd.AddCommand(runsCmd)
}
