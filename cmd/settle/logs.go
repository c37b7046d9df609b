package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tierledger/settle/ledger"
	"github.com/tierledger/settle/report"
)

func newLogCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Inspect stored settlement logs",
	}
	cmd.AddCommand(newLogListCmd(a), newLogShowCmd(a), newLogRemoveCmd(a))
	return cmd
}

func newLogListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List settlement logs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logs, err := a.svc.Logs(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTIME\tROOT\tCASINO\tSLOT\tLOSING\tENTRIES")
			for _, l := range logs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%.2f\t%.2f\t%d\n",
					l.ID, l.Timestamp.Format(time.RFC3339), l.SelectedRootID,
					l.TotalCasinoInput, l.TotalSlotInput, l.TotalLosingInput, len(l.Results))
			}
			return w.Flush()
		},
	}
}

func newLogShowCmd(a *app) *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a stored settlement log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.svc.Reload(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printLog(cmd.OutOrStdout(), r.Log, r.Stale, verbose)
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print every entry with its breakdown")
	return cmd
}

func newLogRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a stored settlement log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.svc.DeleteLog(cmd.Context(), args[0])
		},
	}
}

// printLog writes a log header, the per-member summary and, when verbose,
// every entry with its breakdown.
func printLog(out io.Writer, l *ledger.Log, stale, verbose bool) error {
	fmt.Fprintf(out, "settlement %s\n", l.ID)
	fmt.Fprintf(out, "  time   %s\n", l.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(out, "  root   %s\n", l.SelectedRootID)
	fmt.Fprintf(out, "  input  casino %.2f  slot %.2f  losing %.2f  (%d performers)\n",
		l.TotalCasinoInput, l.TotalSlotInput, l.TotalLosingInput, len(l.RawInputs))
	if stale {
		fmt.Fprintln(out, "  note   member tree has changed since this log was computed")
	}
	fmt.Fprintln(out)

	summaries, total := report.Summarize(l.Results)
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "MEMBER\tNAME\tCASINO\tSLOT\tLOSING\tTOTAL\t")
	for _, s := range summaries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t\n",
			s.UserID, s.UserName, s.Casino.StringFixed(2), s.Slot.StringFixed(2),
			s.Losing.StringFixed(2), s.Total.StringFixed(2))
	}
	fmt.Fprintf(w, "\t\t\t\t\t%s\t\n", total.StringFixed(2))
	if err := w.Flush(); err != nil {
		return err
	}

	if !verbose {
		return nil
	}
	fmt.Fprintln(out)
	for _, e := range l.Results {
		fmt.Fprintf(out, "%-8s %-6s %-5s %12.2f  from %s\n    %s\n",
			e.UserID, e.Source, e.Role, e.Amount, e.PerformerID, e.Breakdown)
	}
	return nil
}
