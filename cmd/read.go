package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"inkwell/lineage/internal/diff"
	"inkwell/lineage/internal/graph"
	"inkwell/lineage/internal/lineage"
)

var (
	logJSON   bool
	showJSON  bool
	graphJSON bool
	diffJSON  bool
	statsJSON bool
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "List events in creation order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := OpenStore(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore()

		events := store.Events()
		if logJSON {
			return writeJSON(cmd.OutOrStdout(), events)
		}
		out := cmd.OutOrStdout()
		for _, e := range events {
			parent := "root"
			if e.ParentID != nil {
				parent = truncID(*e.ParentID)
			}
			fmt.Fprintf(out, "v%-4d %s  %-8s %-13s %s  %s\n",
				e.Version, truncID(e.ID), parent, e.Type, e.Timestamp, truncTitle(e.Summary, 50))
		}
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <event>",
	Short: "Print the snapshot stored by an event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := OpenStore(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore()

		e, err := ResolveEvent(store, args[0])
		if err != nil {
			return err
		}
		if showJSON {
			return writeJSON(cmd.OutOrStdout(), e)
		}
		fmt.Fprint(cmd.OutOrStdout(), e.Content)
		return nil
	},
}

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Lay out the history as a lane graph",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := OpenStore(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore()

		layout := graph.ComputeLayout(store.Events())
		for _, id := range layout.Orphans {
			slog.Debug("event references a missing parent; drawn as a root", "id", id)
		}
		if len(layout.Orphans) > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %d event(s) reference missing parents\n", len(layout.Orphans))
		}
		if graphJSON {
			return writeJSON(cmd.OutOrStdout(), layout)
		}
		fmt.Fprint(cmd.OutOrStdout(), graph.RenderASCII(layout))
		return nil
	},
}

var diffCmd = &cobra.Command{
	Use:   "diff [from] [to]",
	Short: "Show line changes between two events",
	Long: "With two events, diffs from -> to. With one, diffs the event against its parent.\n" +
		"With none, diffs the latest event against the snapshot saved just before it.",
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := OpenStore(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore()

		oldText, newText, err := diffInputs(store, args)
		if err != nil {
			return err
		}

		segments := diff.Compute(oldText, newText)
		if diffJSON {
			return writeJSON(cmd.OutOrStdout(), segments)
		}
		sum := diff.Summarize(segments)
		out := cmd.OutOrStdout()
		fmt.Fprint(out, diff.Format(segments))
		fmt.Fprintf(out, "\n%d added, %d removed, %d unchanged\n", sum.Added, sum.Removed, sum.Unchanged)
		return nil
	},
}

// diffInputs picks the old and new snapshots for the diff command
func diffInputs(store *lineage.Store, args []string) (string, string, error) {
	switch len(args) {
	case 0:
		latest, ok := store.GetLatest()
		if !ok {
			return "", "", fmt.Errorf("history is empty")
		}
		prev, _ := store.GetPreviousContent()
		return prev, latest.Content, nil
	case 1:
		to, err := ResolveEvent(store, args[0])
		if err != nil {
			return "", "", err
		}
		parent, _ := store.GetPreviousEvent(to.ID)
		return parent.Content, to.Content, nil
	default:
		from, err := ResolveEvent(store, args[0])
		if err != nil {
			return "", "", err
		}
		to, err := ResolveEvent(store, args[1])
		if err != nil {
			return "", "", err
		}
		return from.Content, to.Content, nil
	}
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize the shape of the history",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := OpenStore(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore()

		s := graph.ComputeStats(store.Events())
		if statsJSON {
			return writeJSON(cmd.OutOrStdout(), s)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "\n  %s\n", store.Namespace())
		fmt.Fprintln(out, "  "+strings.Repeat("─", 40))
		fmt.Fprintf(out, "  Events: %d  Roots: %d  Heads: %d\n", s.TotalEvents, s.Roots, s.Heads)
		fmt.Fprintf(out, "  Branch points: %d  Columns: %d\n", s.BranchPoints, s.Columns)
		fmt.Fprintf(out, "  Components: %d  Largest: %d  Longest chain: %d\n", s.Components, s.LargestComponent, s.LongestChain)
		if s.Orphans > 0 {
			fmt.Fprintf(out, "  Orphans: %d events reference missing parents\n", s.Orphans)
		}
		fmt.Fprintln(out)
		return nil
	},
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	logCmd.Flags().BoolVar(&logJSON, "json", false, "Output as JSON")
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Output the whole event as JSON")
	graphCmd.Flags().BoolVar(&graphJSON, "json", false, "Output layout as JSON")
	diffCmd.Flags().BoolVar(&diffJSON, "json", false, "Output segments as JSON")
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(logCmd, showCmd, graphCmd, diffCmd, statsCmd)
}
