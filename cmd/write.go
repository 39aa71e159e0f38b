package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"inkwell/lineage/internal/lineage"
)

var (
	appendType    string
	appendParent  string
	appendRoot    bool
	appendSummary string
	appendFile    string

	branchSummary string
	branchFile    string

	resetSummary string
	resetFile    string
)

var appendCmd = &cobra.Command{
	Use:   "append",
	Short: "Record a new snapshot read from --file or stdin",
	Long:  "Records a snapshot as a child of --parent (default: the latest event). --root starts a new root instead.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := OpenStore(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore()

		content, err := readContent(appendFile, cmd.InOrStdin())
		if err != nil {
			return err
		}

		var parent *string
		switch {
		case appendRoot:
		case appendParent != "":
			p, err := ResolveEvent(store, appendParent)
			if err != nil {
				return fmt.Errorf("resolving parent: %w", err)
			}
			parent = &p.ID
		default:
			if latest, ok := store.GetLatest(); ok {
				parent = &latest.ID
			}
		}

		e := store.Append(cmd.Context(), lineage.Type(appendType), content, parent, appendSummary)
		printRecorded(cmd, e)
		return checkPersisted(store)
	},
}

var branchCmd = &cobra.Command{
	Use:   "branch <event>",
	Short: "Start a branch from an earlier event",
	Long:  "Appends a branch event under <event>. Content comes from --file, or is copied from <event> when no file is given.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := OpenStore(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore()

		from, err := ResolveEvent(store, args[0])
		if err != nil {
			return err
		}
		content := from.Content
		if branchFile != "" {
			if content, err = readContent(branchFile, nil); err != nil {
				return err
			}
		}

		e, _ := store.Branch(cmd.Context(), from.ID, content, branchSummary)
		printRecorded(cmd, e)
		return checkPersisted(store)
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore <event>",
	Short: "Bring an earlier snapshot back as the newest version",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := OpenStore(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore()

		target, err := ResolveEvent(store, args[0])
		if err != nil {
			return err
		}
		e, _ := store.Restore(cmd.Context(), target.ID)
		printRecorded(cmd, e)
		return checkPersisted(store)
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Discard all history and start over from --file or stdin",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := OpenStore(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore()

		content, err := readContent(resetFile, cmd.InOrStdin())
		if err != nil {
			return err
		}
		e := store.ResetWithContent(cmd.Context(), content, resetSummary)
		printRecorded(cmd, e)
		return checkPersisted(store)
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all history for the document",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := OpenStore(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore()

		n := store.Len()
		store.Clear(cmd.Context())
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d events from %s\n", n, store.Namespace())
		return checkPersisted(store)
	},
}

func printRecorded(cmd *cobra.Command, e lineage.Event) {
	parent := "root"
	if e.ParentID != nil {
		parent = truncID(*e.ParentID)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "v%d %s (%s, parent %s)\n", e.Version, e.ID, e.Type, parent)
}

func init() {
	appendCmd.Flags().StringVar(&appendType, "type", string(lineage.TypeUserEdit), "Event type tag (user_edit, ai_suggestion, branch, restore)")
	appendCmd.Flags().StringVar(&appendParent, "parent", "", "Parent event (ID, prefix or vN); default is the latest event")
	appendCmd.Flags().BoolVar(&appendRoot, "root", false, "Start a new root instead of continuing from a parent")
	appendCmd.Flags().StringVar(&appendSummary, "summary", "", "Human-readable label")
	appendCmd.Flags().StringVar(&appendFile, "file", "", "Read content from file instead of stdin")

	branchCmd.Flags().StringVar(&branchSummary, "summary", "", "Human-readable label")
	branchCmd.Flags().StringVar(&branchFile, "file", "", "Read branch content from file")

	resetCmd.Flags().StringVar(&resetSummary, "summary", "", "Human-readable label")
	resetCmd.Flags().StringVar(&resetFile, "file", "", "Read content from file instead of stdin")

	rootCmd.AddCommand(appendCmd, branchCmd, restoreCmd, resetCmd, clearCmd)
}
