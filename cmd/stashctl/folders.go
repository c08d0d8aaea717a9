package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"belongings/internal/client"
	"belongings/internal/domain/models/inventory"
	"belongings/internal/treesync"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var foldersCmd = &cobra.Command{
	Use:     "folders",
	Aliases: []string{"f"},
	Short:   "Inspect and move folders",
}

var foldersTreeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Print the folder tree with item counts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, err := newClient().GetTree(cmd.Context())
		if err != nil {
			return err
		}
		printTree(cmd.OutOrStdout(), tree.Folders)
		fmt.Fprintf(cmd.OutOrStdout(), "\n%s folders, %s unfiled items\n",
			humanize.Comma(int64(tree.TotalFolders)), humanize.Comma(int64(tree.UnfiledItems)))
		return nil
	},
}

var foldersMvCmd = &cobra.Command{
	Use:   "mv <folder-id> <parent-id|root>",
	Short: "Move a folder under another folder, or to the root level",
	Long: `Move a folder. The move is checked against the current tree before it is
sent: moves into the folder itself, into one of its descendants, or past the
depth limit are refused locally.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		api := newClient()
		logger := newLogger()

		store := treesync.NewStore(api, logger)
		if err := store.Reload(ctx); err != nil {
			return err
		}

		var alert string
		exec := treesync.NewExecutor(store, api, treesync.AlertFunc(func(msg string) { alert = msg }), logger)
		exec.OnTransition(func(from, to treesync.State) {
			logger.Debug("move state", "from", from, "to", to)
		})

		folderID := args[0]
		target := parseTarget(args[1])

		if err := exec.BeginDrag(folderID); err != nil {
			return fmt.Errorf("%s: %w", folderID, err)
		}
		if !exec.DragOver(target) {
			reason := store.Snapshot().ValidateMove(folderID, target)
			exec.Cancel()
			return fmt.Errorf("cannot move %s: %w", folderID, reason)
		}

		outcome, err := exec.Drop(ctx, target)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		switch outcome {
		case treesync.OutcomeNoop:
			fmt.Fprintln(out, "already there, nothing to do")
		case treesync.OutcomeMoved:
			fmt.Fprintf(out, "moved to %s\n", displayPath(store, folderID))
		case treesync.OutcomeFailed:
			return errors.New(alert)
		}
		return nil
	},
}

var foldersWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Reprint the folder tree whenever it changes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		api := newClient()
		logger := newLogger()
		out := cmd.OutOrStdout()

		store := treesync.NewStore(api, logger)
		if err := store.Reload(ctx); err != nil {
			return err
		}
		printTree(out, store.Snapshot().Build())

		stream, err := api.Events(ctx)
		if err != nil {
			return err
		}
		defer stream.Close()

		changed := make(chan struct{}, 1)
		unsubscribe := store.OnInvalidate(func() {
			select {
			case changed <- struct{}{}:
			default:
			}
		})
		defer unsubscribe()

		watchErr := make(chan error, 1)
		go func() { watchErr <- store.Watch(ctx, stream) }()

		for {
			select {
			case <-ctx.Done():
				return nil
			case err := <-watchErr:
				return err
			case <-changed:
				if err := store.Reload(ctx); err != nil {
					if errors.Is(err, context.Canceled) {
						return nil
					}
					fmt.Fprintf(os.Stderr, "reload failed: %v\n", err)
					continue
				}
				fmt.Fprintln(out, "---")
				printTree(out, store.Snapshot().Build())
			}
		}
	},
}

func init() {
	foldersCmd.AddCommand(foldersTreeCmd, foldersMvCmd, foldersWatchCmd)
}

// parseTarget maps "root" (or an empty string) to the root level.
func parseTarget(arg string) *string {
	if arg == "" || strings.EqualFold(arg, "root") {
		return nil
	}
	return &arg
}

func displayPath(store *treesync.Store, folderID string) string {
	if p := store.Snapshot().Path(folderID); p != "" {
		return "/" + p
	}
	return folderID
}

func printTree(w io.Writer, nodes []*inventory.FolderNode) {
	if len(nodes) == 0 {
		fmt.Fprintln(w, "(no folders)")
		return
	}
	for _, n := range nodes {
		printNode(w, n, "")
	}
}

func printNode(w io.Writer, n *inventory.FolderNode, indent string) {
	line := fmt.Sprintf("%s%s  [%s]", indent, n.Name, n.ID)
	if n.ItemCount > 0 {
		line += fmt.Sprintf("  %s items", humanize.Comma(int64(n.ItemCount)))
	}
	if !n.UpdatedAt.IsZero() {
		line += "  updated " + humanize.Time(n.UpdatedAt)
	}
	fmt.Fprintln(w, line)
	for _, child := range n.Children {
		printNode(w, child, indent+"  ")
	}
}

// apiMessage is used when a command fails on a server rejection.
func apiMessage(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}
