package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/computerscienceiscool/file-explorer/pkg/config"
	"github.com/computerscienceiscool/file-explorer/pkg/editor"
	apperrors "github.com/computerscienceiscool/file-explorer/pkg/errors"
	"github.com/computerscienceiscool/file-explorer/pkg/render"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the editor websocket server",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := bootstrapApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.Serve(ctx)
}

// queryFlags adds the find options shared by find and replace
func queryFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("case-sensitive", "c", false, "Match case")
	cmd.Flags().BoolP("whole-word", "w", false, "Match whole words only")
}

func queryFrom(cmd *cobra.Command, pattern string) editor.Query {
	caseSensitive, _ := cmd.Flags().GetBool("case-sensitive")
	wholeWord, _ := cmd.Flags().GetBool("whole-word")
	return editor.Query{Pattern: pattern, CaseSensitive: caseSensitive, WholeWord: wholeWord}
}

func newFindCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "find <path> <pattern>",
		Short: "Print the lines of a file that match a literal pattern",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrapApp()
			if err != nil {
				return err
			}
			defer a.Close()

			sess, err := a.OpenSession(cmd.Context(), args[0])
			if err != nil {
				return userError(err)
			}
			defer sess.Close(true)

			if err := sess.Find(queryFrom(cmd, args[1])); err != nil {
				return userError(err)
			}

			allLines, _ := cmd.Flags().GetBool("all-lines")
			text, _ := sess.Text()
			h := render.NewHighlighter(render.NewStyles())
			out := h.Render(text, sess.Matches(), sess.Position(), render.Options{
				LineNumbers:  true,
				OnlyMatching: !allLines,
			})
			if out != "" {
				fmt.Fprintln(cmd.OutOrStdout(), out)
			}
			fmt.Fprintln(cmd.OutOrStdout(), h.StatusLine(sess.Stats(), sess.FindStatus(), sess.Dirty()))
			return nil
		},
	}
	queryFlags(cmd)
	cmd.Flags().Bool("all-lines", false, "Print every line, not just matching ones")
	return cmd
}

func newReplaceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replace <path> <pattern> <replacement>",
		Short: "Replace the first (or every) occurrence of a literal pattern and save",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrapApp()
			if err != nil {
				return err
			}
			defer a.Close()

			sess, err := a.OpenSession(cmd.Context(), args[0])
			if err != nil {
				return userError(err)
			}
			defer sess.Close(true)

			if err := sess.Find(queryFrom(cmd, args[1])); err != nil {
				return userError(err)
			}

			all, _ := cmd.Flags().GetBool("all")
			count := 1
			if all {
				count, err = sess.ReplaceAll(args[2])
			} else {
				err = sess.ReplaceCurrent(args[2])
			}
			if err != nil {
				return userError(err)
			}

			dryRun, _ := cmd.Flags().GetBool("dry-run")
			if dryRun {
				text, _ := sess.Text()
				fmt.Fprintln(cmd.OutOrStdout(), text)
				return nil
			}

			if err := sess.Save(cmd.Context()); err != nil {
				return userError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Replaced %d occurrence(s) in %s\n", count, sess.Path())
			return nil
		},
	}
	queryFlags(cmd)
	cmd.Flags().BoolP("all", "a", false, "Replace every occurrence")
	cmd.Flags().Bool("dry-run", false, "Print the result instead of saving")
	return cmd
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <path>",
		Short: "Print the line and character counts of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrapApp()
			if err != nil {
				return err
			}
			defer a.Close()

			sess, err := a.OpenSession(cmd.Context(), args[0])
			if err != nil {
				return userError(err)
			}
			defer sess.Close(true)

			h := render.NewHighlighter(render.NewStyles())
			fmt.Fprintln(cmd.OutOrStdout(), h.StatusLine(sess.Stats(), "", false))
			return nil
		},
	}
}

func newAuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show recent audit records from the SQLite audit database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrapApp()
			if err != nil {
				return err
			}
			defer a.Close()

			db := a.GetAuditDB()
			if db == nil {
				return fmt.Errorf("audit database not configured (set --audit-db)")
			}

			sessionID, _ := cmd.Flags().GetString("session")
			limit, _ := cmd.Flags().GetInt("limit")
			entries, err := db.Recent(sessionID, limit)
			if err != nil {
				return fmt.Errorf("failed to read audit records: %w", err)
			}

			asJSON, _ := cmd.Flags().GetBool("json")
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}

			for _, e := range entries {
				status := "success"
				if !e.Success {
					status = "failed"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %-12s %-24s %-7s %s\n",
					e.Timestamp.Local().Format(time.RFC3339), e.SessionID, e.Command, e.Argument, status, e.ErrorMsg)
			}
			return nil
		},
	}
	cmd.Flags().String("session", "", "Only records for this session")
	cmd.Flags().Int("limit", config.DefaultAuditLimit, "Maximum number of records")
	cmd.Flags().Bool("json", false, "Output in JSON format")
	return cmd
}

// userError strips absolute paths and prefixes the error kind
func userError(err error) error {
	return fmt.Errorf("%s", apperrors.Message(err))
}
