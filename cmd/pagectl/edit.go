package main

import (
	"bufio"
	"context"
	"fmt"
	"html"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/catatan/catatan/internal/autosave"
	"github.com/catatan/catatan/internal/page"
	"github.com/spf13/cobra"
)

var (
	editTitle  string
	editName   string
	editAppend bool
)

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Write stdin into a page with autosave",
	Long: `Edit reads lines from stdin and stores each non-empty line as a paragraph.
Changes are saved once typing pauses for the idle window, and once more when
input ends or the command is interrupted.

Example:
  pagectl edit 0190f... --title "Groceries" < list.txt
  pagectl edit 0190f... --append`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cred, err := credential()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		wb := autosave.NewWorkbench(api.Scoped(cred), autosave.WithIdle(idleWindow()))
		opts := editOptions{title: editTitle, name: editName, append: editAppend}
		snap, err := runEdit(ctx, wb, args[0], cmd.InOrStdin(), opts)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "saved %s (%d bytes)\n", args[0], len(snap.Content))
		return nil
	},
}

func init() {
	editCmd.Flags().StringVar(&editTitle, "title", "", "set the page title")
	editCmd.Flags().StringVar(&editName, "name", "", "rename the page")
	editCmd.Flags().BoolVar(&editAppend, "append", false, "keep existing content and add to it")
}

type editOptions struct {
	title  string
	name   string
	append bool
}

// runEdit opens id in wb, feeds each input line into the session and closes
// it when input ends or ctx is cancelled. On cancellation an io.Closer input
// is closed and its reader goroutine drained; any other reader is left to the
// process exit. It returns the last saved snapshot.
func runEdit(ctx context.Context, wb *autosave.Workbench, id string, in io.Reader, opts editOptions) (page.Edit, error) {
	sess, err := wb.Open(ctx, id)
	if err != nil {
		return page.Edit{}, fmt.Errorf("open page %s: %w", id, err)
	}

	if opts.title != "" {
		if err := sess.SetTitle(opts.title); err != nil {
			return page.Edit{}, err
		}
	}
	if opts.name != "" {
		if err := sess.SetDisplayName(opts.name); err != nil {
			return page.Edit{}, err
		}
	}

	var body strings.Builder
	if opts.append {
		if existing := sess.Snapshot().Content; existing != page.PlaceholderContent {
			body.WriteString(existing)
		}
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

read:
	for {
		select {
		case <-ctx.Done():
			if cl, ok := in.(io.Closer); ok {
				_ = cl.Close()
				for range lines {
				}
			}
			break read
		case line, ok := <-lines:
			if !ok {
				break read
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			body.WriteString("<p>" + html.EscapeString(line) + "</p>")
			if err := sess.SetContent(body.String()); err != nil {
				return page.Edit{}, err
			}
		}
	}

	snap := sess.Snapshot()
	// ctx may already be cancelled; the final save must still go out.
	if err := wb.Close(context.WithoutCancel(ctx)); err != nil {
		return snap, fmt.Errorf("save page %s: %w", id, err)
	}
	return snap, nil
}
