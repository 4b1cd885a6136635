package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/catatan/catatan/internal/page"
)

const maxNameWidth = 40

func truncate(s string) string {
	if utf8.RuneCountInString(s) <= maxNameWidth {
		return s
	}
	r := []rune(s)
	return string(r[:maxNameWidth-3]) + "..."
}

func printPages(out io.Writer, pages []page.Summary) {
	if len(pages) == 0 {
		fmt.Fprintln(out, "No pages.")
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME")
	for _, p := range pages {
		fmt.Fprintf(w, "%s\t%s\n", p.ID, truncate(p.DisplayName))
	}
	w.Flush()
	fmt.Fprintf(out, "Total: %d page(s)\n", len(pages))
}

func printTrash(out io.Writer, pages []page.TrashedSummary) {
	if len(pages) == 0 {
		fmt.Fprintln(out, "Trash is empty.")
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTRASHED")
	for _, p := range pages {
		fmt.Fprintf(w, "%s\t%s\t%s\n", p.ID, truncate(p.DisplayName), p.TrashedAt.Local().Format("2006-01-02 15:04"))
	}
	w.Flush()
	fmt.Fprintf(out, "Total: %d page(s)\n", len(pages))
}

func printPage(out io.Writer, p *page.Page) {
	fmt.Fprintf(out, "id:      %s\n", p.ID)
	fmt.Fprintf(out, "name:    %s\n", p.DisplayName)
	fmt.Fprintf(out, "title:   %s\n", p.Title)
	fmt.Fprintf(out, "updated: %s\n", p.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
	if p.IsTrashed && p.TrashedAt != nil {
		fmt.Fprintf(out, "trashed: %s\n", p.TrashedAt.Local().Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintln(out, strings.Repeat("-", 20))
	fmt.Fprintln(out, p.Content)
}
