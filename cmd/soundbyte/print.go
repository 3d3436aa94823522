package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"github.com/pbaille/soundbyte/internal/dashboard"
	"github.com/pbaille/soundbyte/internal/domain"
	"github.com/pbaille/soundbyte/internal/feed"
	"github.com/pbaille/soundbyte/internal/trends"
)

var (
	bold  = color.New(color.Bold)
	faint = color.New(color.Faint)
	title = color.New(color.Bold, color.Underline)
)

func priorityColor(p domain.Priority) *color.Color {
	switch p {
	case domain.PriorityParadigmShift:
		return color.New(color.FgHiMagenta, color.Bold)
	case domain.PriorityHigh:
		return color.New(color.FgHiRed)
	case domain.PriorityMentalModel:
		return color.New(color.FgHiCyan)
	case domain.PriorityMedium:
		return color.New(color.FgYellow)
	default:
		return faint
	}
}

func printMatches(matches []domain.Match, limit int, showScore bool) {
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 60
	for _, m := range matches {
		e := m.Entry
		row := []interface{}{
			faint.Sprint(e.Date.String()),
			priorityColor(e.Priority).Sprint(e.Priority),
			e.Category,
			truncate(e.Title, 60),
			faint.Sprint(strings.Join(e.Tags, ",")),
		}
		if showScore {
			row = append(row, faint.Sprintf("%.3f", m.Score))
		}
		row = append(row, faint.Sprint(e.ID))
		tbl.AddRow(row...)
	}
	fmt.Fprintln(color.Output, tbl)
}

func printFooter(v dashboard.View) {
	_, _ = faint.Fprintf(color.Output, "\n%d of %d entries, sorted by %s\n", v.Count, v.Total, v.EffectiveSort)
}

func printTimeline(groups []dashboard.Group) {
	if len(groups) == 0 {
		fmt.Println("No matching entries.")
		return
	}
	for _, g := range groups {
		_, _ = title.Fprint(color.Output, g.Day.String())
		_, _ = faint.Fprintf(color.Output, " - %d\n", len(g.Entries))
		for _, m := range g.Entries {
			fmt.Fprintf(color.Output, "  %s %s\n", priorityColor(m.Entry.Priority).Sprint("●"), truncate(m.Entry.Title, 70))
		}
		fmt.Println()
	}
}

func printTags(tags []feed.TagCount, limit int) {
	if len(tags) == 0 {
		fmt.Println("No tags.")
		return
	}
	if limit > 0 && len(tags) > limit {
		tags = tags[:limit]
	}
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("Tag"), bold.Sprint("Count"))
	for _, t := range tags {
		tbl.AddRow(t.Tag, t.Count)
	}
	fmt.Fprintln(color.Output, tbl)
}

func printTrends(r trends.Report) {
	_, _ = title.Fprintln(color.Output, "Hot tags")
	tbl := uitable.New()
	tbl.Separator = "  "
	for i, h := range r.HotTags {
		marker := ""
		if h.IsNew {
			marker = color.GreenString("NEW")
		}
		tbl.AddRow(fmt.Sprintf("%2d.", i+1), h.Tag, h.Count, marker)
	}
	fmt.Fprintln(color.Output, tbl)

	_, _ = title.Fprintln(color.Output, "\nCategories")
	tbl = uitable.New()
	tbl.Separator = "  "
	for _, c := range r.Categories {
		tbl.AddRow(c.Category, c.Count, fmt.Sprintf("%.0f%%", c.Share*100))
	}
	fmt.Fprintln(color.Output, tbl)

	_, _ = title.Fprintln(color.Output, "\nLast days")
	peak := 1
	for _, d := range r.Daily {
		if d.Count > peak {
			peak = d.Count
		}
	}
	tbl = uitable.New()
	tbl.Separator = "  "
	for _, d := range r.Daily {
		bar := strings.Repeat("█", d.Count*30/peak)
		tbl.AddRow(d.Label, color.CyanString(bar), d.Count)
	}
	fmt.Fprintln(color.Output, tbl)

	_, _ = faint.Fprintf(color.Output, "\n%d entries from %s to %s\n", r.Total, r.DateRange.From, r.DateRange.To)
}

func printCollections(cols []domain.Collection) {
	if len(cols) == 0 {
		fmt.Println("No collections yet. Use 'soundbyte collections create' to make one.")
		return
	}
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("ID"), bold.Sprint("Name"), bold.Sprint("Entries"))
	for _, c := range cols {
		tbl.AddRow(faint.Sprint(c.ID), c.Name, len(c.EntryIDs))
	}
	fmt.Fprintln(color.Output, tbl)
}

func printCollection(c domain.Collection, entries []domain.Entry) {
	_, _ = title.Fprint(color.Output, c.Name)
	_, _ = faint.Fprintf(color.Output, " - %d\n", len(c.EntryIDs))
	if len(entries) == 0 {
		_, _ = faint.Fprintln(color.Output, "  none")
		return
	}
	for _, e := range entries {
		fmt.Fprintf(color.Output, "  %s  %s\n", faint.Sprint(e.ID), truncate(e.Title, 70))
	}
}

func truncate(s string, n int) string {
	// Replace newlines with spaces for display
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
