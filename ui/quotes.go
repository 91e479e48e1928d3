package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/go-scripts/quotes/internal/progress"
	"github.com/go-scripts/quotes/internal/types"
)

// Quote renders one quote as a short block.
func Quote(q types.Quote) string {
	var b strings.Builder
	b.WriteString(textStyle.Render("“" + q.Text + "”"))
	b.WriteString("\n  ")
	b.WriteString(authorStyle.Render(q.Author))
	b.WriteString("  ")
	b.WriteString(linkStyle.Render(q.Link))
	return b.String()
}

func Error(msg string) string {
	return errorStyle.Render("error: ") + msg
}

// Summary renders the outcome of one topic scrape.
func Summary(topic string, s progress.Summary) string {
	if s.Err != "" {
		return Error(fmt.Sprintf("%s: %s", topic, s.Err))
	}
	return okStyle.Render("done ") + fmt.Sprintf("%s: %d quotes from %d pages, %d skipped", topic, s.Quotes, s.Pages, s.Skipped)
}

// Table renders stored quotes. Text longer than width runes is truncated.
func Table(quotes []types.StoredQuote, width int) string {
	rows := make([][]string, 0, len(quotes))
	for _, q := range quotes {
		rows = append(rows, []string{
			strconv.FormatInt(q.ID, 10),
			q.Topic,
			truncate(q.Text, width),
			q.Author,
			q.CreatedAt.Local().Format("2006-01-02 15:04"),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers("ID", "TOPIC", "QUOTE", "AUTHOR", "SAVED").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return t.Render()
}

func truncate(s string, width int) string {
	r := []rune(s)
	if width <= 1 || len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}
