// Package list provides the scrolling outcome record list.
package list

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/clause/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/clause/internal/core/domain"
)

// RecordList is a navigable list of outcome records, one line each.
type RecordList struct {
	styles   *styles.Styles
	records  []domain.OutcomeRecord
	selected int
	offset   int
	width    int
	height   int
}

// NewRecordList creates an empty list.
func NewRecordList(s *styles.Styles) *RecordList {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &RecordList{styles: s, width: 80, height: 10}
}

// SetRecords replaces the records and resets the cursor.
func (l *RecordList) SetRecords(records []domain.OutcomeRecord) {
	l.records = records
	l.selected = 0
	l.offset = 0
}

// Records returns the listed records.
func (l *RecordList) Records() []domain.OutcomeRecord { return l.records }

// Selected returns the cursor index.
func (l *RecordList) Selected() int { return l.selected }

// SelectedRecord returns the record under the cursor, or nil when empty.
func (l *RecordList) SelectedRecord() *domain.OutcomeRecord {
	if l.selected < 0 || l.selected >= len(l.records) {
		return nil
	}
	return &l.records[l.selected]
}

// MoveUp moves the cursor up one row.
func (l *RecordList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
	if l.selected < l.offset {
		l.offset = l.selected
	}
}

// MoveDown moves the cursor down one row.
func (l *RecordList) MoveDown() {
	if l.selected < len(l.records)-1 {
		l.selected++
	}
	if rows := l.rows(); l.selected >= l.offset+rows {
		l.offset = l.selected - rows + 1
	}
}

// SetDimensions sets the area available to the list.
func (l *RecordList) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}

func (l *RecordList) rows() int {
	if l.height < 1 {
		return 1
	}
	return l.height
}

// View renders the visible rows.
func (l *RecordList) View() string {
	if len(l.records) == 0 {
		return l.styles.Muted.Render("No questions answered yet.")
	}

	end := min(l.offset+l.rows(), len(l.records))
	lines := make([]string, 0, end-l.offset+1)
	for i := l.offset; i < end; i++ {
		lines = append(lines, l.renderRow(i))
	}
	if len(l.records) > l.rows() {
		lines = append(lines, l.styles.Muted.Render(
			fmt.Sprintf("  [%d-%d of %d]", l.offset+1, end, len(l.records))))
	}
	return strings.Join(lines, "\n")
}

func (l *RecordList) renderRow(i int) string {
	r := &l.records[i]

	status := r.Status
	if r.Decision != "" {
		status = string(r.Decision)
	}
	when := r.CreatedAt.Local().Format("01-02 15:04")

	queryWidth := l.width - len(when) - 20
	if queryWidth < 10 {
		queryWidth = 10
	}
	query := clip(r.Query, queryWidth)

	if i == l.selected {
		return l.styles.Selected.Render(fmt.Sprintf("> %s  %-14s %s", when, status, query))
	}
	badge := l.styles.Muted.Render(fmt.Sprintf("%-14s", status))
	if r.Decision != "" {
		badge = l.styles.Decision(r.Decision).Render(status)
	}
	return "  " + l.styles.Muted.Render(when) + "  " + badge + " " + l.styles.Normal.Render(query)
}

// clip shortens s to n runes, marking the cut with an ellipsis.
func clip(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 1 {
		return string(runes[:n])
	}
	return string(runes[:n-1]) + "…"
}
