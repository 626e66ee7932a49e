package cli

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/m-mizutani/actions/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

// styleFunc styles one body cell of a tab table.
type styleFunc func(col int, value string) lipgloss.Style

type outputTable struct {
	header []string
	rows   [][]string
	style  styleFunc
}

func newTable(header ...string) *outputTable {
	return &outputTable{header: header}
}

func (t *outputTable) withStyle(style styleFunc) *outputTable {
	t.style = style
	return t
}

func (t *outputTable) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *outputTable) render(w io.Writer, format string) error {
	if format == model.FormatCSV {
		return t.renderCSV(w)
	}
	return t.renderTab(w)
}

func (t *outputTable) renderCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.header); err != nil {
		return goerr.Wrap(err, "failed to write csv header")
	}
	if err := cw.WriteAll(t.rows); err != nil {
		return goerr.Wrap(err, "failed to write csv rows")
	}
	return nil
}

func (t *outputTable) renderTab(w io.Writer) error {
	cell := lipgloss.NewStyle().PaddingRight(2)

	tbl := table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		BorderColumn(false).
		Headers(t.header...).
		Rows(t.rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return cell.Bold(true)
			}
			if t.style == nil || row < 0 || row >= len(t.rows) || col >= len(t.rows[row]) {
				return cell
			}
			return cell.Inherit(t.style(col, t.rows[row][col]))
		})

	if _, err := fmt.Fprintln(w, strings.TrimRight(tbl.Render(), "\n")); err != nil {
		return goerr.Wrap(err, "failed to write table")
	}
	return nil
}

var (
	plainStyle   = lipgloss.NewStyle()
	nameStyle    = lipgloss.NewStyle().Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failureStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	dimStyle     = lipgloss.NewStyle().Faint(true)
)

// boldFirst bolds the name column.
func boldFirst(col int, _ string) lipgloss.Style {
	if col == 0 {
		return nameStyle
	}
	return plainStyle
}

func conclusionStyle(conclusion string) lipgloss.Style {
	switch model.WorkflowConclusion(conclusion) {
	case model.WorkflowConclusionSuccess:
		return successStyle
	case model.WorkflowConclusionFailure, model.WorkflowConclusionTimedOut:
		return failureStyle
	case model.WorkflowConclusionCancelled:
		return warnStyle
	default:
		return dimStyle
	}
}

func formatDuration(d time.Duration) string {
	return d.Round(time.Second).String()
}

func formatOptionalDuration(d *time.Duration) string {
	if d == nil {
		return "-"
	}
	return formatDuration(*d)
}
