// Package export writes the task list in portable formats.
package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/colonyops/taskboard/internal/core/task"
)

// Format is an export file format.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatPDF  Format = "pdf"
)

// Formats returns the supported formats.
func Formats() []Format {
	return []Format{FormatJSON, FormatCSV, FormatPDF}
}

// ParseFormat resolves a case-insensitive format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats() {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// Lister supplies the tasks to export.
type Lister interface {
	List(ctx context.Context) ([]task.Task, error)
}

// Exporter renders every task from a Lister.
type Exporter struct {
	tasks Lister
	now   func() time.Time
}

func NewExporter(tasks Lister) *Exporter {
	return &Exporter{tasks: tasks, now: time.Now}
}

// Export writes all tasks to w in the given format, in listing order.
func (e *Exporter) Export(ctx context.Context, w io.Writer, format Format) error {
	all, err := e.tasks.List(ctx)
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}

	switch format {
	case FormatJSON:
		return writeJSON(w, all)
	case FormatCSV:
		return writeCSV(w, all)
	case FormatPDF:
		return writePDF(w, all, e.now())
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

var csvHeader = []string{"id", "description", "priority", "progress", "completed"}

func writeJSON(w io.Writer, tasks []task.Task) error {
	if tasks == nil {
		tasks = []task.Task{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(tasks)
}

func writeCSV(w io.Writer, tasks []task.Task) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, t := range tasks {
		record := []string{
			strconv.FormatInt(t.ID, 10),
			t.Description,
			string(t.Priority),
			strconv.Itoa(t.Progress),
			strconv.FormatBool(t.Completed),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writePDF(w io.Writer, tasks []task.Task, now time.Time) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(40, 10, "Task Report")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 9)
	pdf.Cell(40, 6, fmt.Sprintf("Generated %s, %d tasks", now.Format("2006-01-02 15:04"), len(tasks)))
	pdf.Ln(10)

	widths := []float64{12, 98, 30, 22, 28}
	headers := []string{"ID", "Description", "Priority", "Progress", "Completed"}

	pdf.SetFont("Arial", "B", 10)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, t := range tasks {
		done := "no"
		if t.Completed {
			done = "yes"
		}
		cells := []string{
			strconv.FormatInt(t.ID, 10),
			truncate(t.Description, 60),
			task.TitleCase(string(t.Priority)),
			strconv.Itoa(t.Progress) + "%",
			done,
		}
		for i, c := range cells {
			pdf.CellFormat(widths[i], 6, tr(c), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	return pdf.Output(w)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
