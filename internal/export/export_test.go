package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/taskboard/internal/core/task"
)

type staticLister struct {
	tasks []task.Task
	err   error
}

func (l staticLister) List(context.Context) ([]task.Task, error) {
	return l.tasks, l.err
}

func sampleTasks() []task.Task {
	return []task.Task{
		{ID: 2, Description: "Buy milk", Priority: task.PriorityMedium, Progress: 0},
		{ID: 1, Description: "Write, \"quoted\" report", Priority: task.PriorityVeryHigh, Progress: 100, Completed: true},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "json", want: FormatJSON},
		{in: "CSV", want: FormatCSV},
		{in: " pdf ", want: FormatPDF},
		{in: "xml", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExport_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewExporter(staticLister{tasks: sampleTasks()}).Export(context.Background(), &buf, FormatJSON))

	var got []task.Task
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, sampleTasks(), got)
}

func TestExport_JSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewExporter(staticLister{}).Export(context.Background(), &buf, FormatJSON))
	assert.JSONEq(t, "[]", buf.String())
}

func TestExport_CSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewExporter(staticLister{tasks: sampleTasks()}).Export(context.Background(), &buf, FormatCSV))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, []string{"2", "Buy milk", "MEDIUM", "0", "false"}, records[1])
	assert.Equal(t, []string{"1", "Write, \"quoted\" report", "VERY_HIGH", "100", "true"}, records[2])
}

func TestExport_PDF(t *testing.T) {
	e := NewExporter(staticLister{tasks: sampleTasks()})
	e.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 0, 0, time.UTC) }

	var buf bytes.Buffer
	require.NoError(t, e.Export(context.Background(), &buf, FormatPDF))

	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")), "output is a PDF document")
	assert.Greater(t, buf.Len(), 500)
}

func TestExport_Errors(t *testing.T) {
	t.Run("list failure", func(t *testing.T) {
		boom := errors.New("boom")
		err := NewExporter(staticLister{err: boom}).Export(context.Background(), &bytes.Buffer{}, FormatJSON)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("unknown format", func(t *testing.T) {
		err := NewExporter(staticLister{}).Export(context.Background(), &bytes.Buffer{}, Format("xml"))
		assert.ErrorContains(t, err, "unknown export format")
	})
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}
