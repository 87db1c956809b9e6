package agent

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/datasleuth/analyst-backend/internal/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestToolbox(t *testing.T) (*Toolbox, string) {
	t.Helper()

	csvPath := filepath.Join(t.TempDir(), "sales.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("category,sales\nwidgets,10\ngadgets,20\nwidgets,12\n"), 0o644))

	ds, err := dataset.Load(csvPath, "sales.csv")
	require.NoError(t, err)

	chartPath := filepath.Join(t.TempDir(), "chart.png")
	return NewToolbox(ds, chartPath, 10), chartPath
}

func TestToolboxDefinitions(t *testing.T) {
	tb, _ := newTestToolbox(t)

	defs := tb.Definitions()
	names := make([]string, len(defs))
	for i, d := range defs {
		names[i] = d.Function.Name
	}
	assert.ElementsMatch(t, []string{"dataset_schema", "preview_rows", "describe_column", "aggregate", "render_chart"}, names)
}

func TestDatasetSchemaTool(t *testing.T) {
	tb, _ := newTestToolbox(t)

	out, err := tb.Invoke(context.Background(), "dataset_schema", "")
	require.NoError(t, err)

	var got struct {
		Rows    int                  `json:"rows"`
		Columns []dataset.ColumnInfo `json:"columns"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 3, got.Rows)
	require.Len(t, got.Columns, 2)
	assert.Equal(t, "category", got.Columns[0].Name)
}

func TestPreviewRowsTool(t *testing.T) {
	tb, _ := newTestToolbox(t)

	out, err := tb.Invoke(context.Background(), "preview_rows", `{"limit": 1}`)
	require.NoError(t, err)
	assert.Contains(t, out, "| widgets | 10 |")
	assert.NotContains(t, out, "gadgets")
}

func TestDescribeColumnTool(t *testing.T) {
	tb, _ := newTestToolbox(t)

	out, err := tb.Invoke(context.Background(), "describe_column", `{"column": "sales"}`)
	require.NoError(t, err)

	var stats dataset.ColumnStats
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, 3, stats.Count)
	assert.InDelta(t, 14.0, stats.Mean, 1e-9)
}

func TestAggregateTool(t *testing.T) {
	tb, _ := newTestToolbox(t)

	out, err := tb.Invoke(context.Background(), "aggregate", `{"group_by": "category", "column": "sales", "fn": "sum"}`)
	require.NoError(t, err)

	var groups []dataset.GroupValue
	require.NoError(t, json.Unmarshal([]byte(out), &groups))
	assert.Len(t, groups, 2)
}

func TestRenderChartTool(t *testing.T) {
	tb, chartPath := newTestToolbox(t)

	out, err := tb.Invoke(context.Background(), "render_chart",
		`{"kind": "bar", "title": "Sales by category", "group_by": "category", "column": "sales", "fn": "sum"}`)
	require.NoError(t, err)
	assert.Contains(t, out, chartPath)

	info, err := os.Stat(chartPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestRenderChartToolRawColumn(t *testing.T) {
	tb, chartPath := newTestToolbox(t)

	_, err := tb.Invoke(context.Background(), "render_chart", `{"kind": "line", "column": "sales"}`)
	require.NoError(t, err)

	_, err = os.Stat(chartPath)
	require.NoError(t, err)
}

func TestInvokeUnknownTool(t *testing.T) {
	tb, _ := newTestToolbox(t)

	_, err := tb.Invoke(context.Background(), "drop_table", "{}")
	assert.ErrorContains(t, err, "unknown tool")
}

func TestInvokeBadArguments(t *testing.T) {
	tb, _ := newTestToolbox(t)

	_, err := tb.Invoke(context.Background(), "aggregate", `{"group_by": 42}`)
	assert.ErrorContains(t, err, "invalid tool arguments")
}
