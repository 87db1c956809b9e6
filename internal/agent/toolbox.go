package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/datasleuth/analyst-backend/internal/chart"
	"github.com/datasleuth/analyst-backend/internal/dataset"
	"github.com/sashabaranov/go-openai"
)

// Tool pairs a function definition with its handler.
type Tool struct {
	Definition openai.FunctionDefinition
	Run        func(ctx context.Context, args json.RawMessage) (string, error)
}

// Toolbox is the closed tool set for one request: every tool is bound to one
// dataset and one chart artifact path.
type Toolbox struct {
	tools  []Tool
	byName map[string]int
}

// NewToolbox builds the dataset tools. chartPath is the per-request artifact
// path render_chart writes to; previewLimit caps preview_rows output.
func NewToolbox(ds *dataset.Dataset, chartPath string, previewLimit int) *Toolbox {
	tb := &Toolbox{byName: make(map[string]int)}

	tb.add(Tool{
		Definition: openai.FunctionDefinition{
			Name:        "dataset_schema",
			Description: "Return the number of rows and the name and inferred type of every column.",
			Parameters: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
		Run: func(_ context.Context, _ json.RawMessage) (string, error) {
			return asJSON(map[string]any{
				"rows":    ds.Rows(),
				"columns": ds.Schema(),
			})
		},
	})

	tb.add(Tool{
		Definition: openai.FunctionDefinition{
			Name:        "preview_rows",
			Description: "Return the first rows of the dataset as a Markdown table.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"limit": map[string]any{
						"type":        "integer",
						"description": fmt.Sprintf("Number of rows to return (max %d).", previewLimit),
					},
				},
			},
		},
		Run: func(_ context.Context, args json.RawMessage) (string, error) {
			var in struct {
				Limit int `json:"limit"`
			}
			if err := parseArgs(args, &in); err != nil {
				return "", err
			}
			if in.Limit <= 0 || in.Limit > previewLimit {
				in.Limit = previewLimit
			}
			return ds.Preview(in.Limit), nil
		},
	})

	tb.add(Tool{
		Definition: openai.FunctionDefinition{
			Name:        "describe_column",
			Description: "Summary statistics (count, mean, std, min, max) for a numeric column.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"column": map[string]any{"type": "string"},
				},
				"required": []string{"column"},
			},
		},
		Run: func(_ context.Context, args json.RawMessage) (string, error) {
			var in struct {
				Column string `json:"column"`
			}
			if err := parseArgs(args, &in); err != nil {
				return "", err
			}
			stats, err := ds.Describe(in.Column)
			if err != nil {
				return "", err
			}
			return asJSON(stats)
		},
	})

	tb.add(Tool{
		Definition: openai.FunctionDefinition{
			Name:        "aggregate",
			Description: "Group the dataset by one column and fold another with an aggregation function.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"group_by": map[string]any{"type": "string"},
					"column":   map[string]any{"type": "string"},
					"fn": map[string]any{
						"type": "string",
						"enum": []string{"sum", "mean", "median", "min", "max", "count", "std"},
					},
				},
				"required": []string{"group_by", "column", "fn"},
			},
		},
		Run: func(_ context.Context, args json.RawMessage) (string, error) {
			var in struct {
				GroupBy string `json:"group_by"`
				Column  string `json:"column"`
				Fn      string `json:"fn"`
			}
			if err := parseArgs(args, &in); err != nil {
				return "", err
			}
			groups, err := ds.Aggregate(in.GroupBy, in.Column, in.Fn)
			if err != nil {
				return "", err
			}
			return asJSON(groups)
		},
	})

	tb.add(Tool{
		Definition: openai.FunctionDefinition{
			Name: "render_chart",
			Description: "Render a chart of an aggregation and save it as the request's PNG artifact. " +
				"Returns the saved file path. Call at most once per request.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"kind": map[string]any{
						"type": "string",
						"enum": []string{"bar", "line", "scatter"},
					},
					"title":    map[string]any{"type": "string"},
					"group_by": map[string]any{"type": "string"},
					"column":   map[string]any{"type": "string"},
					"fn": map[string]any{
						"type": "string",
						"enum": []string{"sum", "mean", "median", "min", "max", "count", "std"},
					},
					"x_label": map[string]any{"type": "string"},
					"y_label": map[string]any{"type": "string"},
				},
				"required": []string{"kind", "column"},
			},
		},
		Run: func(_ context.Context, args json.RawMessage) (string, error) {
			var in struct {
				Kind    string `json:"kind"`
				Title   string `json:"title"`
				GroupBy string `json:"group_by"`
				Column  string `json:"column"`
				Fn      string `json:"fn"`
				XLabel  string `json:"x_label"`
				YLabel  string `json:"y_label"`
			}
			if err := parseArgs(args, &in); err != nil {
				return "", err
			}

			spec := chart.Spec{
				Kind:   chart.Kind(in.Kind),
				Title:  in.Title,
				XLabel: in.XLabel,
				YLabel: in.YLabel,
			}

			if in.GroupBy != "" {
				if in.Fn == "" {
					in.Fn = "sum"
				}
				groups, err := ds.Aggregate(in.GroupBy, in.Column, in.Fn)
				if err != nil {
					return "", err
				}
				for _, g := range groups {
					spec.Labels = append(spec.Labels, g.Group)
					spec.Values = append(spec.Values, g.Value)
				}
			} else {
				values, err := ds.NumericColumn(in.Column)
				if err != nil {
					return "", err
				}
				spec.Values = values
				labels, err := ds.StringColumn(in.Column)
				if err == nil {
					spec.Labels = labels
				}
			}

			if err := chart.Render(spec, chartPath); err != nil {
				return "", err
			}
			return fmt.Sprintf("chart saved to %s", chartPath), nil
		},
	})

	return tb
}

// Definitions returns the tool list in the chat API's wire form.
func (tb *Toolbox) Definitions() []openai.Tool {
	defs := make([]openai.Tool, len(tb.tools))
	for i := range tb.tools {
		defs[i] = openai.Tool{
			Type:     openai.ToolTypeFunction,
			Function: &tb.tools[i].Definition,
		}
	}
	return defs
}

// Invoke dispatches one tool call by name.
func (tb *Toolbox) Invoke(ctx context.Context, name, rawArgs string) (string, error) {
	i, ok := tb.byName[name]
	if !ok {
		return "", fmt.Errorf("unknown tool %q", name)
	}
	return tb.tools[i].Run(ctx, json.RawMessage(rawArgs))
}

func (tb *Toolbox) add(t Tool) {
	tb.byName[t.Definition.Name] = len(tb.tools)
	tb.tools = append(tb.tools, t)
}

func parseArgs(raw json.RawMessage, out any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("invalid tool arguments: %w", err)
	}
	return nil
}

func asJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode tool result: %w", err)
	}
	return string(b), nil
}
