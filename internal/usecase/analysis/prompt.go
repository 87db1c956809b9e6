package analysis

import (
	"fmt"
	"strings"

	"github.com/datasleuth/analyst-backend/internal/dataset"
)

// buildInstruction wraps the raw user question with the fixed directives that
// make the agent's chart handling and answer formatting reliable.
func buildInstruction(prompt string, ds *dataset.Dataset) string {
	var cols []string
	for _, c := range ds.Schema() {
		cols = append(cols, fmt.Sprintf("%s (%s)", c.Name, c.Type))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "User Question: %s\n\n", prompt)
	fmt.Fprintf(&b, "The dataset %q has %d rows with columns: %s.\n\n", ds.Name(), ds.Rows(), strings.Join(cols, ", "))
	b.WriteString(`Instructions:
- First, analyze the dataset with the available tools to answer the user's question.
- If you generate a plot or visualization, you MUST create it with the render_chart tool.
- In your final answer, explicitly describe any visualization you created (e.g. "I have created a bar chart that shows the total sales for each product category.").
- Also, mention that the chart has been saved.
- Use Markdown formatting for all text in your output, including headings, bullet points, code blocks (if any), and emphasis for clarity.`)
	return b.String()
}
