package entity

// AnalysisRequest describes one upload-and-ask request. DatasetPath points at
// the temporary copy of the uploaded file; it is valid only for the duration
// of the request.
type AnalysisRequest struct {
	DatasetPath string
	DatasetName string
	Prompt      string
}

// AnalysisResult is the (text, optional chart) pair returned for every
// request, success or failure.
type AnalysisResult struct {
	Answer    string
	ChartID   string
	ChartPath string
}

// HasChart reports whether the agent produced a chart artifact.
func (r *AnalysisResult) HasChart() bool {
	return r != nil && r.ChartID != ""
}

// AnalysisResponse is the wire form of an analysis result.
type AnalysisResponse struct {
	Answer   string `json:"answer"`
	ChartID  string `json:"chart_id,omitempty"`
	ChartURL string `json:"chart_url,omitempty"`
}

// ResultFormat selects the export document format.
type ResultFormat string

const (
	FormatMarkdown ResultFormat = "markdown"
	FormatPDF      ResultFormat = "pdf"
	FormatDOCX     ResultFormat = "docx"
)

// ExportRequest asks for an analysis answer rendered as a downloadable
// document.
type ExportRequest struct {
	Title   string       `json:"title"`
	Content string       `json:"content"`
	Format  ResultFormat `json:"format"`
}
