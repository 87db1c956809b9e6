package formatter

import (
	"testing"

	"github.com/datasleuth/analyst-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactoryCreate(t *testing.T) {
	factory := NewFactory()

	tests := []struct {
		format  entity.ResultFormat
		ext     string
		content string
	}{
		{entity.FormatMarkdown, ".md", "text/markdown; charset=utf-8"},
		{entity.FormatPDF, ".pdf", "application/pdf"},
		{entity.FormatDOCX, ".docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			f, err := factory.Create(tt.format)
			require.NoError(t, err)
			assert.Equal(t, tt.ext, f.FileExtension())
			assert.Equal(t, tt.content, f.ContentType())
		})
	}
}

func TestFactoryCreateUnsupported(t *testing.T) {
	_, err := NewFactory().Create("xlsx")
	assert.ErrorContains(t, err, "unsupported format")
}

func TestMarkdownFormat(t *testing.T) {
	data, err := NewMarkdownFormatter().Format("Sales analysis", "**Total:** 42")
	require.NoError(t, err)
	assert.Equal(t, "# Sales analysis\n\n**Total:** 42\n", string(data))
}

func TestPDFFormat(t *testing.T) {
	data, err := NewPDFFormatter().Format("Sales analysis", "Total sales are 42.")
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.Equal(t, "%PDF", string(data[:4]))
}
