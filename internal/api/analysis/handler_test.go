package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/datasleuth/analyst-backend/internal/config"
	"github.com/datasleuth/analyst-backend/internal/entity"
	"github.com/datasleuth/analyst-backend/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubUsecase mimics the usecase's validation order and returns a canned
// result for valid requests.
type stubUsecase struct {
	result *entity.AnalysisResult
	err    error
	gotReq *entity.AnalysisRequest
	apiKey string
}

func (s *stubUsecase) Analyze(_ context.Context, req *entity.AnalysisRequest) (*entity.AnalysisResult, error) {
	s.gotReq = req
	if req.DatasetPath == "" {
		return nil, entity.ErrDatasetRequired
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, entity.ErrPromptRequired
	}
	if s.apiKey == "" {
		return nil, entity.ErrAPIKeyMissing
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type stubResolver map[string]string

func (s stubResolver) Resolve(id string) (string, bool) {
	path, ok := s[id]
	return path, ok
}

func newTestRouter(uc AnalysisUsecase, artifacts ArtifactResolver) http.Handler {
	cfg := config.FileUploadConfig{MaxFileSize: 1 << 20, MaxUploadSize: 2 << 20}
	h := NewHandler(uc, artifacts, validator.NewFileValidator(cfg), cfg)
	r := chi.NewRouter()
	RegisterRoutes(r, h)
	return r
}

func multipartBody(t *testing.T, filename, fileContent, prompt string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	if filename != "" {
		fw, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(fileContent))
		require.NoError(t, err)
	}
	require.NoError(t, w.WriteField("prompt", prompt))
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func doAnalysis(t *testing.T, router http.Handler, filename, fileContent, prompt string) *httptest.ResponseRecorder {
	t.Helper()

	body, contentType := multipartBody(t, filename, fileContent, prompt)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analysis", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error
}

func TestAnalyzeMissingFile(t *testing.T) {
	uc := &stubUsecase{apiKey: "sk-test"}
	router := newTestRouter(uc, stubResolver{})

	rec := doAnalysis(t, router, "", "", "What is the total sales?")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Error: Please upload a CSV file first.", errorBody(t, rec))
}

func TestAnalyzeMissingPrompt(t *testing.T) {
	uc := &stubUsecase{apiKey: "sk-test"}
	router := newTestRouter(uc, stubResolver{})

	rec := doAnalysis(t, router, "sales.csv", "category,sales\nwidgets,10\n", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Error: Please enter a question or instruction.", errorBody(t, rec))
}

func TestAnalyzeMissingAPIKey(t *testing.T) {
	uc := &stubUsecase{}
	router := newTestRouter(uc, stubResolver{})

	rec := doAnalysis(t, router, "sales.csv", "category,sales\nwidgets,10\n", "total?")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, errorBody(t, rec), "Error: OPENAI_API_KEY not found")
}

func TestAnalyzeRejectsNonCSV(t *testing.T) {
	uc := &stubUsecase{apiKey: "sk-test"}
	router := newTestRouter(uc, stubResolver{})

	rec := doAnalysis(t, router, "notes.txt", "hello", "total?")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorBody(t, rec), "only .csv files are allowed")
	assert.Nil(t, uc.gotReq, "usecase must not run for invalid uploads")
}

func TestAnalyzeExecutionError(t *testing.T) {
	uc := &stubUsecase{apiKey: "sk-test", err: errors.New("model exploded")}
	router := newTestRouter(uc, stubResolver{})

	rec := doAnalysis(t, router, "sales.csv", "category,sales\nwidgets,10\n", "total?")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, errorBody(t, rec), "An unexpected error occurred: model exploded")
}

func TestAnalyzeSuccess(t *testing.T) {
	uc := &stubUsecase{
		apiKey: "sk-test",
		result: &entity.AnalysisResult{
			Answer:    "**Total sales:** 42",
			ChartID:   "abc",
			ChartPath: "/tmp/abc.png",
		},
	}
	router := newTestRouter(uc, stubResolver{})

	rec := doAnalysis(t, router, "sales.csv", "category,sales\nwidgets,10\ngadgets,20\nwidgets,12\n", "What is the total sales?")

	require.Equal(t, http.StatusOK, rec.Code)

	var resp entity.AnalysisResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "**Total sales:** 42", resp.Answer)
	assert.Equal(t, "abc", resp.ChartID)
	assert.Equal(t, "/artifacts/abc", resp.ChartURL)

	// The upload is copied to a temp path and cleaned up after the request.
	require.NotNil(t, uc.gotReq)
	assert.Equal(t, "sales.csv", uc.gotReq.DatasetName)
	_, err := os.Stat(uc.gotReq.DatasetPath)
	assert.True(t, os.IsNotExist(err))
}

func TestAnalyzeSuccessWithoutChart(t *testing.T) {
	uc := &stubUsecase{
		apiKey: "sk-test",
		result: &entity.AnalysisResult{Answer: "plain answer"},
	}
	router := newTestRouter(uc, stubResolver{})

	rec := doAnalysis(t, router, "sales.csv", "category,sales\nwidgets,10\n", "total?")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "chart_url")
}

func TestServeArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "abc.png")
	require.NoError(t, os.WriteFile(path, []byte("png-bytes"), 0o644))

	router := newTestRouter(&stubUsecase{}, stubResolver{"abc": path})

	req := httptest.NewRequest(http.MethodGet, "/artifacts/abc", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "png-bytes", rec.Body.String())
}

func TestServeArtifactNotFound(t *testing.T) {
	router := newTestRouter(&stubUsecase{}, stubResolver{})

	req := httptest.NewRequest(http.MethodGet, "/artifacts/unknown", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportReportMarkdown(t *testing.T) {
	router := newTestRouter(&stubUsecase{}, stubResolver{})

	body, err := json.Marshal(entity.ExportRequest{
		Title:   "Sales analysis",
		Content: "**Total sales:** 42",
		Format:  entity.FormatMarkdown,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/report/export", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/markdown; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "analysis-report.md")
	assert.Contains(t, rec.Body.String(), "# Sales analysis")
	assert.Contains(t, rec.Body.String(), "**Total sales:** 42")
}

func TestExportReportInvalidFormat(t *testing.T) {
	router := newTestRouter(&stubUsecase{}, stubResolver{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/report/export",
		strings.NewReader(`{"content": "text", "format": "xlsx"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
