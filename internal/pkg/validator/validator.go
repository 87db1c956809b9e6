package validator

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/datasleuth/analyst-backend/internal/config"
	"github.com/datasleuth/analyst-backend/internal/entity"
)

var AllowedExtensions = map[string]bool{
	".csv": true,
}

// Validator validates analysis requests and file uploads
type Validator struct {
	cfg config.FileUploadConfig
}

func NewFileValidator(cfg config.FileUploadConfig) *Validator {
	return &Validator{cfg: cfg}
}

// ValidateDatasetFile validates an uploaded dataset file (CSV only)
func (v *Validator) ValidateDatasetFile(file *multipart.FileHeader) error {
	if file == nil {
		return entity.ErrDatasetRequired
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !AllowedExtensions[ext] {
		return fmt.Errorf("%w: %q (only .csv files are allowed)", entity.ErrInvalidExtension, ext)
	}

	if file.Size > v.cfg.MaxFileSize {
		return fmt.Errorf("%w: file '%s' is %d bytes (max %d)", entity.ErrFileTooLarge, file.Filename, file.Size, v.cfg.MaxFileSize)
	}

	return nil
}

// ValidateExport validates a report export request
func (v *Validator) ValidateExport(req *entity.ExportRequest) error {
	if strings.TrimSpace(req.Content) == "" {
		return fmt.Errorf("%w: content", entity.ErrMissingField)
	}

	switch req.Format {
	case entity.FormatMarkdown, entity.FormatPDF, entity.FormatDOCX:
		return nil
	case "":
		return fmt.Errorf("%w: format", entity.ErrMissingField)
	default:
		return fmt.Errorf("%w: format %q", entity.ErrInvalidParameter, req.Format)
	}
}
