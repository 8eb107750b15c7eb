// Package validation checks uploaded workbook payloads before they reach
// the parser or the store.
package validation

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"strings"

	"opsdiary/internal/errors"
)

// xlsx files are ZIP containers; the payload must start with the ZIP local
// file header magic.
var zipMagic = []byte{0x50, 0x4b, 0x03, 0x04}

var allowedExtensions = map[string]bool{
	".xlsx": true,
	".xlsm": true,
}

// UploadValidator validates incoming workbook uploads.
type UploadValidator struct {
	logger      *slog.Logger
	maxFileSize int64
}

// NewUploadValidator creates an upload validator.
func NewUploadValidator(logger *slog.Logger, maxFileSize int64) *UploadValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &UploadValidator{
		logger:      logger.With(slog.String("component", "upload_validator")),
		maxFileSize: maxFileSize,
	}
}

// ValidateWorkbook checks a named upload's size, extension and container
// signature. The field name only decorates errors and logs.
func (v *UploadValidator) ValidateWorkbook(field, filename string, data []byte) error {
	if len(data) == 0 {
		return errors.NewValidationError("empty upload", nil).WithContext("field", field)
	}
	if v.maxFileSize > 0 && int64(len(data)) > v.maxFileSize {
		v.logger.Warn("upload exceeds size limit",
			slog.String("field", field),
			slog.Int("size", len(data)),
			slog.Int64("limit", v.maxFileSize))
		return errors.NewValidationError("upload exceeds size limit", nil).
			WithContext("field", field).
			WithContext("size", len(data)).
			WithContext("limit", v.maxFileSize)
	}
	if filename != "" {
		ext := strings.ToLower(filepath.Ext(filename))
		if !allowedExtensions[ext] {
			return errors.NewValidationError("unsupported file extension", nil).
				WithContext("field", field).
				WithContext("extension", ext)
		}
	}
	if !bytes.HasPrefix(data, zipMagic) {
		return errors.NewValidationError("not a valid xlsx workbook", nil).
			WithContext("field", field)
	}
	return nil
}
