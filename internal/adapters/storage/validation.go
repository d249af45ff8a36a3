package storage

import (
	"io"
	"path"
	"strings"
)

// DefaultContentType is used for extensions outside the content type table.
const DefaultContentType = "application/octet-stream"

var contentTypes = map[string]string{
	".pdf":  "application/pdf",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".txt":  "text/plain",
}

// ContentTypeFor classifies a logical file name by its extension.
func ContentTypeFor(name string) string {
	if ct, ok := contentTypes[strings.ToLower(path.Ext(name))]; ok {
		return ct
	}
	return DefaultContentType
}

// checkUpload validates the upload preconditions.
func checkUpload(reader io.Reader, size int64, name string, maxSize int64) error {
	if reader == nil || size <= 0 {
		return ErrEmptyFile
	}
	if strings.TrimSpace(name) == "" {
		return ErrMissingName
	}
	if maxSize > 0 && size > maxSize {
		return ErrFileTooLarge
	}
	return nil
}
