package utils

import (
	"encoding/csv"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
)

func ValidateCSVFile(file *multipart.FileHeader, maxSize int64) error {
	allowedTypes := map[string]bool{
		"text/csv":                 true,
		"application/csv":          true,
		"application/vnd.ms-excel": true,
		"text/plain":               true,
		"application/octet-stream": true,
	}

	if !strings.EqualFold(filepath.Ext(file.Filename), ".csv") {
		return fmt.Errorf("file must have a .csv extension: %s", file.Filename)
	}

	contentType := file.Header.Get("Content-Type")
	if contentType != "" && !allowedTypes[contentType] {
		return fmt.Errorf("file type not allowed: %s", contentType)
	}

	if maxSize > 0 && file.Size > maxSize {
		return fmt.Errorf("file too large: %d bytes (max %d)", file.Size, maxSize)
	}

	return nil
}

// ReadCSVUpload reads every record of an uploaded CSV. When skipHeader is set
// the first record is dropped.
func ReadCSVUpload(file *multipart.FileHeader, skipHeader bool) ([][]string, error) {
	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	return ReadCSV(src, skipHeader)
}

func ReadCSV(r io.Reader, skipHeader bool) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if skipHeader && len(rows) > 0 {
		rows = rows[1:]
	}
	return rows, nil
}
