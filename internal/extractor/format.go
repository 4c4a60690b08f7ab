package extractor

import (
	"mime"
	"path/filepath"
	"strings"

	"github.com/SAP-F-2025/flashcard-service/internal/models"
)

const (
	MIMEPDF  = "application/pdf"
	MIMEDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMEText = "text/plain"
)

var extensionFormats = map[string]models.SourceFormat{
	".pdf":  models.FormatPDF,
	".docx": models.FormatDOCX,
	".txt":  models.FormatTXT,
	".text": models.FormatTXT,
	".md":   models.FormatTXT,
}

var mimeFormats = map[string]models.SourceFormat{
	MIMEPDF:  models.FormatPDF,
	MIMEDOCX: models.FormatDOCX,
	MIMEText: models.FormatTXT,
}

// ResolveFormat picks the source format from the file extension, falling
// back to the MIME type. Parameters such as charset are ignored.
func ResolveFormat(fileName, contentType string) (models.SourceFormat, error) {
	if f, ok := extensionFormats[strings.ToLower(filepath.Ext(fileName))]; ok {
		return f, nil
	}
	if contentType != "" {
		mediaType, _, err := mime.ParseMediaType(contentType)
		if err == nil {
			if f, ok := mimeFormats[strings.ToLower(mediaType)]; ok {
				return f, nil
			}
		}
	}
	return "", newExtractionError("", "cannot resolve format of "+quoteName(fileName), ErrUnsupportedFormat)
}

func quoteName(name string) string {
	if name == "" {
		return "upload"
	}
	return "\"" + filepath.Base(name) + "\""
}
