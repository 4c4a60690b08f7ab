package extractor

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"github.com/SAP-F-2025/flashcard-service/internal/models"
)

const docxBodyPart = "word/document.xml"

// extractDOCX returns the text of every w:p paragraph of the main document
// part, one paragraph per line.
func (e *Extractor) extractDOCX(ctx context.Context, data []byte) (string, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", newExtractionError(models.FormatDOCX, "not a zip archive", err)
	}

	var body *zip.File
	for _, f := range archive.File {
		if f.Name == docxBodyPart {
			body = f
			break
		}
	}
	if body == nil {
		return "", newExtractionError(models.FormatDOCX, "missing "+docxBodyPart, ErrMalformed)
	}

	rc, err := body.Open()
	if err != nil {
		return "", newExtractionError(models.FormatDOCX, "cannot open "+docxBodyPart, err)
	}
	defer rc.Close()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	paragraphs, err := readParagraphs(rc)
	if err != nil {
		return "", newExtractionError(models.FormatDOCX, "cannot parse "+docxBodyPart, err)
	}
	return strings.Join(paragraphs, "\n"), nil
}

func readParagraphs(r io.Reader) ([]string, error) {
	decoder := xml.NewDecoder(r)

	var (
		paragraphs []string
		current    strings.Builder
		inPara     int
		inText     bool
	)

	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				if inPara == 0 {
					current.Reset()
				}
				inPara++
			case "t":
				inText = true
			case "tab":
				current.WriteByte('\t')
			case "br", "cr":
				current.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p":
				inPara--
				if inPara == 0 {
					paragraphs = append(paragraphs, current.String())
				}
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText && inPara > 0 {
				current.Write(t)
			}
		}
	}
	return paragraphs, nil
}
