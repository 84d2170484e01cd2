package resume

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

const (
	MimePlain = "text/plain"
	MimePDF   = "application/pdf"
	MimeDocx  = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9\s]`)

// ExtractText returns the plain text of a resume file.
func ExtractText(mime string, data []byte) (string, error) {
	switch mime {
	case MimePlain:
		return strings.TrimSpace(string(data)), nil
	case MimePDF:
		return extractPDFText(bytes.NewReader(data))
	case MimeDocx:
		return extractDocxText(data)
	default:
		return "", fmt.Errorf("unsupported file type: %s", mime)
	}
}

// DetectMime resolves a supported mime type from the upload's filename,
// falling back to the declared content type.
func DetectMime(filename, declared string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return MimePDF
	case ".docx":
		return MimeDocx
	case ".txt":
		return MimePlain
	}
	if i := strings.Index(declared, ";"); i >= 0 {
		declared = declared[:i]
	}
	return strings.TrimSpace(declared)
}

// Preprocess drops everything but letters, digits and whitespace and lowercases
// the result.
func Preprocess(text string) string {
	return strings.ToLower(nonAlphanumeric.ReplaceAllString(text, ""))
}

func extractPDFText(reader *bytes.Reader) (string, error) {
	pdfReader, err := pdf.NewReader(reader, int64(reader.Len()))
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}
	var textBuilder strings.Builder
	numPages := pdfReader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := pdfReader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("failed to read pdf page %d: %w", i, err)
		}
		// text objects each start on a new line; drop the page's leading one
		textBuilder.WriteString(strings.TrimSpace(text))
		textBuilder.WriteString("\n")
	}
	return strings.TrimSpace(textBuilder.String()), nil
}

func extractDocxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	return stripXMLTags(doc.Editable().GetContent()), nil
}

var xmlTag = regexp.MustCompile(`<[^>]+>`)

// docx content comes back as document.xml; keep only the text runs.
func stripXMLTags(content string) string {
	text := xmlTag.ReplaceAllString(content, " ")
	return strings.Join(strings.Fields(text), " ")
}

// ReadAll is a small helper for multipart uploads.
func ReadAll(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("file exceeds %d bytes", limit)
	}
	return data, nil
}
