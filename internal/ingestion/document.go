package ingestion

import (
	"bytes"
	"fmt"
	"html"
	"mime"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"

	"github.com/jonathan/cv-analyzer/internal/types"
)

// Content types accepted by ExtractDocument.
const (
	ContentTypePDF   = "application/pdf"
	ContentTypeDOCX  = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	ContentTypePlain = "text/plain"
)

// pdfInfoKeys are the document-information entries copied into Document.Metadata.
var pdfInfoKeys = []struct {
	pdfKey string
	name   string
}{
	{"Author", "author"},
	{"Title", "title"},
	{"Subject", "subject"},
	{"Creator", "creator"},
}

// Document is the text extracted from an uploaded file plus a few facts about it.
type Document struct {
	Text          string
	NumPages      int
	NumCharacters int
	Metadata      map[string]string
}

// Info describes the document for the report's cv_info section.
func (d *Document) Info(filename string, sizeBytes int) *types.DocumentInfo {
	return &types.DocumentInfo{
		Filename:      filename,
		SizeBytes:     sizeBytes,
		NumPages:      d.NumPages,
		NumCharacters: d.NumCharacters,
		Metadata:      d.Metadata,
	}
}

// UnsupportedTypeError is returned when no extractor handles the content type.
type UnsupportedTypeError struct {
	ContentType string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported document type: %q", e.ContentType)
}

// ExtractionError is returned when a supported document cannot be read.
type ExtractionError struct {
	Name        string
	ContentType string
	Cause       error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to extract text from %s (%s): %v", e.Name, e.ContentType, e.Cause)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// DetectContentType resolves the content type of an upload, preferring the
// declared type and falling back to the file extension.
func DetectContentType(name, declared string) string {
	if declared != "" {
		if mediaType, _, err := mime.ParseMediaType(declared); err == nil && mediaType != "application/octet-stream" {
			return mediaType
		}
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return ContentTypePDF
	case ".docx":
		return ContentTypeDOCX
	case ".txt", ".md", "":
		return ContentTypePlain
	}
	return declared
}

// ExtractDocument converts a PDF, DOCX or plain-text upload into text.
func ExtractDocument(name, contentType string, data []byte) (*Document, error) {
	ct := DetectContentType(name, contentType)

	var (
		doc *Document
		err error
	)
	switch ct {
	case ContentTypePDF:
		doc, err = extractPDF(data)
	case ContentTypeDOCX:
		doc, err = extractDOCX(data)
	case ContentTypePlain:
		if !utf8.Valid(data) {
			err = fmt.Errorf("text is not valid UTF-8")
		} else {
			doc = &Document{Text: string(data), NumPages: 1}
		}
	default:
		return nil, &UnsupportedTypeError{ContentType: ct}
	}
	if err != nil {
		return nil, &ExtractionError{Name: name, ContentType: ct, Cause: err}
	}

	doc.NumCharacters = utf8.RuneCountInString(doc.Text)
	if doc.Metadata == nil {
		doc.Metadata = map[string]string{}
	}
	return doc, nil
}

// extractPDF keeps only pages with visible text and joins them with a blank line.
func extractPDF(data []byte) (doc *Document, err error) {
	// The pdf reader panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to read pdf: %w", err)
	}

	numPages := reader.NumPage()
	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to read page %d: %w", i, err)
		}
		if strings.TrimSpace(text) != "" {
			pages = append(pages, text)
		}
	}

	return &Document{
		Text:     strings.Join(pages, "\n\n"),
		NumPages: numPages,
		Metadata: pdfMetadata(reader),
	}, nil
}

func pdfMetadata(reader *pdf.Reader) map[string]string {
	meta := map[string]string{}
	info := reader.Trailer().Key("Info")
	if info.IsNull() {
		return meta
	}
	for _, k := range pdfInfoKeys {
		meta[k.name] = info.Key(k.pdfKey).Text()
	}
	return meta
}

var (
	docxParagraphEnd = regexp.MustCompile(`</w:p>|<w:br/>|<w:cr/>`)
	docxTab          = regexp.MustCompile(`<w:tab/>`)
	xmlTag           = regexp.MustCompile(`<[^>]+>`)
)

func extractDOCX(data []byte) (*Document, error) {
	r, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse docx: %w", err)
	}
	defer func() { _ = r.Close() }()

	return &Document{
		Text:     docxText(r.Editable().GetContent()),
		NumPages: 1,
	}, nil
}

// docxText turns WordprocessingML into plain text, one paragraph per line.
func docxText(content string) string {
	content = docxParagraphEnd.ReplaceAllString(content, "\n")
	content = docxTab.ReplaceAllString(content, "\t")
	content = xmlTag.ReplaceAllString(content, "")
	return strings.TrimSpace(html.UnescapeString(content))
}
