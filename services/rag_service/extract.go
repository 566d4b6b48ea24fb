package rag_service

import (
	"bytes"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"code.sajari.com/docconv/v2"
	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"
	"github.com/serisow/ragone/ragtype"
)

var mimeTypes = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".html": "text/html",
	".htm":  "text/html",
}

// SupportedExtension reports whether the upload extension is one the
// extractor can handle.
func SupportedExtension(filename string) bool {
	_, ok := mimeTypes[strings.ToLower(filepath.Ext(filename))]
	return ok
}

func MimeType(filename string) string {
	if mime, ok := mimeTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return mime
	}
	return "application/octet-stream"
}

type DocumentExtractor struct {
	logger *slog.Logger
}

func NewDocumentExtractor(logger *slog.Logger) *DocumentExtractor {
	return &DocumentExtractor{
		logger: logger,
	}
}

// ExtractText dispatches on the filename extension. An unsupported extension
// is a validation failure, not an extraction failure: callers are expected to
// have checked, and the extractor re-validates the same way.
func (e *DocumentExtractor) ExtractText(filename string, data []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return e.ExtractTextFromPDF(data)
	case ".doc", ".docx":
		return e.ExtractTextFromWord(data)
	case ".html", ".htm":
		return e.ExtractTextFromHTML(data)
	default:
		return "", &ragtype.ValidationError{
			Message: fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)),
		}
	}
}

func (e *DocumentExtractor) ExtractTextFromPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		e.logger.Error("Failed to create PDF reader",
			slog.String("error", err.Error()),
			slog.Int("data_size", len(data)))
		return "", fmt.Errorf("failed to create PDF reader: %v", err)
	}

	totalPage := reader.NumPage()
	e.logger.Debug("Starting PDF text extraction",
		slog.Int("total_pages", totalPage))

	var fullText strings.Builder
	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			e.logger.Warn("Null page encountered",
				slog.Int("page_number", pageIndex))
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			e.logger.Error("Failed to extract text from page",
				slog.Int("page_number", pageIndex),
				slog.String("error", err.Error()))
			return "", fmt.Errorf("failed to extract text from page %d: %v", pageIndex, err)
		}

		fullText.WriteString(text)
	}

	if fullText.Len() == 0 {
		e.logger.Error("No text extracted from PDF",
			slog.Int("total_pages", totalPage))
		return "", fmt.Errorf("no text content extracted from PDF")
	}

	e.logger.Info("Successfully extracted text from PDF",
		slog.Int("total_pages", totalPage),
		slog.Int("total_text_length", fullText.Len()))

	return fullText.String(), nil
}

func (e *DocumentExtractor) ExtractTextFromWord(data []byte) (string, error) {
	e.logger.Debug("Starting Word document text extraction",
		slog.Int("data_size", len(data)))

	mimeType := "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	result, err := docconv.Convert(bytes.NewReader(data), mimeType, false)
	if err != nil {
		e.logger.Error("Failed to convert Word document",
			slog.String("error", err.Error()),
			slog.Int("data_size", len(data)))
		return "", fmt.Errorf("failed to convert Word document: %v", err)
	}

	if len(result.Body) == 0 {
		e.logger.Error("No text extracted from Word document")
		return "", fmt.Errorf("no text content extracted from Word document")
	}

	e.logger.Info("Successfully extracted text from Word document",
		slog.Int("text_length", len(result.Body)))

	return result.Body, nil
}

func (e *DocumentExtractor) ExtractTextFromHTML(data []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		e.logger.Error("Failed to parse HTML document",
			slog.String("error", err.Error()),
			slog.Int("data_size", len(data)))
		return "", fmt.Errorf("failed to parse HTML document: %v", err)
	}

	doc.Find("script, style, noscript").Remove()
	text := strings.TrimSpace(doc.Find("body").Text())
	if text == "" {
		// Fragments without a body element still carry text at the root.
		text = strings.TrimSpace(doc.Text())
	}
	if text == "" {
		e.logger.Error("No text extracted from HTML document")
		return "", fmt.Errorf("no text content extracted from HTML document")
	}

	e.logger.Info("Successfully extracted text from HTML document",
		slog.Int("text_length", len(text)))

	return strings.Join(strings.Fields(text), " "), nil
}
