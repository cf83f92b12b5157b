package extractor

import (
	"fmt"
	"strings"
)

// Format identifies a supported document format.
type Format string

const (
	FormatPDF         Format = "pdf"
	FormatWord        Format = "word"
	FormatSpreadsheet Format = "spreadsheet"
	FormatUnknown     Format = "unknown"
)

// ErrorPrefix starts every embedded extraction-failure string. Callers that
// want to log failed extractions should check the returned text against this
// prefix rather than rely on control flow.
const ErrorPrefix = "Error reading "

// FormatForExtension maps a file extension (with or without the leading dot)
// to a document format.
func FormatForExtension(ext string) Format {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "pdf":
		return FormatPDF
	case "doc", "docx":
		return FormatWord
	case "xls", "xlsx":
		return FormatSpreadsheet
	default:
		return FormatUnknown
	}
}

// Extract converts raw document bytes into plain text based on the file
// extension. It never fails the caller: any internal error is embedded into
// the returned text as a human-readable string starting with ErrorPrefix.
// Unsupported extensions yield an empty string, which the caller should log
// as a warning.
func Extract(data []byte, ext string) string {
	switch FormatForExtension(ext) {
	case FormatPDF:
		text, err := extractPDF(data)
		return atBoundary("PDF", text, err)
	case FormatWord:
		text, err := extractWord(data)
		return atBoundary("Word document", text, err)
	case FormatSpreadsheet:
		text, err := extractSpreadsheet(data)
		return atBoundary("Excel file", text, err)
	default:
		return ""
	}
}

// IsErrorText reports whether extracted text is an embedded failure string
func IsErrorText(text string) bool {
	return strings.HasPrefix(text, ErrorPrefix)
}

// MaxStoredChars bounds how much extracted text is persisted per document.
// Evaluation excerpts are cut further downstream, so storing more buys nothing.
const MaxStoredChars = 10000

// ClampForStorage truncates extracted text to MaxStoredChars runes.
func ClampForStorage(text string) string {
	runes := []rune(text)
	if len(runes) <= MaxStoredChars {
		return text
	}
	return string(runes[:MaxStoredChars])
}

// atBoundary converts the internal (text, error) contract into the
// result-as-data convention the pipeline exposes: failures become sentinel
// strings, never errors.
func atBoundary(label string, text string, err error) string {
	if err != nil {
		return fmt.Sprintf("%s%s: %v", ErrorPrefix, label, err)
	}
	return text
}
