package extractor

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// A .docx file is a zip archive whose main part is word/document.xml. The
// subset needed here (paragraph runs and table rows) decodes directly; the
// reader matches elements by local name, so the w: namespace needs no
// special handling.
type wordDocument struct {
	Body wordBody `xml:"body"`
}

type wordBody struct {
	Paragraphs []wordParagraph `xml:"p"`
	Tables     []wordTable     `xml:"tbl"`
}

type wordParagraph struct {
	Runs []string `xml:"r>t"`
}

func (p wordParagraph) text() string {
	return strings.Join(p.Runs, "")
}

type wordTable struct {
	Rows []wordRow `xml:"tr"`
}

type wordRow struct {
	Cells []wordCell `xml:"tc"`
}

type wordCell struct {
	Paragraphs []wordParagraph `xml:"p"`
}

func (c wordCell) text() string {
	var parts []string
	for _, p := range c.Paragraphs {
		if t := strings.TrimSpace(p.text()); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// extractWord concatenates non-blank paragraph text in document order, then
// appends each table as a [TABLE]...[/TABLE] block with rows rendered as
// cell values joined by " | ".
func extractWord(data []byte) (string, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var docXML []byte
	for _, f := range archive.File {
		if f.Name == "word/document.xml" {
			rc, err := f.Open()
			if err != nil {
				return "", err
			}
			docXML, err = io.ReadAll(rc)
			rc.Close()
			if err != nil {
				return "", err
			}
			break
		}
	}
	if docXML == nil {
		return "", fmt.Errorf("no word/document.xml part found")
	}

	var doc wordDocument
	if err := xml.Unmarshal(docXML, &doc); err != nil {
		return "", err
	}

	var parts []string
	for _, p := range doc.Body.Paragraphs {
		if t := strings.TrimSpace(p.text()); t != "" {
			parts = append(parts, t)
		}
	}

	for _, table := range doc.Body.Tables {
		var rows []string
		for _, row := range table.Rows {
			cells := make([]string, 0, len(row.Cells))
			for _, cell := range row.Cells {
				cells = append(cells, cell.text())
			}
			rows = append(rows, strings.Join(cells, " | "))
		}
		if len(rows) > 0 {
			parts = append(parts, "[TABLE]\n"+strings.Join(rows, "\n")+"\n[/TABLE]")
		}
	}

	return strings.Join(parts, "\n\n"), nil
}
