// Package extract converts uploaded file bytes into plain text. It is the
// boundary collaborator for document parsing: callers hand it bytes and a
// file name and get back text or a ParseError, never byte-level formats.
package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ParseError reports an unsupported or corrupt file. Fatal to that upload;
// the user must retry with a different file.
type ParseError struct {
	Filename string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Filename, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// SupportedTypes lists the accepted file extensions.
var SupportedTypes = map[string]bool{".pdf": true, ".txt": true, ".docx": true}

// Text extracts plain text from the given file bytes, dispatching on the
// file extension.
func Text(data []byte, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return pdfText(data, filename)
	case ".txt":
		return string(data), nil
	case ".docx":
		return docxText(data, filename)
	default:
		return "", &ParseError{Filename: filename, Err: fmt.Errorf("unsupported file type %q, expected pdf, txt, or docx", ext)}
	}
}

func pdfText(data []byte, filename string) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &ParseError{Filename: filename, Err: err}
	}

	var content strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		content.WriteString(text)
		content.WriteString("\n")
	}
	return content.String(), nil
}

// docxText pulls the text runs out of word/document.xml. A docx file is a
// zip archive; paragraphs become newlines.
func docxText(data []byte, filename string) (string, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &ParseError{Filename: filename, Err: err}
	}

	var docXML io.ReadCloser
	for _, f := range archive.File {
		if f.Name == "word/document.xml" {
			docXML, err = f.Open()
			if err != nil {
				return "", &ParseError{Filename: filename, Err: err}
			}
			break
		}
	}
	if docXML == nil {
		return "", &ParseError{Filename: filename, Err: fmt.Errorf("word/document.xml not found")}
	}
	defer docXML.Close()

	var content strings.Builder
	decoder := xml.NewDecoder(docXML)
	inText := false
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", &ParseError{Filename: filename, Err: err}
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				content.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				content.Write(t)
			}
		}
	}
	return content.String(), nil
}
