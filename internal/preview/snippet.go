package preview

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// SnippetLimit bounds text previews in characters.
const SnippetLimit = 500

// ErrUnsupported is returned when no text preview can be derived.
var ErrUnsupported = errors.New("preview text unsupported")

// Snippet returns a short plain-text preview of a document.
// PDFs use the first page; Word files are read from word/document.xml when zipped.
func Snippet(mediaType string, data []byte) (string, error) {
	mt := strings.ToLower(strings.TrimSpace(strings.Split(mediaType, ";")[0]))
	var (
		text string
		err  error
	)
	switch mt {
	case "application/pdf":
		text, err = firstPDFPage(data)
	case "text/plain":
		text = string(data)
	case "application/msword":
		text, err = wordText(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupported, mt)
	}
	if err != nil {
		return "", err
	}
	return truncateRunes(strings.TrimSpace(text), SnippetLimit), nil
}

func firstPDFPage(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("pdf preview: %w", err)
	}
	if r.NumPage() < 1 {
		return "", nil
	}
	page := r.Page(1)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}

// wordText handles OOXML packages. Legacy binary .doc files have no text preview.
func wordText(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: legacy word document", ErrUnsupported)
	}
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		defer rc.Close()
		raw, err := io.ReadAll(rc)
		if err != nil {
			return "", err
		}
		return stripWordXML(raw), nil
	}
	return "", errors.New("document.xml file not found")
}

func stripWordXML(raw []byte) string {
	decoder := xml.NewDecoder(bytes.NewReader(raw))
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return ""
		}
		switch t := tok.(type) {
		case xml.CharData:
			buf.Write(t)
		case xml.EndElement:
			if (t.Name.Local == "p" || t.Name.Local == "br") && buf.Len() > 0 {
				buf.WriteString("\n")
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
