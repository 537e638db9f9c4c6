package ingest

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"golang.org/x/net/html"
)

// RecoverText extracts readable text from an uploaded document. PDFs and HTML
// get real parsing; anything text-like passes through as-is. Images have no
// recoverable text here and are the caller's job to mark not_applicable.
func RecoverText(contentType string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("document is empty")
	}

	switch {
	case strings.HasPrefix(contentType, "application/pdf"):
		return pdfText(data)
	case strings.HasPrefix(contentType, "text/html"):
		return htmlText(data)
	case strings.HasPrefix(contentType, "text/"), contentType == "application/json":
		return string(data), nil
	default:
		return "", fmt.Errorf("unsupported content type %q", contentType)
	}
}

func pdfText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}

	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extracting pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("reading pdf text: %w", err)
	}
	return buf.String(), nil
}

// htmlText walks the token stream collecting text nodes, skipping script and
// style bodies.
func htmlText(data []byte) (string, error) {
	z := html.NewTokenizer(bytes.NewReader(data))

	var sb strings.Builder
	var skipDepth int
	for {
		switch z.Next() {
		case html.ErrorToken:
			// Tokenizer reports EOF as an error token.
			return strings.TrimSpace(sb.String()), nil
		case html.StartTagToken:
			name, _ := z.TagName()
			if tag := string(name); tag == "script" || tag == "style" {
				skipDepth++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if tag := string(name); (tag == "script" || tag == "style") && skipDepth > 0 {
				skipDepth--
			}
		case html.TextToken:
			if skipDepth > 0 {
				continue
			}
			text := strings.TrimSpace(string(z.Text()))
			if text != "" {
				if sb.Len() > 0 {
					sb.WriteByte('\n')
				}
				sb.WriteString(text)
			}
		}
	}
}
