package ingest

import (
	"strings"
	"testing"
)

func TestRecoverTextPlain(t *testing.T) {
	got, err := RecoverText("text/plain", []byte("Receipt total $89.97"))
	if err != nil {
		t.Fatalf("RecoverText: %v", err)
	}
	if got != "Receipt total $89.97" {
		t.Errorf("got %q", got)
	}
}

func TestRecoverTextHTML(t *testing.T) {
	page := `<html><head><style>body { color: red }</style>
<script>console.log("tracking")</script></head>
<body><h1>Invoice</h1><p>ABC Plumbing</p><p>Total: $450.00</p></body></html>`

	got, err := RecoverText("text/html; charset=utf-8", []byte(page))
	if err != nil {
		t.Fatalf("RecoverText: %v", err)
	}

	for _, want := range []string{"Invoice", "ABC Plumbing", "Total: $450.00"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	for _, banned := range []string{"color: red", "tracking"} {
		if strings.Contains(got, banned) {
			t.Errorf("output leaked %q from style/script:\n%s", banned, got)
		}
	}
}

func TestRecoverTextEmpty(t *testing.T) {
	if _, err := RecoverText("text/plain", nil); err == nil {
		t.Error("expected error for empty document")
	}
}

func TestRecoverTextUnsupported(t *testing.T) {
	if _, err := RecoverText("application/zip", []byte("PK")); err == nil {
		t.Error("expected error for unsupported content type")
	}
}

func TestRecoverTextBadPDF(t *testing.T) {
	if _, err := RecoverText("application/pdf", []byte("not a pdf")); err == nil {
		t.Error("expected error for corrupt pdf")
	}
}
