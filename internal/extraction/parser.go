package extraction

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/hometrackerhq/hometracker/internal/ollama"
)

// Chatter is the subset of the Ollama client the parser needs.
type Chatter interface {
	Chat(ctx context.Context, model string, messages []ollama.Message, jsonSchema *ollama.Schema) (string, error)
}

// Parser extracts structured records from document text via a local model.
type Parser struct {
	engine Chatter
	model  string
	log    *slog.Logger
}

// NewParser creates a Parser using the given model.
func NewParser(engine Chatter, model string, log *slog.Logger) *Parser {
	return &Parser{engine: engine, model: model, log: log}
}

// Extract runs one extraction over the given document text. Empty input fails
// fast. A provider failure surfaces as an unsuccessful Result. A model
// response without a recognizable JSON object is NOT a failure: the raw text
// is preserved at low confidence for the user to read themselves.
func (p *Parser) Extract(ctx context.Context, ocrText string) Result {
	if strings.TrimSpace(ocrText) == "" {
		return Result{Error: "document text is empty"}
	}

	resp, err := p.engine.Chat(ctx, p.model, []ollama.Message{
		{Role: "system", Content: extractionSystemPrompt},
		{Role: "user", Content: buildExtractionPrompt(ocrText)},
	}, extractionSchema())
	if err != nil {
		return Result{Error: err.Error()}
	}

	jsonText, found := extractJSON(resp)
	if !found {
		p.log.Debug("extraction: no JSON in response, passing raw text through")
		return Result{
			Success: true,
			Data: &ExtractedData{
				Confidence: ConfidenceLow,
				RawText:    strings.TrimSpace(resp),
			},
		}
	}

	var raw rawPayload
	if err := json.Unmarshal([]byte(jsonText), &raw); err != nil {
		p.log.Debug("extraction: unmarshal failed, passing raw text through", "error", err)
		return Result{
			Success: true,
			Data: &ExtractedData{
				Confidence: ConfidenceLow,
				RawText:    strings.TrimSpace(resp),
			},
		}
	}

	data := clean(raw)
	data.Confidence = AssessConfidence(data)
	return Result{Success: true, Data: &data}
}

// extractionSchema constrains the model to the document payload shape. All
// sections are optional, so none are required; the fence-stripping fallback in
// extractJSON still covers models that ignore the format request.
func extractionSchema() *ollama.Schema {
	return &ollama.Schema{
		Type: "object",
		Properties: map[string]ollama.SchemaProperty{
			"vendor":      {Type: "object", Description: "Vendor contact details: name, phone, email, address"},
			"items":       {Type: "array", Description: "Inventory items: name, brand, model, serial_number, category, price, quantity"},
			"receipt":     {Type: "object", Description: "Purchase record: vendor_name, date, total_amount, payment_method"},
			"warranty":    {Type: "object", Description: "Warranty terms: item_name, provider, type, start_date, end_date, policy_number"},
			"maintenance": {Type: "object", Description: "Suggested maintenance task: title, category, due_date, notes, estimated_cost"},
			"warnings":    {Type: "array", Description: "Ambiguous or suspicious content, verbatim"},
		},
	}
}

// extractJSON pulls the first JSON object out of a model response. Small
// local models frequently wrap JSON in markdown code fences or prepend
// conversational filler, so the fences are stripped first and the object is
// located by brace position.
func extractJSON(resp string) (string, bool) {
	s := strings.TrimSpace(resp)

	if idx := strings.Index(s, "```"); idx != -1 {
		s = s[idx+3:]
		if strings.HasPrefix(s, "json") {
			s = s[4:]
		}
		if end := strings.Index(s, "```"); end != -1 {
			s = s[:end]
		}
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}
