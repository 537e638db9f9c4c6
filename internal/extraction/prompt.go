package extraction

import "fmt"

const extractionSystemPrompt = `You are a document extraction engine for a home management assistant. You receive raw text recovered from a household document (receipt, warranty card, invoice, manual, service record). Your output must be ONLY a single valid JSON object. Do not include any other text, prose, or markdown.

The JSON object may contain any of these optional sections:
- "vendor": {"name", "phone", "email", "address"}
- "items": [{"name", "brand", "model", "serial_number", "category", "price", "quantity"}]
- "receipt": {"vendor_name", "date", "total_amount", "payment_method"}
- "warranty": {"item_name", "provider", "type", "start_date", "end_date", "policy_number"}
- "maintenance": {"title", "category", "due_date", "notes", "estimated_cost"}
- "warnings": ["..."]

Rules:
- Only include a section when the document clearly contains it.
- Dates should be YYYY-MM-DD where possible.
- Put anything ambiguous or suspicious into "warnings" instead of guessing.`

func buildExtractionPrompt(ocrText string) string {
	return fmt.Sprintf("Extract structured records from this document text:\n\n%s", ocrText)
}
