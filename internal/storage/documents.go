package storage

import (
	"database/sql"
	"fmt"
)

const documentColumns = `id, name, category, related_to, related_type, content_type,
	ocr_status, ocr_text, extracted_json, suggestions_json, upload_date`

func (s *Store) SaveDocument(d Document) error {
	category := d.Category
	if category == "" {
		category = DocOther
	}
	status := d.OCRStatus
	if status == "" {
		status = OCRPending
	}
	_, err := s.db.Exec(`
		INSERT INTO documents (id, name, category, related_to, related_type, content_type,
			data, ocr_status, ocr_text, extracted_json, suggestions_json, upload_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Name, string(category), d.RelatedTo, d.RelatedType, d.ContentType,
		d.Data, string(status), d.OCRText, d.ExtractedJSON, d.SuggestionsJSON,
		formatTime(d.UploadDate),
	)
	return err
}

// GetDocument returns a document without its raw data blob; use
// GetDocumentData for the upload bytes.
func (s *Store) GetDocument(id string) (Document, error) {
	row := s.db.QueryRow(`SELECT `+documentColumns+` FROM documents WHERE id = ?`, id)
	d, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return Document{}, ErrNotFound
	}
	return d, err
}

func (s *Store) GetDocumentData(id string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRow(`SELECT data FROM documents WHERE id = ?`, id).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return data, err
}

func (s *Store) DeleteDocument(id string) error {
	res, err := s.db.Exec(`DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// ListDocuments returns documents newest first, without data blobs.
func (s *Store) ListDocuments(limit int) ([]Document, error) {
	rows, err := s.db.Query(`
		SELECT `+documentColumns+` FROM documents
		ORDER BY upload_date DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// CountDocumentsByCategory returns a category histogram over every document,
// independent of any listing limit.
func (s *Store) CountDocumentsByCategory() (map[string]int, error) {
	rows, err := s.db.Query(`SELECT category, COUNT(*) FROM documents GROUP BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var category string
		var n int
		if err := rows.Scan(&category, &n); err != nil {
			return nil, err
		}
		counts[category] = n
	}
	return counts, rows.Err()
}

func (s *Store) SetDocumentOCRStatus(id string, status OCRStatus) error {
	res, err := s.db.Exec(`UPDATE documents SET ocr_status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// SetDocumentOCRResult records recovered text along with the final status.
func (s *Store) SetDocumentOCRResult(id, ocrText string, status OCRStatus) error {
	res, err := s.db.Exec(`UPDATE documents SET ocr_text = ?, ocr_status = ? WHERE id = ?`,
		ocrText, string(status), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *Store) SetDocumentExtraction(id, extractedJSON, suggestionsJSON string) error {
	res, err := s.db.Exec(`UPDATE documents SET extracted_json = ?, suggestions_json = ? WHERE id = ?`,
		extractedJSON, suggestionsJSON, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *Store) SetDocumentRelation(id, relatedTo, relatedType string) error {
	res, err := s.db.Exec(`UPDATE documents SET related_to = ?, related_type = ? WHERE id = ?`,
		relatedTo, relatedType, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func scanDocument(row rowScanner) (Document, error) {
	var d Document
	var category, status, uploadDate string

	err := row.Scan(
		&d.ID, &d.Name, &category, &d.RelatedTo, &d.RelatedType, &d.ContentType,
		&status, &d.OCRText, &d.ExtractedJSON, &d.SuggestionsJSON, &uploadDate,
	)
	if err != nil {
		return Document{}, err
	}

	d.Category = DocumentCategory(category)
	d.OCRStatus = OCRStatus(status)
	if d.UploadDate, err = parseTime(uploadDate); err != nil {
		return Document{}, fmt.Errorf("parsing upload_date: %w", err)
	}
	return d, nil
}
