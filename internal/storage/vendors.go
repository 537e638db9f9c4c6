package storage

import (
	"database/sql"
	"fmt"
	"time"
)

const vendorColumns = `id, business_name, contact_name, phone, email, categories,
	rating, is_preferred, last_used, notes, created_at`

func (s *Store) SaveVendor(v Vendor) error {
	categories, err := marshalJSONList(v.Categories)
	if err != nil {
		return err
	}
	lastUsed := ""
	if !v.LastUsed.IsZero() {
		lastUsed = formatTime(v.LastUsed)
	}
	_, err = s.db.Exec(`
		INSERT INTO vendors (`+vendorColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.BusinessName, v.ContactName, v.Phone, v.Email, categories,
		v.Rating, boolToInt(v.IsPreferred), lastUsed, v.Notes, formatTime(v.CreatedAt),
	)
	return err
}

func (s *Store) GetVendor(id string) (Vendor, error) {
	row := s.db.QueryRow(`SELECT `+vendorColumns+` FROM vendors WHERE id = ?`, id)
	v, err := scanVendor(row)
	if err == sql.ErrNoRows {
		return Vendor{}, ErrNotFound
	}
	return v, err
}

func (s *Store) UpdateVendor(v Vendor) error {
	categories, err := marshalJSONList(v.Categories)
	if err != nil {
		return err
	}
	lastUsed := ""
	if !v.LastUsed.IsZero() {
		lastUsed = formatTime(v.LastUsed)
	}
	res, err := s.db.Exec(`
		UPDATE vendors SET business_name = ?, contact_name = ?, phone = ?, email = ?,
			categories = ?, rating = ?, is_preferred = ?, last_used = ?, notes = ?
		WHERE id = ?`,
		v.BusinessName, v.ContactName, v.Phone, v.Email,
		categories, v.Rating, boolToInt(v.IsPreferred), lastUsed, v.Notes,
		v.ID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *Store) DeleteVendor(id string) error {
	res, err := s.db.Exec(`DELETE FROM vendors WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *Store) ListVendors() ([]Vendor, error) {
	rows, err := s.db.Query(`SELECT ` + vendorColumns + ` FROM vendors ORDER BY business_name ASC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vendors []Vendor
	for rows.Next() {
		v, err := scanVendor(rows)
		if err != nil {
			return nil, err
		}
		vendors = append(vendors, v)
	}
	return vendors, rows.Err()
}

// TouchVendorLastUsed stamps the vendor's last-used time, used when a task or
// project references the vendor.
func (s *Store) TouchVendorLastUsed(id string, at time.Time) error {
	res, err := s.db.Exec(`UPDATE vendors SET last_used = ? WHERE id = ?`, formatTime(at), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func scanVendor(row rowScanner) (Vendor, error) {
	var v Vendor
	var categories, lastUsed, createdAt string
	var preferred int

	err := row.Scan(
		&v.ID, &v.BusinessName, &v.ContactName, &v.Phone, &v.Email, &categories,
		&v.Rating, &preferred, &lastUsed, &v.Notes, &createdAt,
	)
	if err != nil {
		return Vendor{}, err
	}

	v.Categories = unmarshalStrings(categories)
	v.IsPreferred = preferred != 0
	if v.LastUsed, err = parseTime(lastUsed); err != nil {
		return Vendor{}, fmt.Errorf("parsing last_used: %w", err)
	}
	if v.CreatedAt, err = parseTime(createdAt); err != nil {
		return Vendor{}, fmt.Errorf("parsing created_at: %w", err)
	}
	return v, nil
}
