package storage

import (
	"database/sql"
	"fmt"
)

const warrantyColumns = `id, item_id, item_name, provider, type, start_date, end_date,
	policy_number, created_at`

func (s *Store) SaveWarranty(w Warranty) error {
	typ := w.Type
	if typ == "" {
		typ = WarrantyManufacturer
	}
	_, err := s.db.Exec(`
		INSERT INTO warranties (`+warrantyColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		w.ID, w.ItemID, w.ItemName, w.Provider, string(typ), w.StartDate, w.EndDate,
		w.PolicyNumber, formatTime(w.CreatedAt),
	)
	return err
}

func (s *Store) GetWarranty(id string) (Warranty, error) {
	row := s.db.QueryRow(`SELECT `+warrantyColumns+` FROM warranties WHERE id = ?`, id)
	w, err := scanWarranty(row)
	if err == sql.ErrNoRows {
		return Warranty{}, ErrNotFound
	}
	return w, err
}

func (s *Store) UpdateWarranty(w Warranty) error {
	res, err := s.db.Exec(`
		UPDATE warranties SET item_id = ?, item_name = ?, provider = ?, type = ?,
			start_date = ?, end_date = ?, policy_number = ?
		WHERE id = ?`,
		w.ItemID, w.ItemName, w.Provider, string(w.Type),
		w.StartDate, w.EndDate, w.PolicyNumber,
		w.ID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *Store) DeleteWarranty(id string) error {
	res, err := s.db.Exec(`DELETE FROM warranties WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *Store) ListWarranties() ([]Warranty, error) {
	rows, err := s.db.Query(`SELECT ` + warrantyColumns + ` FROM warranties ORDER BY end_date ASC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var warranties []Warranty
	for rows.Next() {
		w, err := scanWarranty(rows)
		if err != nil {
			return nil, err
		}
		warranties = append(warranties, w)
	}
	return warranties, rows.Err()
}

// CountExpiringWarranties counts warranties ending within [from, to] inclusive.
func (s *Store) CountExpiringWarranties(from, to string) (int, error) {
	var n int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM warranties
		WHERE end_date <> '' AND end_date >= ? AND end_date <= ?`, from, to).Scan(&n)
	return n, err
}

func scanWarranty(row rowScanner) (Warranty, error) {
	var w Warranty
	var typ, createdAt string

	err := row.Scan(
		&w.ID, &w.ItemID, &w.ItemName, &w.Provider, &typ, &w.StartDate, &w.EndDate,
		&w.PolicyNumber, &createdAt,
	)
	if err != nil {
		return Warranty{}, err
	}

	w.Type = WarrantyType(typ)
	if w.CreatedAt, err = parseTime(createdAt); err != nil {
		return Warranty{}, fmt.Errorf("parsing created_at: %w", err)
	}
	return w, nil
}
