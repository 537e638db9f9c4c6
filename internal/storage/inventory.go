package storage

import (
	"database/sql"
	"fmt"
	"time"
)

const inventoryColumns = `id, name, category, location, brand, model, serial_number,
	purchase_date, purchase_price, current_value, condition, warranty_id,
	stock_quantity, reorder_threshold, replace_by, tags, status, created_at, updated_at`

func (s *Store) SaveInventoryItem(item InventoryItem) error {
	tags, err := marshalJSONList(item.Tags)
	if err != nil {
		return err
	}
	status := item.Status
	if status == "" {
		status = ItemActive
	}
	var stockQty, reorderAt sql.NullInt64
	var replaceBy string
	if item.Consumable != nil {
		stockQty = sql.NullInt64{Int64: int64(item.Consumable.StockQuantity), Valid: true}
		reorderAt = sql.NullInt64{Int64: int64(item.Consumable.ReorderThreshold), Valid: true}
		replaceBy = item.Consumable.ReplaceBy
	}
	_, err = s.db.Exec(`
		INSERT INTO inventory_items (`+inventoryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.Name, item.Category, item.Location, item.Brand, item.Model, item.SerialNumber,
		item.PurchaseDate, nullFloat(item.PurchasePrice), nullFloat(item.CurrentValue),
		string(item.Condition), item.WarrantyID, stockQty, reorderAt, replaceBy,
		tags, string(status), formatTime(item.CreatedAt), formatTime(item.UpdatedAt),
	)
	return err
}

func (s *Store) GetInventoryItem(id string) (InventoryItem, error) {
	row := s.db.QueryRow(`SELECT `+inventoryColumns+` FROM inventory_items WHERE id = ?`, id)
	item, err := scanInventoryItem(row)
	if err == sql.ErrNoRows {
		return InventoryItem{}, ErrNotFound
	}
	return item, err
}

func (s *Store) UpdateInventoryItem(item InventoryItem) error {
	tags, err := marshalJSONList(item.Tags)
	if err != nil {
		return err
	}
	var stockQty, reorderAt sql.NullInt64
	var replaceBy string
	if item.Consumable != nil {
		stockQty = sql.NullInt64{Int64: int64(item.Consumable.StockQuantity), Valid: true}
		reorderAt = sql.NullInt64{Int64: int64(item.Consumable.ReorderThreshold), Valid: true}
		replaceBy = item.Consumable.ReplaceBy
	}
	res, err := s.db.Exec(`
		UPDATE inventory_items SET name = ?, category = ?, location = ?, brand = ?, model = ?,
			serial_number = ?, purchase_date = ?, purchase_price = ?, current_value = ?,
			condition = ?, warranty_id = ?, stock_quantity = ?, reorder_threshold = ?, replace_by = ?,
			tags = ?, status = ?, updated_at = ?
		WHERE id = ?`,
		item.Name, item.Category, item.Location, item.Brand, item.Model,
		item.SerialNumber, item.PurchaseDate, nullFloat(item.PurchasePrice), nullFloat(item.CurrentValue),
		string(item.Condition), item.WarrantyID, stockQty, reorderAt, replaceBy,
		tags, string(item.Status), formatTime(time.Now()),
		item.ID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *Store) DeleteInventoryItem(id string) error {
	res, err := s.db.Exec(`DELETE FROM inventory_items WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// ListInventoryItems returns every item, active and otherwise, newest first.
func (s *Store) ListInventoryItems() ([]InventoryItem, error) {
	rows, err := s.db.Query(`SELECT ` + inventoryColumns + ` FROM inventory_items ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []InventoryItem
	for rows.Next() {
		item, err := scanInventoryItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// CountLowStock counts active consumables at or below their reorder threshold.
func (s *Store) CountLowStock() (int, error) {
	var n int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM inventory_items
		WHERE status = 'active' AND stock_quantity IS NOT NULL
		AND stock_quantity <= reorder_threshold`).Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInventoryItem(row rowScanner) (InventoryItem, error) {
	var item InventoryItem
	var purchasePrice, currentValue sql.NullFloat64
	var stockQty, reorderAt sql.NullInt64
	var condition, status, replaceBy, tags, createdAt, updatedAt string

	err := row.Scan(
		&item.ID, &item.Name, &item.Category, &item.Location, &item.Brand, &item.Model, &item.SerialNumber,
		&item.PurchaseDate, &purchasePrice, &currentValue, &condition, &item.WarrantyID,
		&stockQty, &reorderAt, &replaceBy, &tags, &status, &createdAt, &updatedAt,
	)
	if err != nil {
		return InventoryItem{}, err
	}

	item.PurchasePrice = floatPtr(purchasePrice)
	item.CurrentValue = floatPtr(currentValue)
	item.Condition = ItemCondition(condition)
	item.Status = ItemStatus(status)
	item.Tags = unmarshalStrings(tags)
	if stockQty.Valid {
		item.Consumable = &Consumable{
			StockQuantity:    int(stockQty.Int64),
			ReorderThreshold: int(reorderAt.Int64),
			ReplaceBy:        replaceBy,
		}
	}
	if item.CreatedAt, err = parseTime(createdAt); err != nil {
		return InventoryItem{}, fmt.Errorf("parsing created_at: %w", err)
	}
	if item.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return InventoryItem{}, fmt.Errorf("parsing updated_at: %w", err)
	}
	return item, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
