package library

import (
	"database/sql"
	"fmt"
)

// AddLender inserts a lender and returns the new id. Address and mobile may
// be empty.
func (d *Database) AddLender(name, address, mobile string) (int64, error) {
	res, err := d.addLenderStmt.Exec(name, address, mobile)
	if err != nil {
		return 0, fmt.Errorf("add lender: %w", err)
	}
	return res.LastInsertId()
}

// RemoveLender deletes the lender with the given id; missing ids are a no-op.
func (d *Database) RemoveLender(id int64) error {
	if _, err := d.db.Exec(`DELETE FROM lenders WHERE id=?`, id); err != nil {
		return fmt.Errorf("remove lender %d: %w", id, err)
	}
	return nil
}

// GetLender fetches a single lender, or ErrNotFound.
func (d *Database) GetLender(id int64) (*Lender, error) {
	var l Lender
	err := d.db.QueryRow(`SELECT id,name,address,mobile FROM lenders WHERE id=?`, id).
		Scan(&l.ID, &l.Name, &l.Address, &l.Mobile)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("lender %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// GetAllLenders returns every lender in id order.
func (d *Database) GetAllLenders() ([]*Lender, error) {
	rows, err := d.db.Query(`SELECT id,name,address,mobile FROM lenders ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lenders []*Lender
	for rows.Next() {
		var l Lender
		if err := rows.Scan(&l.ID, &l.Name, &l.Address, &l.Mobile); err != nil {
			return nil, err
		}
		lenders = append(lenders, &l)
	}
	return lenders, rows.Err()
}

// CountLenders returns the number of registered lenders.
func (d *Database) CountLenders() (int64, error) {
	var n int64
	err := d.db.QueryRow(`SELECT COUNT(*) FROM lenders`).Scan(&n)
	return n, err
}
