package library

import (
	"database/sql"
	"fmt"
	"time"
)

// dateFormat is how added_date is persisted. Matches the original
// library file format so old exports stay readable.
const dateFormat = "2006-01-02"

// AddBook inserts a book, stamping added_date with the current date, and
// returns the new id. Validation of title/author happens in the manager;
// the store accepts any text.
func (d *Database) AddBook(title, author string) (int64, error) {
	res, err := d.addBookStmt.Exec(title, author, time.Now().Format(dateFormat))
	if err != nil {
		return 0, fmt.Errorf("add book: %w", err)
	}
	return res.LastInsertId()
}

// RemoveBook deletes the book with the given id. Deleting a book that does
// not exist is a no-op, not an error.
func (d *Database) RemoveBook(id int64) error {
	if _, err := d.db.Exec(`DELETE FROM books WHERE id=?`, id); err != nil {
		return fmt.Errorf("remove book %d: %w", id, err)
	}
	return nil
}

// GetBook fetches a single book, or ErrNotFound.
func (d *Database) GetBook(id int64) (*Book, error) {
	var b Book
	err := d.db.QueryRow(`SELECT id,title,author,added_date FROM books WHERE id=?`, id).
		Scan(&b.ID, &b.Title, &b.Author, &b.AddedDate)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("book %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// GetAllBooks returns every book in insertion (id) order.
func (d *Database) GetAllBooks() ([]*Book, error) {
	rows, err := d.db.Query(`SELECT id,title,author,added_date FROM books ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []*Book
	for rows.Next() {
		var b Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.AddedDate); err != nil {
			return nil, err
		}
		books = append(books, &b)
	}
	return books, rows.Err()
}

// CountBooks returns the number of books in the catalog.
func (d *Database) CountBooks() (int64, error) {
	var n int64
	err := d.db.QueryRow(`SELECT COUNT(*) FROM books`).Scan(&n)
	return n, err
}
