package library

import (
	"database/sql"
	"fmt"
)

// BorrowBook records a loan of bookID to lenderID and returns the new loan
// id. The active-loan check and the insert run in one transaction so two
// borrows of the same book cannot both succeed: a book has at most one
// active loan at any time.
func (d *Database) BorrowBook(lenderID, bookID int64) (int64, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM books WHERE id=?)`, bookID).Scan(&exists); err != nil {
		return 0, err
	}
	if !exists {
		return 0, fmt.Errorf("book %d: %w", bookID, ErrNotFound)
	}

	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM lenders WHERE id=?)`, lenderID).Scan(&exists); err != nil {
		return 0, err
	}
	if !exists {
		return 0, fmt.Errorf("lender %d: %w", lenderID, ErrNotFound)
	}

	var active bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM loans WHERE book_id=? AND status=?)`, bookID, StatusActive).Scan(&active); err != nil {
		return 0, err
	}
	if active {
		return 0, fmt.Errorf("book %d: %w", bookID, ErrAlreadyBorrowed)
	}

	res, err := tx.Exec(`INSERT INTO loans(lender_id,book_id,status) VALUES(?,?,?)`, lenderID, bookID, StatusActive)
	if err != nil {
		return 0, err
	}
	loanID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return loanID, tx.Commit()
}

// ReturnLoan marks the loan as returned. Unknown ids and already-returned
// loans are silent no-ops: an update matching zero rows is accepted.
func (d *Database) ReturnLoan(loanID int64) error {
	if _, err := d.db.Exec(`UPDATE loans SET status=? WHERE id=?`, StatusReturned, loanID); err != nil {
		return fmt.Errorf("return loan %d: %w", loanID, err)
	}
	return nil
}

// GetLoan fetches a single loan record, or ErrNotFound.
func (d *Database) GetLoan(id int64) (*Loan, error) {
	var l Loan
	err := d.db.QueryRow(`SELECT id,lender_id,book_id,status FROM loans WHERE id=?`, id).
		Scan(&l.ID, &l.LenderID, &l.BookID, &l.Status)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("loan %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// GetAllLoans returns every loan record, active and returned, in id order.
func (d *Database) GetAllLoans() ([]*Loan, error) {
	rows, err := d.db.Query(`SELECT id,lender_id,book_id,status FROM loans ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var loans []*Loan
	for rows.Next() {
		var l Loan
		if err := rows.Scan(&l.ID, &l.LenderID, &l.BookID, &l.Status); err != nil {
			return nil, err
		}
		loans = append(loans, &l)
	}
	return loans, rows.Err()
}

// CountLoans returns the number of loan records, any status.
func (d *Database) CountLoans() (int64, error) {
	var n int64
	err := d.db.QueryRow(`SELECT COUNT(*) FROM loans`).Scan(&n)
	return n, err
}

// ---------------------------------------------------------------------------
// Derived queries
// ---------------------------------------------------------------------------

// AvailableBooks returns books with no active loan, in id order.
func (d *Database) AvailableBooks() ([]*Book, error) {
	rows, err := d.db.Query(`
        SELECT b.id, b.title, b.author, b.added_date
        FROM books b
        WHERE NOT EXISTS (
            SELECT 1 FROM loans l WHERE l.book_id = b.id AND l.status = ?
        )
        ORDER BY b.id`, StatusActive)
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

// ActiveLoans returns every active loan joined with the book and lender it
// references. Loans whose book or lender has since been removed do not
// appear (inner join).
func (d *Database) ActiveLoans() ([]*LoanDetail, error) {
	rows, err := d.db.Query(`
        SELECT ln.id,
               b.id, b.title, b.author, b.added_date,
               l.id, l.name, l.address, l.mobile
        FROM loans ln
        JOIN books b ON b.id = ln.book_id
        JOIN lenders l ON l.id = ln.lender_id
        WHERE ln.status = ?
        ORDER BY ln.id`, StatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var details []*LoanDetail
	for rows.Next() {
		var det LoanDetail
		if err := rows.Scan(&det.LoanID,
			&det.Book.ID, &det.Book.Title, &det.Book.Author, &det.Book.AddedDate,
			&det.Lender.ID, &det.Lender.Name, &det.Lender.Address, &det.Lender.Mobile); err != nil {
			return nil, err
		}
		details = append(details, &det)
	}
	return details, rows.Err()
}

// MostBorrowedBook returns the book with the most loan records, counting
// active and returned alike. Ties break to the lowest book id. ErrNotFound
// when no book has ever been borrowed.
func (d *Database) MostBorrowedBook() (*BookBorrowStats, error) {
	return d.borrowStats(`
        SELECT b.id, b.title, b.author, b.added_date, COUNT(l.id) AS borrow_count
        FROM books b
        JOIN loans l ON l.book_id = b.id
        GROUP BY b.id
        ORDER BY borrow_count DESC, b.id ASC
        LIMIT 1`)
}

// LeastBorrowedBook returns the book with the fewest loan records; books
// never borrowed count as zero. Ties break to the lowest book id.
// ErrNotFound when the catalog is empty.
func (d *Database) LeastBorrowedBook() (*BookBorrowStats, error) {
	return d.borrowStats(`
        SELECT b.id, b.title, b.author, b.added_date, COUNT(l.id) AS borrow_count
        FROM books b
        LEFT JOIN loans l ON l.book_id = b.id
        GROUP BY b.id
        ORDER BY borrow_count ASC, b.id ASC
        LIMIT 1`)
}

func (d *Database) borrowStats(query string) (*BookBorrowStats, error) {
	var s BookBorrowStats
	err := d.db.QueryRow(query).
		Scan(&s.Book.ID, &s.Book.Title, &s.Book.Author, &s.Book.AddedDate, &s.Count)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no borrowed book: %w", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}
