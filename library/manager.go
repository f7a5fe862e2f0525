package library

import (
	"fmt"
	"strings"
)

// LibraryManager is a thin façade over the Database, keeping CLI code
// simple. It owns the caller-level validation; the store below it accepts
// any text.
type LibraryManager struct {
	db *Database
}

// NewLibraryManager opens (or creates) the SQLite database at dbPath.
func NewLibraryManager(dbPath string) (*LibraryManager, error) {
	db, err := NewDatabase(dbPath)
	if err != nil {
		return nil, err
	}
	return &LibraryManager{db: db}, nil
}

// Close closes the underlying database.
func (lm *LibraryManager) Close() error { return lm.db.Close() }

// ------------------ Catalog ------------------

// AddBook validates and stores a new book, returning its id.
func (lm *LibraryManager) AddBook(title, author string) (int64, error) {
	if strings.TrimSpace(title) == "" {
		return 0, fmt.Errorf("%w: title", ErrMissingField)
	}
	if strings.TrimSpace(author) == "" {
		return 0, fmt.Errorf("%w: author", ErrMissingField)
	}
	return lm.db.AddBook(title, author)
}

func (lm *LibraryManager) RemoveBook(id int64) error { return lm.db.RemoveBook(id) }
func (lm *LibraryManager) GetBook(id int64) (*Book, error) { return lm.db.GetBook(id) }
func (lm *LibraryManager) GetAllBooks() ([]*Book, error) { return lm.db.GetAllBooks() }

// ------------------ Lender directory ------------------

// AddLender validates and stores a new lender. Address and mobile are
// optional.
func (lm *LibraryManager) AddLender(name, address, mobile string) (int64, error) {
	if strings.TrimSpace(name) == "" {
		return 0, fmt.Errorf("%w: name", ErrMissingField)
	}
	return lm.db.AddLender(name, address, mobile)
}

func (lm *LibraryManager) RemoveLender(id int64) error { return lm.db.RemoveLender(id) }
func (lm *LibraryManager) GetLender(id int64) (*Lender, error) { return lm.db.GetLender(id) }
func (lm *LibraryManager) GetAllLenders() ([]*Lender, error) { return lm.db.GetAllLenders() }

// ------------------ Loan ledger ------------------

func (lm *LibraryManager) BorrowBook(lenderID, bookID int64) (int64, error) {
	return lm.db.BorrowBook(lenderID, bookID)
}

func (lm *LibraryManager) ReturnLoan(loanID int64) error { return lm.db.ReturnLoan(loanID) }
func (lm *LibraryManager) GetLoan(id int64) (*Loan, error) { return lm.db.GetLoan(id) }
func (lm *LibraryManager) GetAllLoans() ([]*Loan, error)   { return lm.db.GetAllLoans() }

// ------------------ Queries ------------------

func (lm *LibraryManager) AvailableBooks() ([]*Book, error) { return lm.db.AvailableBooks() }
func (lm *LibraryManager) ActiveLoans() ([]*LoanDetail, error) { return lm.db.ActiveLoans() }
func (lm *LibraryManager) MostBorrowedBook() (*BookBorrowStats, error) {
	return lm.db.MostBorrowedBook()
}
func (lm *LibraryManager) LeastBorrowedBook() (*BookBorrowStats, error) {
	return lm.db.LeastBorrowedBook()
}

// ------------------ Data portability ------------------

func (lm *LibraryManager) ExportFile(path string) error { return lm.db.ExportFile(path) }
func (lm *LibraryManager) ImportFile(path string) error { return lm.db.ImportFile(path) }
func (lm *LibraryManager) ClearAll() error              { return lm.db.Clear() }
