package library

import (
	"errors"
	"path/filepath"
	"testing"
)

func tempManager(t *testing.T) *LibraryManager {
	t.Helper()
	mgr, err := NewLibraryManager(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	t.Cleanup(func() { mgr.Close() })
	return mgr
}

func TestManagerValidation(t *testing.T) {
	mgr := tempManager(t)

	for _, tc := range [][2]string{{"", "Author"}, {"Title", ""}, {"   ", "Author"}} {
		if _, err := mgr.AddBook(tc[0], tc[1]); !errors.Is(err, ErrMissingField) {
			t.Fatalf("AddBook(%q,%q): want ErrMissingField, got %v", tc[0], tc[1], err)
		}
	}
	if _, err := mgr.AddLender("", "addr", "mob"); !errors.Is(err, ErrMissingField) {
		t.Fatalf("AddLender: want ErrMissingField, got %v", err)
	}

	// Rejected adds must not touch the store.
	books, err := mgr.GetAllBooks()
	if err != nil {
		t.Fatalf("list books: %v", err)
	}
	if len(books) != 0 {
		t.Fatalf("store mutated by rejected add: %d books", len(books))
	}
}

func TestManagerBorrowFlow(t *testing.T) {
	mgr := tempManager(t)

	bookID, err := mgr.AddBook("Book", "Author")
	if err != nil {
		t.Fatalf("add book: %v", err)
	}
	lenderID, err := mgr.AddLender("Alice", "", "555-0101")
	if err != nil {
		t.Fatalf("add lender: %v", err)
	}

	loanID, err := mgr.BorrowBook(lenderID, bookID)
	if err != nil {
		t.Fatalf("borrow: %v", err)
	}
	if _, err := mgr.BorrowBook(lenderID, bookID); !errors.Is(err, ErrAlreadyBorrowed) {
		t.Fatalf("want ErrAlreadyBorrowed, got %v", err)
	}
	if err := mgr.ReturnLoan(loanID); err != nil {
		t.Fatalf("return: %v", err)
	}

	available, err := mgr.AvailableBooks()
	if err != nil {
		t.Fatalf("available: %v", err)
	}
	if len(available) != 1 || available[0].ID != bookID {
		t.Fatalf("book should be available again: %+v", available)
	}
}
