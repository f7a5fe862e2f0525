package library

import (
	"errors"
	"testing"
)

func TestBorrowAndReturnFlow(t *testing.T) {
	db := tempDB(t)
	bookID, _ := db.AddBook("Book2", "Author2")
	lenderID, _ := db.AddLender("Lender2", "Addr2", "456")

	loanID, err := db.BorrowBook(lenderID, bookID)
	if err != nil {
		t.Fatalf("borrow: %v", err)
	}

	active, err := db.ActiveLoans()
	if err != nil {
		t.Fatalf("active loans: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("want 1 active loan, got %d", len(active))
	}
	if active[0].LoanID != loanID || active[0].Book.ID != bookID || active[0].Lender.ID != lenderID {
		t.Fatalf("unexpected loan detail: %+v", active[0])
	}

	if err := db.ReturnLoan(loanID); err != nil {
		t.Fatalf("return: %v", err)
	}
	active, err = db.ActiveLoans()
	if err != nil {
		t.Fatalf("active loans: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("want 0 active loans, got %d", len(active))
	}

	loan, err := db.GetLoan(loanID)
	if err != nil {
		t.Fatalf("get loan: %v", err)
	}
	if loan.Status != StatusReturned {
		t.Fatalf("want status returned, got %q", loan.Status)
	}
}

func TestBorrowAlreadyBorrowed(t *testing.T) {
	db := tempDB(t)
	bookID, _ := db.AddBook("Book", "Author")
	alice, _ := db.AddLender("Alice", "", "")
	bob, _ := db.AddLender("Bob", "", "")

	loanID, err := db.BorrowBook(alice, bookID)
	if err != nil {
		t.Fatalf("first borrow: %v", err)
	}

	// Second borrow of the same book must fail, regardless of who asks.
	if _, err := db.BorrowBook(bob, bookID); !errors.Is(err, ErrAlreadyBorrowed) {
		t.Fatalf("want ErrAlreadyBorrowed, got %v", err)
	}
	if _, err := db.BorrowBook(alice, bookID); !errors.Is(err, ErrAlreadyBorrowed) {
		t.Fatalf("want ErrAlreadyBorrowed for same lender, got %v", err)
	}

	// After the return, borrowing works again and creates a new record.
	if err := db.ReturnLoan(loanID); err != nil {
		t.Fatalf("return: %v", err)
	}
	second, err := db.BorrowBook(bob, bookID)
	if err != nil {
		t.Fatalf("borrow after return: %v", err)
	}
	if second == loanID {
		t.Fatalf("expected a fresh loan record, got reused id %d", loanID)
	}

	loans, _ := db.GetAllLoans()
	if len(loans) != 2 {
		t.Fatalf("want 2 loan records, got %d", len(loans))
	}
}

func TestBorrowUnknownReferences(t *testing.T) {
	db := tempDB(t)
	bookID, _ := db.AddBook("Book", "Author")
	lenderID, _ := db.AddLender("Alice", "", "")

	if _, err := db.BorrowBook(lenderID, 9999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound for unknown book, got %v", err)
	}
	if _, err := db.BorrowBook(9999, bookID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound for unknown lender, got %v", err)
	}

	// Failed borrows must not leave records behind.
	loans, _ := db.GetAllLoans()
	if len(loans) != 0 {
		t.Fatalf("want 0 loan records, got %d", len(loans))
	}
}

func TestReturnLoanNoOps(t *testing.T) {
	db := tempDB(t)
	bookID, _ := db.AddBook("Book", "Author")
	lenderID, _ := db.AddLender("Alice", "", "")

	// Unknown loan id: silently accepted.
	if err := db.ReturnLoan(12345); err != nil {
		t.Fatalf("return of unknown loan should be a no-op: %v", err)
	}

	loanID, _ := db.BorrowBook(lenderID, bookID)
	if err := db.ReturnLoan(loanID); err != nil {
		t.Fatalf("return: %v", err)
	}
	// Returning twice is idempotent.
	if err := db.ReturnLoan(loanID); err != nil {
		t.Fatalf("second return: %v", err)
	}
	loan, _ := db.GetLoan(loanID)
	if loan.Status != StatusReturned {
		t.Fatalf("want status returned, got %q", loan.Status)
	}
}

// activeLoanCount tallies active records per book straight off the ledger.
func activeLoanCount(t *testing.T, db *Database, bookID int64) int {
	t.Helper()
	loans, err := db.GetAllLoans()
	if err != nil {
		t.Fatalf("get loans: %v", err)
	}
	n := 0
	for _, l := range loans {
		if l.BookID == bookID && l.Active() {
			n++
		}
	}
	return n
}

func TestSingleActiveLoanInvariant(t *testing.T) {
	db := tempDB(t)
	bookID, _ := db.AddBook("Book", "Author")
	alice, _ := db.AddLender("Alice", "", "")
	bob, _ := db.AddLender("Bob", "", "")

	// Churn through borrow/return cycles with a failed borrow attempt in
	// each; the book never carries more than one active record.
	for i := 0; i < 5; i++ {
		loanID, err := db.BorrowBook(alice, bookID)
		if err != nil {
			t.Fatalf("cycle %d borrow: %v", i, err)
		}
		if _, err := db.BorrowBook(bob, bookID); !errors.Is(err, ErrAlreadyBorrowed) {
			t.Fatalf("cycle %d: want ErrAlreadyBorrowed, got %v", i, err)
		}
		if n := activeLoanCount(t, db, bookID); n != 1 {
			t.Fatalf("cycle %d: %d active loans", i, n)
		}
		if err := db.ReturnLoan(loanID); err != nil {
			t.Fatalf("cycle %d return: %v", i, err)
		}
		if n := activeLoanCount(t, db, bookID); n != 0 {
			t.Fatalf("cycle %d after return: %d active loans", i, n)
		}
	}

	loans, _ := db.GetAllLoans()
	if len(loans) != 5 {
		t.Fatalf("want 5 loan records, got %d", len(loans))
	}
}

// TestConcurrentBorrows checks the check-then-create transaction under
// simultaneous borrow attempts for the same book.
func TestConcurrentBorrows(t *testing.T) {
	db := tempDB(t)
	bookID, _ := db.AddBook("Contested", "Author")
	alice, _ := db.AddLender("Alice", "", "")
	bob, _ := db.AddLender("Bob", "", "")

	done1 := make(chan error, 1)
	done2 := make(chan error, 1)

	go func() {
		_, err := db.BorrowBook(alice, bookID)
		done1 <- err
	}()
	go func() {
		_, err := db.BorrowBook(bob, bookID)
		done2 <- err
	}()

	err1 := <-done1
	err2 := <-done2

	if err1 == nil && err2 == nil {
		t.Fatalf("both concurrent borrows succeeded")
	}
	if n := activeLoanCount(t, db, bookID); n > 1 {
		t.Fatalf("invariant violated: %d active loans", n)
	}
}
