package library

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailableBooks(t *testing.T) {
	db := tempDB(t)
	b1, _ := db.AddBook("B1", "A1")
	b2, _ := db.AddBook("B2", "A2")
	lender, _ := db.AddLender("Alice", "", "")

	books, err := db.AvailableBooks()
	require.NoError(t, err)
	require.Len(t, books, 2, "nothing borrowed yet")

	loanID, err := db.BorrowBook(lender, b1)
	require.NoError(t, err)

	books, err = db.AvailableBooks()
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, b2, books[0].ID)

	// Returning the loan puts the book straight back in the available set.
	require.NoError(t, db.ReturnLoan(loanID))
	books, err = db.AvailableBooks()
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, b1, books[0].ID)
}

func TestActiveLoansJoinsLenderDetail(t *testing.T) {
	db := tempDB(t)
	bookID, _ := db.AddBook("The Art of War", "Sun Tzu")
	lenderID, _ := db.AddLender("Charlie", "3 Pine Road", "555-0103")

	loanID, err := db.BorrowBook(lenderID, bookID)
	require.NoError(t, err)

	details, err := db.ActiveLoans()
	require.NoError(t, err)
	require.Len(t, details, 1)

	d := details[0]
	assert.Equal(t, loanID, d.LoanID)
	assert.Equal(t, "The Art of War", d.Book.Title)
	assert.Equal(t, "Sun Tzu", d.Book.Author)
	assert.Equal(t, "Charlie", d.Lender.Name)
	assert.Equal(t, "3 Pine Road", d.Lender.Address)
	assert.Equal(t, "555-0103", d.Lender.Mobile)
}

func TestActiveLoansDropRemovedEntities(t *testing.T) {
	db := tempDB(t)
	bookID, _ := db.AddBook("Book", "Author")
	lenderID, _ := db.AddLender("Alice", "", "")

	_, err := db.BorrowBook(lenderID, bookID)
	require.NoError(t, err)
	require.NoError(t, db.RemoveBook(bookID))

	details, err := db.ActiveLoans()
	require.NoError(t, err)
	assert.Empty(t, details, "loan referencing a removed book drops out of the join")

	// The ledger itself still holds the record.
	loans, err := db.GetAllLoans()
	require.NoError(t, err)
	assert.Len(t, loans, 1)
}

func TestMostAndLeastBorrowed(t *testing.T) {
	db := tempDB(t)
	b1, _ := db.AddBook("B1", "A1")
	b2, _ := db.AddBook("B2", "A2")
	alice, _ := db.AddLender("Alice", "", "")
	bob, _ := db.AddLender("Bob", "", "")

	// b1: borrowed and returned twice, by two different lenders.
	for _, lender := range []int64{alice, bob} {
		loanID, err := db.BorrowBook(lender, b1)
		require.NoError(t, err)
		require.NoError(t, db.ReturnLoan(loanID))
	}
	// b2: borrowed once, still out.
	_, err := db.BorrowBook(alice, b2)
	require.NoError(t, err)

	// Returned loans count: b1 outranks b2 despite having nothing active.
	most, err := db.MostBorrowedBook()
	require.NoError(t, err)
	assert.Equal(t, b1, most.Book.ID)
	assert.EqualValues(t, 2, most.Count)

	least, err := db.LeastBorrowedBook()
	require.NoError(t, err)
	assert.Equal(t, b2, least.Book.ID)
	assert.EqualValues(t, 1, least.Count)
}

func TestLeastBorrowedCountsNeverBorrowedAsZero(t *testing.T) {
	db := tempDB(t)
	b1, _ := db.AddBook("B1", "A1")
	b2, _ := db.AddBook("B2", "A2")
	lender, _ := db.AddLender("Alice", "", "")

	_, err := db.BorrowBook(lender, b1)
	require.NoError(t, err)

	least, err := db.LeastBorrowedBook()
	require.NoError(t, err)
	assert.Equal(t, b2, least.Book.ID)
	assert.EqualValues(t, 0, least.Count)
}

func TestBorrowStatsTieBreakLowestID(t *testing.T) {
	db := tempDB(t)
	b1, _ := db.AddBook("B1", "A1")
	b2, _ := db.AddBook("B2", "A2")
	lender, _ := db.AddLender("Alice", "", "")

	// One loan each: a tie on count both ways.
	for _, book := range []int64{b1, b2} {
		loanID, err := db.BorrowBook(lender, book)
		require.NoError(t, err)
		require.NoError(t, db.ReturnLoan(loanID))
	}

	most, err := db.MostBorrowedBook()
	require.NoError(t, err)
	assert.Equal(t, b1, most.Book.ID)

	least, err := db.LeastBorrowedBook()
	require.NoError(t, err)
	assert.Equal(t, b1, least.Book.ID)
}

func TestBorrowStatsEmpty(t *testing.T) {
	db := tempDB(t)

	// No loans at all: most borrowed is undefined.
	_, err := db.MostBorrowedBook()
	assert.ErrorIs(t, err, ErrNotFound)

	// No books at all: least borrowed is undefined too.
	_, err = db.LeastBorrowedBook()
	assert.ErrorIs(t, err, ErrNotFound)

	// Books exist but were never borrowed: most stays undefined, least
	// picks the lowest id with count zero.
	b1, _ := db.AddBook("B1", "A1")
	_, _ = db.AddBook("B2", "A2")

	_, err = db.MostBorrowedBook()
	assert.ErrorIs(t, err, ErrNotFound)

	least, err := db.LeastBorrowedBook()
	require.NoError(t, err)
	assert.Equal(t, b1, least.Book.ID)
	assert.EqualValues(t, 0, least.Count)
}
