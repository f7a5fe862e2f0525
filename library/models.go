package library

// LoanStatus is the lifecycle state of a loan record. A record is created
// active and transitions to returned exactly once; it is never deleted
// individually.
type LoanStatus string

const (
	StatusActive   LoanStatus = "active"
	StatusReturned LoanStatus = "returned"
)

// Book is a catalog entry. AddedDate is stamped at creation (YYYY-MM-DD)
// and never changes afterwards.
type Book struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	AddedDate string `json:"added_date"`
}

// Lender is someone who may borrow books. Address and Mobile are optional;
// an empty string means not provided.
type Lender struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Mobile  string `json:"mobile"`
}

// Loan is a single borrow event tying a lender to a book.
type Loan struct {
	ID       int64      `json:"id"`
	LenderID int64      `json:"lender_id"`
	BookID   int64      `json:"book_id"`
	Status   LoanStatus `json:"status"`
}

// Active reports whether the loan has not been returned yet.
func (l *Loan) Active() bool { return l.Status == StatusActive }

// LoanDetail is an active loan joined with the book and lender it references.
type LoanDetail struct {
	LoanID int64  `json:"loan_id"`
	Book   Book   `json:"book"`
	Lender Lender `json:"lender"`
}

// BookBorrowStats pairs a book with how many times it has ever been
// borrowed, counting both active and returned loans.
type BookBorrowStats struct {
	Book  Book  `json:"book"`
	Count int64 `json:"count"`
}

// Snapshot is the complete persisted state: every book, lender, and loan
// with their ids. Used by export/import, which must round-trip ids exactly.
type Snapshot struct {
	Books   []*Book   `json:"books"`
	Lenders []*Lender `json:"lenders"`
	Loans   []*Loan   `json:"loans"`
}
