// Command seed_library rebuilds a demo database from scratch: a handful of
// books and lenders, a few borrow/return cycles, and an export of the
// result in both supported formats.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"personal-library/library"
	"personal-library/pkg/logging"
)

func main() {
	logging.Setup()

	// Clean up any existing database files
	dbFiles := []string{"library.db", "library.db-shm", "library.db-wal"}
	for _, file := range dbFiles {
		if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
			slog.Warn("could not remove file", "file", file, "err", err)
		}
	}

	mgr, err := library.NewLibraryManager("library.db")
	if err != nil {
		slog.Error("create database", "err", err)
		os.Exit(1)
	}
	defer mgr.Close()

	books := [][2]string{
		{"1984", "George Orwell"},
		{"Animal Farm", "George Orwell"},
		{"The Art of War", "Sun Tzu"},
		{"The Fellowship of the Ring", "J.R.R. Tolkien"},
		{"Romeo and Juliet", "William Shakespeare"},
		{"The Three Musketeers", "Alexandre Dumas"},
	}
	bookIDs := make([]int64, 0, len(books))
	for _, b := range books {
		id, err := mgr.AddBook(b[0], b[1])
		if err != nil {
			slog.Error("add book", "title", b[0], "err", err)
			os.Exit(1)
		}
		bookIDs = append(bookIDs, id)
	}

	lenders := [][3]string{
		{"Alice Carter", "12 Elm Street", "555-0101"},
		{"Bob Mensah", "", "555-0102"},
		{"Charlie Novak", "3 Pine Road", ""},
	}
	lenderIDs := make([]int64, 0, len(lenders))
	for _, l := range lenders {
		id, err := mgr.AddLender(l[0], l[1], l[2])
		if err != nil {
			slog.Error("add lender", "name", l[0], "err", err)
			os.Exit(1)
		}
		lenderIDs = append(lenderIDs, id)
	}

	// Borrow/return history: book 0 goes out and comes back twice, book 1
	// stays out.
	for _, lender := range []int64{lenderIDs[0], lenderIDs[1]} {
		loanID, err := mgr.BorrowBook(lender, bookIDs[0])
		if err != nil {
			slog.Error("borrow", "err", err)
			os.Exit(1)
		}
		if err := mgr.ReturnLoan(loanID); err != nil {
			slog.Error("return", "err", err)
			os.Exit(1)
		}
	}
	if _, err := mgr.BorrowBook(lenderIDs[2], bookIDs[1]); err != nil {
		slog.Error("borrow", "err", err)
		os.Exit(1)
	}

	available, err := mgr.AvailableBooks()
	if err != nil {
		slog.Error("available books", "err", err)
		os.Exit(1)
	}
	active, err := mgr.ActiveLoans()
	if err != nil {
		slog.Error("active loans", "err", err)
		os.Exit(1)
	}
	fmt.Printf("Seeded %d books, %d lenders\n", len(bookIDs), len(lenderIDs))
	fmt.Printf("Available books: %d, active loans: %d\n", len(available), len(active))

	if most, err := mgr.MostBorrowedBook(); err == nil {
		fmt.Printf("Most borrowed: %s (%d times)\n", most.Book.Title, most.Count)
	}

	for _, out := range []string{"library_export.xlsx", "library_export.json"} {
		if err := mgr.ExportFile(out); err != nil {
			slog.Error("export", "file", out, "err", err)
			os.Exit(1)
		}
		slog.Info("exported", "file", out)
	}
}
