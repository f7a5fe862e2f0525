package main

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"personal-library/library"
	"personal-library/pkg/logging"
)

var dbPath string

func main() {
	logging.Setup()
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "personal-library",
		Short:        "Track a personal book collection and who borrowed what",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(runShell)
		},
	}
	root.PersistentFlags().StringVar(&dbPath, "db", "library.db", "path to the SQLite database file")

	root.AddCommand(&cobra.Command{
		Use:   "export <file>",
		Short: "Export all books, lenders, and loans to a .xlsx workbook or .json document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(func(mgr *library.LibraryManager) error {
				if err := mgr.ExportFile(args[0]); err != nil {
					return err
				}
				slog.Info("library exported", "file", args[0])
				return nil
			})
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "import <file>",
		Short: "Replace the whole library with the contents of a .xlsx workbook or .json document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(func(mgr *library.LibraryManager) error {
				if err := mgr.ImportFile(args[0]); err != nil {
					return err
				}
				slog.Info("library imported", "file", args[0])
				return nil
			})
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete every book, lender, and loan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(func(mgr *library.LibraryManager) error {
				if err := mgr.ClearAll(); err != nil {
					return err
				}
				slog.Info("library cleared")
				return nil
			})
		},
	})

	return root
}

func withManager(fn func(*library.LibraryManager) error) error {
	mgr, err := library.NewLibraryManager(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer mgr.Close()
	return fn(mgr)
}

func runShell(mgr *library.LibraryManager) error {
	scanner := bufio.NewScanner(os.Stdin)

	fmt.Println("Welcome to the Personal Library!")
	fmt.Println("Available commands:")
	fmt.Println("  Books: add book, remove book, list books, available books")
	fmt.Println("  Lenders: add lender, remove lender, list lenders")
	fmt.Println("  Loans: borrow, return, active loans, most borrowed, least borrowed")
	fmt.Println("  Data: export, import, clear")
	fmt.Println("  System: exit")

	for {
		fmt.Print("\n> ")
		if !scanner.Scan() {
			return nil
		}
		cmd := strings.TrimSpace(scanner.Text())

		switch cmd {
		case "add book":
			handleAddBook(scanner, mgr)
		case "remove book":
			handleRemoveBook(scanner, mgr)
		case "list books":
			handleListBooks(mgr.GetAllBooks)
		case "available books":
			handleListBooks(mgr.AvailableBooks)
		case "add lender":
			handleAddLender(scanner, mgr)
		case "remove lender":
			handleRemoveLender(scanner, mgr)
		case "list lenders":
			handleListLenders(mgr)
		case "borrow":
			handleBorrow(scanner, mgr)
		case "return":
			handleReturn(scanner, mgr)
		case "active loans":
			handleActiveLoans(mgr)
		case "most borrowed":
			handleBorrowStats(mgr.MostBorrowedBook, "Most")
		case "least borrowed":
			handleBorrowStats(mgr.LeastBorrowedBook, "Least")
		case "export":
			handleExport(scanner, mgr)
		case "import":
			handleImport(scanner, mgr)
		case "clear":
			handleClear(scanner, mgr)
		case "exit":
			fmt.Println("Goodbye!")
			return nil
		default:
			fmt.Println("Unknown command. Type one of the available commands listed above.")
		}
	}
}

// prompt prints label, reads one line, and reports false if input ended.
func prompt(sc *bufio.Scanner, label string) (string, bool) {
	fmt.Print(label)
	if !sc.Scan() {
		return "", false
	}
	return strings.TrimSpace(sc.Text()), true
}

func promptID(sc *bufio.Scanner, label string) (int64, bool) {
	text, ok := prompt(sc, label)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		fmt.Printf("Invalid ID: %s\n", text)
		return 0, false
	}
	return id, true
}

func handleAddBook(sc *bufio.Scanner, mgr *library.LibraryManager) {
	title, ok := prompt(sc, "Title: ")
	if !ok {
		return
	}
	author, ok := prompt(sc, "Author: ")
	if !ok {
		return
	}

	id, err := mgr.AddBook(title, author)
	if err != nil {
		fmt.Printf("Error adding book: %v\n", err)
		return
	}
	fmt.Printf("Added book ID %d\n", id)
}

func handleRemoveBook(sc *bufio.Scanner, mgr *library.LibraryManager) {
	id, ok := promptID(sc, "Book ID: ")
	if !ok {
		return
	}
	if err := mgr.RemoveBook(id); err != nil {
		fmt.Printf("Error removing book: %v\n", err)
		return
	}
	fmt.Printf("Removed book ID %d (if it existed)\n", id)
}

func handleListBooks(list func() ([]*library.Book, error)) {
	books, err := list()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if len(books) == 0 {
		fmt.Println("No books.")
		return
	}

	fmt.Printf("%-5s %-30s %-25s %-12s\n", "ID", "Title", "Author", "Added")
	fmt.Println(strings.Repeat("-", 75))
	for _, b := range books {
		fmt.Printf("%-5d %-30s %-25s %-12s\n", b.ID, b.Title, b.Author, b.AddedDate)
	}
}

func handleAddLender(sc *bufio.Scanner, mgr *library.LibraryManager) {
	name, ok := prompt(sc, "Name: ")
	if !ok {
		return
	}
	address, ok := prompt(sc, "Address (optional): ")
	if !ok {
		return
	}
	mobile, ok := prompt(sc, "Mobile (optional): ")
	if !ok {
		return
	}

	id, err := mgr.AddLender(name, address, mobile)
	if err != nil {
		fmt.Printf("Error adding lender: %v\n", err)
		return
	}
	fmt.Printf("Added lender '%s' with ID %d\n", name, id)
}

func handleRemoveLender(sc *bufio.Scanner, mgr *library.LibraryManager) {
	id, ok := promptID(sc, "Lender ID: ")
	if !ok {
		return
	}
	if err := mgr.RemoveLender(id); err != nil {
		fmt.Printf("Error removing lender: %v\n", err)
		return
	}
	fmt.Printf("Removed lender ID %d (if it existed)\n", id)
}

func handleListLenders(mgr *library.LibraryManager) {
	lenders, err := mgr.GetAllLenders()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if len(lenders) == 0 {
		fmt.Println("No lenders registered.")
		return
	}

	fmt.Printf("%-5s %-25s %-30s %-15s\n", "ID", "Name", "Address", "Mobile")
	fmt.Println(strings.Repeat("-", 80))
	for _, l := range lenders {
		fmt.Printf("%-5d %-25s %-30s %-15s\n", l.ID, l.Name, l.Address, l.Mobile)
	}
}

func handleBorrow(sc *bufio.Scanner, mgr *library.LibraryManager) {
	lenderID, ok := promptID(sc, "Lender ID: ")
	if !ok {
		return
	}
	bookID, ok := promptID(sc, "Book ID: ")
	if !ok {
		return
	}

	loanID, err := mgr.BorrowBook(lenderID, bookID)
	switch {
	case errors.Is(err, library.ErrAlreadyBorrowed):
		fmt.Println("That book is already out on loan.")
	case errors.Is(err, library.ErrNotFound):
		fmt.Printf("Error: %v\n", err)
	case err != nil:
		fmt.Printf("Error borrowing book: %v\n", err)
	default:
		fmt.Printf("Borrowed. Loan ID %d\n", loanID)
	}
}

func handleReturn(sc *bufio.Scanner, mgr *library.LibraryManager) {
	loanID, ok := promptID(sc, "Loan ID: ")
	if !ok {
		return
	}
	if err := mgr.ReturnLoan(loanID); err != nil {
		fmt.Printf("Error returning loan: %v\n", err)
		return
	}
	fmt.Printf("Loan %d marked returned\n", loanID)
}

func handleActiveLoans(mgr *library.LibraryManager) {
	loans, err := mgr.ActiveLoans()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if len(loans) == 0 {
		fmt.Println("No books are currently on loan.")
		return
	}

	fmt.Printf("%-8s %-30s %-25s %-25s %-15s\n", "Loan", "Title", "Author", "Lender", "Mobile")
	fmt.Println(strings.Repeat("-", 110))
	for _, d := range loans {
		fmt.Printf("%-8d %-30s %-25s %-25s %-15s\n",
			d.LoanID, d.Book.Title, d.Book.Author, d.Lender.Name, d.Lender.Mobile)
	}
}

func handleBorrowStats(query func() (*library.BookBorrowStats, error), label string) {
	stats, err := query()
	if errors.Is(err, library.ErrNotFound) {
		fmt.Println("No loans recorded yet.")
		return
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("%s borrowed: '%s' by %s (ID %d, borrowed %d time(s))\n",
		label, stats.Book.Title, stats.Book.Author, stats.Book.ID, stats.Count)
}

func handleExport(sc *bufio.Scanner, mgr *library.LibraryManager) {
	path, ok := prompt(sc, "Export to (.xlsx or .json): ")
	if !ok {
		return
	}
	if err := mgr.ExportFile(path); err != nil {
		fmt.Printf("Error exporting: %v\n", err)
		return
	}
	fmt.Printf("Exported library to %s\n", path)
}

func handleImport(sc *bufio.Scanner, mgr *library.LibraryManager) {
	path, ok := prompt(sc, "Import from (.xlsx or .json): ")
	if !ok {
		return
	}
	err := mgr.ImportFile(path)
	switch {
	case errors.Is(err, library.ErrImportFormat):
		fmt.Printf("Import rejected, nothing changed: %v\n", err)
	case err != nil:
		fmt.Printf("Error importing: %v\n", err)
	default:
		fmt.Printf("Imported library from %s\n", path)
	}
}

func handleClear(sc *bufio.Scanner, mgr *library.LibraryManager) {
	confirm, ok := prompt(sc, "Delete ALL books, lenders, and loans? (yes/no): ")
	if !ok || !strings.EqualFold(confirm, "yes") {
		fmt.Println("Aborted.")
		return
	}
	if err := mgr.ClearAll(); err != nil {
		fmt.Printf("Error clearing library: %v\n", err)
		return
	}
	fmt.Println("Library cleared.")
}
