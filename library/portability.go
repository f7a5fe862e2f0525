package library

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/xuri/excelize/v2"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	sheetBooks   = "books"
	sheetLenders = "lenders"
	sheetLoans   = "loans"
)

// Snapshot reads the complete store state in one transaction. The returned
// collections are never nil, so an empty store exports as empty sections
// rather than missing ones.
func (d *Database) Snapshot() (*Snapshot, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	snap := &Snapshot{Books: []*Book{}, Lenders: []*Lender{}, Loans: []*Loan{}}

	rows, err := tx.Query(`SELECT id,title,author,added_date FROM books ORDER BY id`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var b Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.AddedDate); err != nil {
			rows.Close()
			return nil, err
		}
		snap.Books = append(snap.Books, &b)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = tx.Query(`SELECT id,name,address,mobile FROM lenders ORDER BY id`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var l Lender
		if err := rows.Scan(&l.ID, &l.Name, &l.Address, &l.Mobile); err != nil {
			rows.Close()
			return nil, err
		}
		snap.Lenders = append(snap.Lenders, &l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = tx.Query(`SELECT id,lender_id,book_id,status FROM loans ORDER BY id`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var l Loan
		if err := rows.Scan(&l.ID, &l.LenderID, &l.BookID, &l.Status); err != nil {
			rows.Close()
			return nil, err
		}
		snap.Loans = append(snap.Loans, &l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return snap, tx.Commit()
}

// Replace wholly swaps the store contents for the snapshot: delete-all then
// insert-all with verbatim ids, in one transaction. On failure the prior
// state is left intact.
func (d *Database) Replace(snap *Snapshot) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM loans`,
		`DELETE FROM books`,
		`DELETE FROM lenders`,
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("replace: %w", err)
		}
	}

	// Reset id assignment. sqlite_sequence only exists once an
	// autoincrement insert has happened.
	var hasSeq bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM sqlite_master WHERE type='table' AND name='sqlite_sequence')`).Scan(&hasSeq); err != nil {
		return err
	}
	if hasSeq {
		if _, err := tx.Exec(`DELETE FROM sqlite_sequence WHERE name IN ('books','lenders','loans')`); err != nil {
			return fmt.Errorf("replace: %w", err)
		}
	}

	for _, b := range snap.Books {
		if _, err := tx.Exec(`INSERT INTO books(id,title,author,added_date) VALUES(?,?,?,?)`,
			b.ID, b.Title, b.Author, b.AddedDate); err != nil {
			return fmt.Errorf("insert book %d: %w", b.ID, err)
		}
	}
	for _, l := range snap.Lenders {
		if _, err := tx.Exec(`INSERT INTO lenders(id,name,address,mobile) VALUES(?,?,?,?)`,
			l.ID, l.Name, l.Address, l.Mobile); err != nil {
			return fmt.Errorf("insert lender %d: %w", l.ID, err)
		}
	}
	for _, l := range snap.Loans {
		if _, err := tx.Exec(`INSERT INTO loans(id,lender_id,book_id,status) VALUES(?,?,?,?)`,
			l.ID, l.LenderID, l.BookID, l.Status); err != nil {
			return fmt.Errorf("insert loan %d: %w", l.ID, err)
		}
	}

	return tx.Commit()
}

// Clear deletes every book, lender, and loan in one transaction and resets
// id assignment.
func (d *Database) Clear() error {
	return d.Replace(&Snapshot{})
}

// ---------------------------------------------------------------------------
// File formats
// ---------------------------------------------------------------------------

// ExportFile writes the full store state to path. The format is chosen by
// extension: .xlsx for a three-sheet workbook, .json for a structured
// document.
func (d *Database) ExportFile(path string) error {
	snap, err := d.Snapshot()
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return writeWorkbook(path, snap)
	case ".json":
		return writeDocument(path, snap)
	default:
		return fmt.Errorf("export format %q: %w", filepath.Ext(path), ErrUnsupportedFormat)
	}
}

// ImportFile replaces the full store state with the contents of path.
// Consumes the same two shapes ExportFile produces. The store is not
// touched unless the whole source parses.
func (d *Database) ImportFile(path string) error {
	var (
		snap *Snapshot
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		snap, err = readWorkbook(path)
	case ".json":
		snap, err = readDocument(path)
	default:
		return fmt.Errorf("unsupported import format %q: %w", filepath.Ext(path), ErrImportFormat)
	}
	if err != nil {
		return err
	}
	return d.Replace(snap)
}

// writeDocument serializes the snapshot as a single JSON object with three
// named top-level collections.
func writeDocument(path string, snap *Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrIO, path, err)
	}
	return nil
}

// jsonDocument mirrors Snapshot with pointer sections so a missing key can
// be told apart from an empty one. Unknown extra keys are ignored.
type jsonDocument struct {
	Books   *[]*Book   `json:"books"`
	Lenders *[]*Lender `json:"lenders"`
	Loans   *[]*Loan   `json:"loans"`
}

func readDocument(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrIO, path, err)
	}

	var doc jsonDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportFormat, err)
	}
	for name, missing := range map[string]bool{
		sheetBooks:   doc.Books == nil,
		sheetLenders: doc.Lenders == nil,
		sheetLoans:   doc.Loans == nil,
	} {
		if missing {
			return nil, fmt.Errorf("%w: missing %q collection", ErrImportFormat, name)
		}
	}

	snap := &Snapshot{Books: *doc.Books, Lenders: *doc.Lenders, Loans: *doc.Loans}
	// A JSON null inside a collection unmarshals to a nil element; reject
	// it as malformed rather than letting it slip through to the store.
	for _, b := range snap.Books {
		if b == nil {
			return nil, fmt.Errorf("%w: null entry in %q collection", ErrImportFormat, sheetBooks)
		}
	}
	for _, l := range snap.Lenders {
		if l == nil {
			return nil, fmt.Errorf("%w: null entry in %q collection", ErrImportFormat, sheetLenders)
		}
	}
	for _, l := range snap.Loans {
		if l == nil {
			return nil, fmt.Errorf("%w: null entry in %q collection", ErrImportFormat, sheetLoans)
		}
		if _, err := parseStatus(string(l.Status)); err != nil {
			return nil, err
		}
	}
	return snap, nil
}

// writeWorkbook serializes the snapshot as an xlsx workbook with one sheet
// per collection, header row first, one row per entity in listing order.
func writeWorkbook(path string, snap *Snapshot) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetBooks); err != nil {
		return err
	}
	if _, err := f.NewSheet(sheetLenders); err != nil {
		return err
	}
	if _, err := f.NewSheet(sheetLoans); err != nil {
		return err
	}

	rows := [][]interface{}{{"id", "title", "author", "added_date"}}
	for _, b := range snap.Books {
		rows = append(rows, []interface{}{b.ID, b.Title, b.Author, b.AddedDate})
	}
	if err := writeSheet(f, sheetBooks, rows); err != nil {
		return err
	}

	rows = [][]interface{}{{"id", "name", "address", "mobile"}}
	for _, l := range snap.Lenders {
		rows = append(rows, []interface{}{l.ID, l.Name, l.Address, l.Mobile})
	}
	if err := writeSheet(f, sheetLenders, rows); err != nil {
		return err
	}

	rows = [][]interface{}{{"id", "lender_id", "book_id", "status"}}
	for _, l := range snap.Loans {
		rows = append(rows, []interface{}{l.ID, l.LenderID, l.BookID, string(l.Status)})
	}
	if err := writeSheet(f, sheetLoans, rows); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrIO, path, err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func readWorkbook(path string) (*Snapshot, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrIO, path, err)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportFormat, err)
	}
	defer f.Close()

	snap := &Snapshot{}

	bookRows, err := sheetRows(f, sheetBooks)
	if err != nil {
		return nil, err
	}
	for _, row := range bookRows {
		id, err := parseID(cell(row, 0), sheetBooks)
		if err != nil {
			return nil, err
		}
		snap.Books = append(snap.Books, &Book{
			ID:        id,
			Title:     cell(row, 1),
			Author:    cell(row, 2),
			AddedDate: cell(row, 3),
		})
	}

	lenderRows, err := sheetRows(f, sheetLenders)
	if err != nil {
		return nil, err
	}
	for _, row := range lenderRows {
		id, err := parseID(cell(row, 0), sheetLenders)
		if err != nil {
			return nil, err
		}
		snap.Lenders = append(snap.Lenders, &Lender{
			ID:      id,
			Name:    cell(row, 1),
			Address: cell(row, 2),
			Mobile:  cell(row, 3),
		})
	}

	loanRows, err := sheetRows(f, sheetLoans)
	if err != nil {
		return nil, err
	}
	for _, row := range loanRows {
		id, err := parseID(cell(row, 0), sheetLoans)
		if err != nil {
			return nil, err
		}
		lenderID, err := parseID(cell(row, 1), sheetLoans)
		if err != nil {
			return nil, err
		}
		bookID, err := parseID(cell(row, 2), sheetLoans)
		if err != nil {
			return nil, err
		}
		status, err := parseStatus(cell(row, 3))
		if err != nil {
			return nil, err
		}
		snap.Loans = append(snap.Loans, &Loan{ID: id, LenderID: lenderID, BookID: bookID, Status: status})
	}

	return snap, nil
}

// sheetRows returns the data rows of a required sheet, skipping the header.
// A missing sheet is a format error; extra unrelated sheets are ignored by
// never being read.
func sheetRows(f *excelize.File, sheet string) ([][]string, error) {
	idx, err := f.GetSheetIndex(sheet)
	if err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: missing %q sheet", ErrImportFormat, sheet)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportFormat, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	var data [][]string
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		data = append(data, row)
	}
	return data, nil
}

// cell tolerates short rows: xlsx readers drop trailing empty cells.
func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return row[i]
}

func parseID(s, sheet string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad id %q in %q sheet", ErrImportFormat, s, sheet)
	}
	return id, nil
}

func parseStatus(s string) (LoanStatus, error) {
	switch LoanStatus(strings.ToLower(strings.TrimSpace(s))) {
	case StatusActive:
		return StatusActive, nil
	case StatusReturned:
		return StatusReturned, nil
	default:
		return "", fmt.Errorf("%w: unknown loan status %q", ErrImportFormat, s)
	}
}
