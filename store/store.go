// Package store bootstraps the queryable SQLite catalogue from the CSV
// artifact produced by the crawler.
package store

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/aluiziolira/go-books-etl/models"

	_ "modernc.org/sqlite"
)

const createBooksTableSQL = `
CREATE TABLE IF NOT EXISTS books (
    id INTEGER PRIMARY KEY,
    title TEXT NOT NULL,
    price REAL NOT NULL,
    currency TEXT NOT NULL,
    rating INTEGER NOT NULL,
    availability TEXT NOT NULL,
    category TEXT NOT NULL,
    product_page_url TEXT NOT NULL,
    image_url TEXT NOT NULL,
    description TEXT,
    upc TEXT,
    stock INTEGER
);`

var createBooksIndexSQL = []string{
	"CREATE INDEX IF NOT EXISTS idx_books_category ON books(category);",
	"CREATE INDEX IF NOT EXISTS idx_books_rating ON books(rating);",
	"CREATE INDEX IF NOT EXISTS idx_books_title ON books(title);",
}

// model_predictions is an append-only log owned by the ML serving glue; only
// its schema lives here.
const createPredictionsTableSQL = `
CREATE TABLE IF NOT EXISTS model_predictions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    model_name TEXT NOT NULL,
    model_version TEXT,
    created_at TEXT NOT NULL,
    payload TEXT NOT NULL
);`

var createPredictionsIndexSQL = []string{
	"CREATE INDEX IF NOT EXISTS idx_predictions_model_name ON model_predictions(model_name);",
	"CREATE INDEX IF NOT EXISTS idx_predictions_created_at ON model_predictions(created_at);",
}

const upsertBookSQL = `
INSERT OR REPLACE INTO books (
    id, title, price, currency, rating, availability, category,
    product_page_url, image_url, description, upc, stock
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// requiredColumns lists every column the artifact header must carry.
var requiredColumns = []string{
	"id",
	"title",
	"price",
	"currency",
	"rating",
	"availability",
	"category",
	"product_page_url",
	"image_url",
	"description",
	"upc",
	"stock",
}

// EnsureStore creates or refreshes the SQLite catalogue at dbPath from the
// CSV artifact at artifactPath.
//
// With forceRebuild an existing store is deleted first. An existing store
// without forceRebuild is left untouched apart from re-asserting the schema,
// so a pre-built store can be opened without re-reading the artifact.
// Otherwise the artifact is fully parsed up front (any malformed row aborts
// before the store file is created) and loaded in a single transaction with
// replace-on-conflict semantics keyed by id, making repeated bootstraps
// idempotent.
func EnsureStore(artifactPath, dbPath string, forceRebuild bool) error {
	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create store directory: %w", err)
		}
	}

	if forceRebuild {
		if _, err := os.Stat(dbPath); err == nil {
			slog.Info("removing existing store", slog.String("path", dbPath))
			if err := os.Remove(dbPath); err != nil {
				return fmt.Errorf("remove existing store: %w", err)
			}
		}
	}

	if _, err := os.Stat(dbPath); err == nil {
		slog.Debug("store already present, re-asserting schema", slog.String("path", dbPath))
		db, err := openStore(dbPath)
		if err != nil {
			return err
		}
		defer db.Close()
		return ensureSchema(db)
	}

	if _, err := os.Stat(artifactPath); err != nil {
		return &MissingArtifactError{Path: artifactPath}
	}

	slog.Info("bootstrapping store from artifact",
		slog.String("artifact", artifactPath),
		slog.String("store", dbPath),
	)

	records, err := readArtifact(artifactPath)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return &EmptyDatasetError{Path: artifactPath}
	}

	if err := writeRecords(dbPath, records); err != nil {
		return err
	}

	slog.Info("store created", slog.Int("records", len(records)), slog.String("path", dbPath))
	return nil
}

func openStore(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", dbPath, err)
	}
	// Single exclusive connection for the duration of the bootstrap phase.
	db.SetMaxOpenConns(1)
	return db, nil
}

func ensureSchema(db *sql.DB) error {
	statements := make([]string, 0, 2+len(createBooksIndexSQL)+len(createPredictionsIndexSQL))
	statements = append(statements, createBooksTableSQL)
	statements = append(statements, createBooksIndexSQL...)
	statements = append(statements, createPredictionsTableSQL)
	statements = append(statements, createPredictionsIndexSQL...)

	for _, statement := range statements {
		if _, err := db.Exec(statement); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// readArtifact parses the whole artifact before any store write. Row-level
// parse failures are fatal: a malformed artifact must not produce a partial
// dataset.
func readArtifact(artifactPath string) ([]*models.BookRecord, error) {
	f, err := os.Open(artifactPath)
	if err != nil {
		return nil, fmt.Errorf("open artifact: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err == io.EOF {
		return nil, &EmptyDatasetError{Path: artifactPath}
	}
	if err != nil {
		return nil, fmt.Errorf("read artifact header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	var missing []string
	for _, name := range requiredColumns {
		if _, ok := index[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &SchemaMismatchError{Path: artifactPath, Missing: missing}
	}

	var records []*models.BookRecord
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read artifact row %d: %w", line, err)
		}
		record, err := parseRow(row, index)
		if err != nil {
			return nil, fmt.Errorf("artifact row %d: %w", line, err)
		}
		records = append(records, record)
	}
	return records, nil
}

func parseRow(row []string, index map[string]int) (*models.BookRecord, error) {
	field := func(name string) string {
		i := index[name]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	id, err := strconv.Atoi(field("id"))
	if err != nil {
		return nil, fmt.Errorf("invalid id %q: %w", field("id"), err)
	}
	price, err := strconv.ParseFloat(field("price"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid price %q: %w", field("price"), err)
	}
	rating, err := strconv.Atoi(field("rating"))
	if err != nil {
		return nil, fmt.Errorf("invalid rating %q: %w", field("rating"), err)
	}

	currency := field("currency")
	if currency == "" {
		currency = "GBP"
	}

	record := &models.BookRecord{
		ID:             id,
		Title:          field("title"),
		Price:          price,
		Currency:       currency,
		Rating:         rating,
		Availability:   field("availability"),
		Category:       field("category"),
		ProductPageURL: field("product_page_url"),
		ImageURL:       field("image_url"),
	}

	if description := field("description"); description != "" {
		record.Description = &description
	}
	if upc := field("upc"); upc != "" {
		record.UPC = &upc
	}
	if stockText := field("stock"); stockText != "" {
		stock, err := strconv.Atoi(stockText)
		if err != nil {
			return nil, fmt.Errorf("invalid stock %q: %w", stockText, err)
		}
		record.Stock = &stock
	}

	return record, nil
}

// writeRecords creates the schema and loads every record in one transaction,
// committed once at the end.
func writeRecords(dbPath string, records []*models.BookRecord) error {
	db, err := openStore(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := ensureSchema(db); err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin load transaction: %w", err)
	}

	stmt, err := tx.Prepare(upsertBookSQL)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, record := range records {
		_, err := stmt.Exec(
			record.ID,
			record.Title,
			record.Price,
			record.Currency,
			record.Rating,
			record.Availability,
			record.Category,
			record.ProductPageURL,
			record.ImageURL,
			record.Description,
			record.UPC,
			record.Stock,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("upsert record %d: %w", record.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit load transaction: %w", err)
	}
	return nil
}
