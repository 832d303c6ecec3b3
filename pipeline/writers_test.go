package pipeline

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/aluiziolira/go-books-etl/models"
)

func sampleRecord() *models.BookRecord {
	upc := "a897fe39b1053632"
	stock := 22
	description := "A quiet novel."
	return &models.BookRecord{
		ID:             1,
		Title:          "A Light in the Attic",
		Price:          51.77,
		Currency:       "GBP",
		Rating:         3,
		Availability:   "In stock",
		Category:       "Poetry",
		ProductPageURL: "http://books.test/catalogue/a-light-in-the-attic_1000/index.html",
		ImageURL:       "http://books.test/media/cache/fe/72/cover.jpg",
		Description:    &description,
		UPC:            &upc,
		Stock:          &stock,
	}
}

func TestCSVWriterColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "books.csv")

	writer, err := NewCSVWriter(path)
	if err != nil {
		t.Fatalf("create csv writer: %v", err)
	}

	sparse := &models.BookRecord{
		ID:             2,
		Title:          "Soumission",
		Price:          50,
		Currency:       "GBP",
		Rating:         1,
		Availability:   "In stock",
		Category:       "Fiction",
		ProductPageURL: "http://books.test/catalogue/soumission_998/index.html",
		ImageURL:       "http://books.test/media/cache/da/cover.jpg",
	}

	if err := writer.Write([]*models.BookRecord{sampleRecord(), sparse}); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	if err := writer.Validate(); err != nil {
		t.Fatalf("validate csv: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close csv: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows=%d, want 3", len(rows))
	}
	if !reflect.DeepEqual(rows[0], ArtifactColumns) {
		t.Fatalf("unexpected header: %v", rows[0])
	}
	if rows[1][2] != "51.77" {
		t.Fatalf("price serialized as %q, want 51.77", rows[1][2])
	}
	if rows[1][11] != "22" || rows[1][10] != "a897fe39b1053632" {
		t.Fatalf("unexpected optional columns: %v", rows[1])
	}
	// Nil optionals must serialize as empty fields.
	if rows[2][9] != "" || rows[2][10] != "" || rows[2][11] != "" {
		t.Fatalf("nil optionals not empty: %v", rows[2])
	}
	if rows[2][2] != "50.00" {
		t.Fatalf("price serialized as %q, want 50.00", rows[2][2])
	}
}

func TestJSONWriterWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "books.jsonl")

	writer, err := NewJSONWriter(path)
	if err != nil {
		t.Fatalf("create json writer: %v", err)
	}
	if err := writer.Write([]*models.BookRecord{sampleRecord()}); err != nil {
		t.Fatalf("write json: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close json: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open json: %v", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	count := 0
	for scanner.Scan() {
		var decoded models.BookRecord
		if err := json.Unmarshal(scanner.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid json line: %v", err)
		}
		if decoded.Title != "A Light in the Attic" {
			t.Fatalf("unexpected title: %q", decoded.Title)
		}
		count++
	}
	if count != 1 {
		t.Fatalf("lines=%d, want 1", count)
	}
}

func TestDualWriterWritesBoth(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "books.csv")
	jsonPath := filepath.Join(dir, "books.json")

	writer, err := NewDualWriter(csvPath, jsonPath)
	if err != nil {
		t.Fatalf("create dual writer: %v", err)
	}
	if err := writer.Write([]*models.BookRecord{sampleRecord()}); err != nil {
		t.Fatalf("write dual: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close dual: %v", err)
	}

	for _, path := range []string{csvPath, jsonPath} {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat %s: %v", path, err)
		}
		if info.Size() == 0 {
			t.Fatalf("%s is empty", path)
		}
	}
}
