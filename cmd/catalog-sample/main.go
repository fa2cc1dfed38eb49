package main

import (
	"compress/gzip"
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"kobo-inventory/internal/catalog"
)

// Writes a sample catalogue for POST /api/products/import.
// Rows 2-6 are valid products; rows 7 and 8 are rejected by the importer
// (non-numeric price, missing category).
func main() {
	dataDir := flag.String("dir", "data/catalogue", "output directory")
	name := flag.String("name", "sample.csv.gz", "output file name")
	flag.Parse()

	if err := os.MkdirAll(*dataDir, 0o755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	rows := [][]string{
		{"Maggi", "Instant food", "430", "43", "Packets", "2026-12-11", "12"},
		{"Bru", "Beverages", "257", "22", "Packets", "2026-12-21", "12"},
		{"Red Bull", "Beverages", "405", "36", "Packets", "2026-05-11", "9"},
		{"Bourn Vita", "Health drink", "502", "14", "Packets", "2026-12-08", "6"},
		{"Horlicks", "Health drink", "530", "5", "Packets", "2027-01-09", "5"},
		{"Harpic", "Household", "twelve", "20", "Bottles", "", "4"},
		{"Ariel", "", "610", "17", "Packets", "2027-03-02", "8"},
	}

	filePath := filepath.Join(*dataDir, *name)
	if err := createCatalogFile(filePath, rows); err != nil {
		log.Fatalf("Failed to create %s: %v", filePath, err)
	}

	fmt.Printf("Created %s with %d rows\n", filePath, len(rows))
	fmt.Println("\nImport it with:")
	fmt.Printf("  curl -X POST localhost:8080/api/products/import -H 'x-auth-token: <token>' -d '{\"file\":\"%s\"}'\n", *name)
	fmt.Println("\nExpected: 5 imported, rejected lines 7 (buying_price) and 8 (category)")
}

func createCatalogFile(filePath string, rows [][]string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	defer gzipWriter.Close()

	w := csv.NewWriter(gzipWriter)
	if err := w.Write(catalog.Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write rows: %w", err)
	}

	return nil
}
