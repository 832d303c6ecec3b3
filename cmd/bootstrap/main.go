package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/aluiziolira/go-books-etl/store"
)

func main() {
	csvPath := flag.String("csv", "data/books_raw.csv", "Path to the crawled CSV artifact")
	dbPath := flag.String("db", "data/books.db", "Path where the SQLite store will be written")
	force := flag.Bool("force", false, "Rebuild the store even if it already exists")
	verbose := flag.Bool("v", false, "Enable verbose logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))

	if err := store.EnsureStore(*csvPath, *dbPath, *force); err != nil {
		slog.Error("bootstrap failed", slog.Any("error", err))
		os.Exit(1)
	}

	slog.Info("store available", slog.String("path", *dbPath))
}
