package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/shapedtime/releasegrade/internal/feedback"
)

const feedbackColumns = "id, title, description, size_bytes, seeders, leechers, uploader, info_hash, rating, predicted_score, predicted_category, created_at"

func main() {
	sqlitePath := flag.String("sqlite-path", "", "Path to SQLite database file")
	pgURL := flag.String("pg-url", "", "PostgreSQL connection URL")
	flag.Parse()

	if *sqlitePath == "" || *pgURL == "" {
		fmt.Fprintf(os.Stderr, "Usage: migrate-to-pg --sqlite-path /path/to/releasegrade.db --pg-url postgres://...\n")
		os.Exit(1)
	}

	// Open SQLite directly; its schema is left as is
	sqliteDB, err := sql.Open("sqlite", *sqlitePath)
	if err != nil {
		log.Fatalf("Failed to open SQLite: %v", err)
	}
	defer sqliteDB.Close()

	if err := sqliteDB.Ping(); err != nil {
		log.Fatalf("Failed to ping SQLite: %v", err)
	}
	log.Println("Connected to SQLite")

	// Opening through feedback.NewDB applies the postgres schema
	pgDB, err := feedback.NewDB(feedback.DriverPostgres, *pgURL)
	if err != nil {
		log.Fatalf("Failed to open PostgreSQL: %v", err)
	}
	defer pgDB.Close()
	log.Println("Connected to PostgreSQL")

	tx, err := pgDB.Begin()
	if err != nil {
		log.Fatalf("Failed to start transaction: %v", err)
	}
	defer tx.Rollback()

	// Truncate for idempotent re-runs
	if _, err := tx.Exec("TRUNCATE TABLE feedback"); err != nil {
		log.Fatalf("Failed to truncate feedback: %v", err)
	}

	count, err := migrateFeedback(sqliteDB, tx)
	if err != nil {
		log.Fatalf("Failed to migrate feedback: %v", err)
	}
	log.Printf("Migrated feedback: %d rows", count)

	_, err = tx.Exec("SELECT setval('feedback_id_seq', COALESCE((SELECT MAX(id) FROM feedback), 1), (SELECT COUNT(*) > 0 FROM feedback))")
	if err != nil {
		log.Fatalf("Failed to reset sequence for feedback: %v", err)
	}

	var sqliteCount, pgCount int64
	if err := sqliteDB.QueryRow("SELECT COUNT(*) FROM feedback").Scan(&sqliteCount); err != nil {
		log.Fatalf("Failed to count SQLite rows: %v", err)
	}
	if err := tx.QueryRow("SELECT COUNT(*) FROM feedback").Scan(&pgCount); err != nil {
		log.Fatalf("Failed to count PG rows: %v", err)
	}
	if sqliteCount != pgCount {
		log.Fatalf("Row count mismatch: SQLite=%d, PG=%d", sqliteCount, pgCount)
	}
	log.Printf("Verified feedback: %d rows match", sqliteCount)

	if err := tx.Commit(); err != nil {
		log.Fatalf("Failed to commit transaction: %v", err)
	}

	log.Println("Migration completed successfully!")
}

func migrateFeedback(sqliteDB *sql.DB, tx *sql.Tx) (int64, error) {
	rows, err := sqliteDB.Query(fmt.Sprintf("SELECT %s FROM feedback ORDER BY id", feedbackColumns))
	if err != nil {
		return 0, fmt.Errorf("failed to query SQLite: %w", err)
	}
	defer rows.Close()

	colNames, err := rows.Columns()
	if err != nil {
		return 0, fmt.Errorf("failed to get columns: %w", err)
	}

	placeholders := make([]string, len(colNames))
	for i := range colNames {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	stmt, err := tx.Prepare(fmt.Sprintf(
		"INSERT INTO feedback (%s) VALUES (%s)",
		feedbackColumns, strings.Join(placeholders, ", "),
	))
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	var count int64
	for rows.Next() {
		values := make([]any, len(colNames))
		valuePtrs := make([]any, len(colNames))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return 0, fmt.Errorf("failed to scan row: %w", err)
		}

		if _, err := stmt.Exec(values...); err != nil {
			return 0, fmt.Errorf("failed to insert row %v: %w", values[0], err)
		}
		count++
	}

	return count, rows.Err()
}
