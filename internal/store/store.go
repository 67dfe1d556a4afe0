// Package store provides durable storage for processed complaints.
//
// The store is the idempotency gate of the whole pipeline: exactly one row
// exists per complaint ID, enforced by the SQLite primary key rather than by
// the caller's lookup, so the guarantee holds under concurrent access.
//
// Failure policy (deliberately asymmetric, see DESIGN.md):
//   - IsProcessed fails OPEN: a storage error reads as "not yet processed",
//     preferring a duplicate reply attempt over silently dropping a complaint.
//   - Save fails CLOSED: a storage error (including a primary-key conflict)
//     reads as a failed save and is never silently ignored or overwritten.
package store

import (
	"database/sql"
	"encoding/json"
	"log"
	"os"
	"time"

	_ "modernc.org/sqlite"
)

// Complaint statuses. A record is written once at the end of processing and
// its status is corrected only through UpdateStatus.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Record is one processed complaint as persisted.
type Record struct {
	ComplaintID   string    `json:"complaint_id"`
	CustomerName  string    `json:"customer_name"`
	ComplaintText string    `json:"complaint_text"`
	ResponseText  string    `json:"response_text"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Stats are aggregate counters computed from current store contents.
type Stats struct {
	Total       int     `json:"total"`
	Completed   int     `json:"completed"`
	Failed      int     `json:"failed"`
	SuccessRate float64 `json:"success_rate"`
}

// Store wraps a SQLite database holding the complaints table.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at path and ensures the schema
// exists. Pass ":memory:" for an in-memory database (used by tests).
//
// The connection is tuned for one writer plus concurrent dashboard readers:
// a single pooled connection, a busy timeout so readers wait briefly instead
// of failing, and WAL journaling.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	// Single connection avoids "database is locked" errors with modernc.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS complaints (
			complaint_id TEXT PRIMARY KEY,
			customer_name TEXT,
			complaint_text TEXT,
			response_text TEXT,
			status TEXT,
			created_at DATETIME,
			updated_at DATETIME
		)`); err != nil {
		db.Close()
		return nil, err
	}

	log.Println("📋 Complaint store ready at", path)
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// IsProcessed reports whether a record already exists for this complaint ID.
//
// Fails open: on a storage error it returns false so the caller treats the
// complaint as safe to attempt. The primary key still blocks a duplicate row
// if the attempt turns out to be a repeat.
func (s *Store) IsProcessed(complaintID string) bool {
	var one int
	err := s.db.QueryRow(
		"SELECT 1 FROM complaints WHERE complaint_id = ?", complaintID,
	).Scan(&one)

	switch err {
	case nil:
		return true
	case sql.ErrNoRows:
		return false
	default:
		log.Println("⚠️  Failed to check complaint", complaintID, "-", err)
		return false
	}
}

// Save writes a new record with both timestamps set to now (UTC) and reports
// whether the write succeeded.
//
// The write path is append-only: saving an ID that already exists is a
// primary-key conflict and surfaces as a failed save. That conflict, not the
// caller's IsProcessed check, is the real idempotency guarantee.
func (s *Store) Save(complaintID, customerName, complaintText, responseText, status string) bool {
	now := time.Now().UTC()

	_, err := s.db.Exec(`
		INSERT INTO complaints (
			complaint_id, customer_name, complaint_text,
			response_text, status, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		complaintID, customerName, complaintText, responseText, status, now, now,
	)
	if err != nil {
		log.Println("⚠️  Failed to save complaint", complaintID, "-", err)
		return false
	}

	log.Printf("✓ Complaint %s saved with status: %s", complaintID, status)
	return true
}

// UpdateStatus rewrites status and updated_at for an existing record.
//
// An unknown complaint ID is an error, not a silent no-op: returning true for
// a row that was never touched would let a status correction vanish.
func (s *Store) UpdateStatus(complaintID, status string) bool {
	res, err := s.db.Exec(
		"UPDATE complaints SET status = ?, updated_at = ? WHERE complaint_id = ?",
		status, time.Now().UTC(), complaintID,
	)
	if err != nil {
		log.Println("⚠️  Failed to update complaint", complaintID, "-", err)
		return false
	}

	n, err := res.RowsAffected()
	if err != nil {
		log.Println("⚠️  Failed to update complaint", complaintID, "-", err)
		return false
	}
	if n == 0 {
		log.Println("⚠️  No such complaint to update:", complaintID)
		return false
	}

	log.Printf("✓ Complaint %s status updated to: %s", complaintID, status)
	return true
}

// ListRecent returns up to limit records, newest first. On a storage error it
// returns an empty slice.
func (s *Store) ListRecent(limit int) []Record {
	rows, err := s.db.Query(`
		SELECT complaint_id, customer_name, complaint_text,
		       response_text, status, created_at, updated_at
		FROM complaints
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		log.Println("⚠️  Failed to list complaints:", err)
		return nil
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(
			&r.ComplaintID, &r.CustomerName, &r.ComplaintText,
			&r.ResponseText, &r.Status, &r.CreatedAt, &r.UpdatedAt,
		); err != nil {
			log.Println("⚠️  Failed to scan complaint row:", err)
			continue
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		log.Println("⚠️  Failed to list complaints:", err)
	}

	return records
}

// Statistics computes aggregate counters from current store contents. Nothing
// is cached; every call reflects the table as it is now. On a storage error
// it returns zeroed statistics.
func (s *Store) Statistics() Stats {
	var stats Stats

	err := s.db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(status = ?), 0),
		       COALESCE(SUM(status = ?), 0)
		FROM complaints`,
		StatusCompleted, StatusFailed,
	).Scan(&stats.Total, &stats.Completed, &stats.Failed)
	if err != nil {
		log.Println("⚠️  Failed to compute statistics:", err)
		return Stats{}
	}

	if stats.Total > 0 {
		stats.SuccessRate = float64(stats.Completed) / float64(stats.Total) * 100
	}

	return stats
}

// ExportJSON serializes up to limit records to a JSON file and reports
// whether the export succeeded.
func (s *Store) ExportJSON(path string, limit int) bool {
	records := s.ListRecent(limit)
	if records == nil {
		records = []Record{}
	}

	data, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		log.Println("⚠️  Failed to marshal complaints for export:", err)
		return false
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Println("⚠️  Failed to write export file:", err)
		return false
	}

	log.Printf("✓ Exported %d complaints to %s", len(records), path)
	return true
}
