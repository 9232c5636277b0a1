package store

import (
	"database/sql"
	"time"

	"github.com/XBOT-FTC/2939-TRC-Lib/internal/processor"
)

// DetectionRecord is one logged detection.
type DetectionRecord struct {
	ID         int64
	SessionID  string
	Processor  string
	Label      string
	Confidence float64
	X          int
	Y          int
	Width      int
	Height     int
	DetectedAt time.Time
}

// DetectionRepository provides operations on the detection log.
type DetectionRepository struct {
	db *sql.DB
}

// Detections returns the detection repository for this store.
func (s *Store) Detections() *DetectionRepository {
	return &DetectionRepository{db: s.db}
}

// Create logs a batch of detections from one processor in a single
// transaction.
func (r *DetectionRepository) Create(sessionID, processorName string, dets []processor.Detection) error {
	if len(dets) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO detections (session_id, processor, label, confidence, x, y, width, height)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, d := range dets {
		_, err := stmt.Exec(sessionID, processorName, d.Label, d.Confidence,
			d.Box.Min.X, d.Box.Min.Y, d.Box.Dx(), d.Box.Dy())
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ListRecent returns the most recent detections for a session, newest
// first, up to limit rows.
func (r *DetectionRepository) ListRecent(sessionID string, limit int) ([]DetectionRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(
		`SELECT id, session_id, processor, label, confidence, x, y, width, height, detected_at
		 FROM detections
		 WHERE session_id = ?
		 ORDER BY id DESC
		 LIMIT ?`,
		sessionID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []DetectionRecord
	for rows.Next() {
		var d DetectionRecord
		err := rows.Scan(&d.ID, &d.SessionID, &d.Processor, &d.Label, &d.Confidence,
			&d.X, &d.Y, &d.Width, &d.Height, &d.DetectedAt)
		if err != nil {
			return nil, err
		}
		records = append(records, d)
	}
	return records, rows.Err()
}

// CountByProcessor returns how many detections each processor logged for
// a session.
func (r *DetectionRepository) CountByProcessor(sessionID string) (map[string]int, error) {
	rows, err := r.db.Query(
		`SELECT processor, COUNT(*) FROM detections WHERE session_id = ? GROUP BY processor`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var name string
		var count int
		if err := rows.Scan(&name, &count); err != nil {
			return nil, err
		}
		counts[name] = count
	}
	return counts, rows.Err()
}
