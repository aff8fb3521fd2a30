package renderlog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore is a persistent Store backed by a single SQLite table,
// selectable through configuration as an alternative to MemoryStore.
type SQLiteStore struct {
	conn *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLiteStore opens (creating if absent) a SQLite database at
// path and ensures its schema exists.
func OpenSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("renderlog: opening sqlite database: %w", err)
	}
	if err := conn.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("renderlog: pinging sqlite database: %w", err)
	}
	// A single connection keeps an in-memory database (":memory:") from
	// being silently split across the pool's connections.
	conn.SetMaxOpenConns(1)

	s := &SQLiteStore{conn: conn}
	if err := s.migrate(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS render_records (
	render_id       TEXT PRIMARY KEY,
	timestamp       TEXT NOT NULL,
	reference_text  TEXT NOT NULL,
	template_name   TEXT NOT NULL,
	template_tag    TEXT NOT NULL,
	manifest_digest TEXT NOT NULL,
	data_digest     TEXT NOT NULL,
	pdf_digest      TEXT NOT NULL,
	success         INTEGER NOT NULL,
	duration_ms     INTEGER NOT NULL,
	pdf_bytes_size  INTEGER NOT NULL,
	error_text      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_render_records_timestamp ON render_records(timestamp DESC);
CREATE INDEX IF NOT EXISTS idx_render_records_template_name ON render_records(template_name, timestamp DESC);
`
	_, err := s.conn.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("renderlog: migrating schema: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

// Append inserts one record.
func (s *SQLiteStore) Append(ctx context.Context, r Record) error {
	_, err := s.conn.ExecContext(ctx, `
INSERT INTO render_records (
	render_id, timestamp, reference_text, template_name, template_tag,
	manifest_digest, data_digest, pdf_digest, success, duration_ms,
	pdf_bytes_size, error_text
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RenderID, r.Timestamp.UTC().Format(time.RFC3339Nano), r.ReferenceText, r.TemplateName, r.TemplateTag,
		r.ManifestDigest, r.DataDigest, r.PDFDigest, boolToInt(r.Success), r.DurationMS,
		r.PDFBytesSize, r.ErrorText,
	)
	if err != nil {
		return fmt.Errorf("renderlog: appending record: %w", err)
	}
	return nil
}

// Get returns the record with the given render ID, or nil if none
// exists.
func (s *SQLiteStore) Get(ctx context.Context, renderID string) (*Record, error) {
	row := s.conn.QueryRowContext(ctx, `
SELECT render_id, timestamp, reference_text, template_name, template_tag,
       manifest_digest, data_digest, pdf_digest, success, duration_ms,
       pdf_bytes_size, error_text
FROM render_records WHERE render_id = ?`, renderID)

	r, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("renderlog: reading record %s: %w", renderID, err)
	}
	return r, nil
}

// ListRecent returns up to limit records ordered by timestamp
// descending.
func (s *SQLiteStore) ListRecent(ctx context.Context, limit int) ([]Record, error) {
	rows, err := s.conn.QueryContext(ctx, `
SELECT render_id, timestamp, reference_text, template_name, template_tag,
       manifest_digest, data_digest, pdf_digest, success, duration_ms,
       pdf_bytes_size, error_text
FROM render_records ORDER BY timestamp DESC LIMIT ?`, sqlLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("renderlog: listing recent records: %w", err)
	}
	return scanRecords(rows)
}

// ListForName returns up to limit records for the given template
// name, ordered by timestamp descending.
func (s *SQLiteStore) ListForName(ctx context.Context, name string, limit int) ([]Record, error) {
	rows, err := s.conn.QueryContext(ctx, `
SELECT render_id, timestamp, reference_text, template_name, template_tag,
       manifest_digest, data_digest, pdf_digest, success, duration_ms,
       pdf_bytes_size, error_text
FROM render_records WHERE template_name = ? ORDER BY timestamp DESC LIMIT ?`, name, sqlLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("renderlog: listing records for %s: %w", name, err)
	}
	return scanRecords(rows)
}

// VolumeOverTime returns daily render counts over the trailing window
// of days, sorted ascending by date.
func (s *SQLiteStore) VolumeOverTime(ctx context.Context, days int) ([]VolumePoint, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -days).Format(time.RFC3339Nano)
	rows, err := s.conn.QueryContext(ctx, `
SELECT date(timestamp) AS d, COUNT(*) FROM render_records
WHERE timestamp >= ? GROUP BY d ORDER BY d ASC`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("renderlog: computing render volume: %w", err)
	}
	defer rows.Close()

	var points []VolumePoint
	for rows.Next() {
		var dateStr string
		var count uint64
		if err := rows.Scan(&dateStr, &count); err != nil {
			return nil, err
		}
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return nil, err
		}
		points = append(points, VolumePoint{Date: date, Renders: count})
	}
	return points, rows.Err()
}

// PerTemplateCounts returns total render counts per template name,
// sorted descending by total.
func (s *SQLiteStore) PerTemplateCounts(ctx context.Context) ([]TemplateCount, error) {
	rows, err := s.conn.QueryContext(ctx, `
SELECT template_name, COUNT(*) AS total FROM render_records
GROUP BY template_name ORDER BY total DESC, template_name ASC`)
	if err != nil {
		return nil, fmt.Errorf("renderlog: computing per-template counts: %w", err)
	}
	defer rows.Close()

	var counts []TemplateCount
	for rows.Next() {
		var c TemplateCount
		if err := rows.Scan(&c.TemplateName, &c.TotalRenders); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// AvgDurationOverTime returns the mean duration of successful renders
// per day over the trailing window of days, sorted ascending by date.
func (s *SQLiteStore) AvgDurationOverTime(ctx context.Context, days int) ([]DurationPoint, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -days).Format(time.RFC3339Nano)
	rows, err := s.conn.QueryContext(ctx, `
SELECT date(timestamp) AS d, AVG(duration_ms) FROM render_records
WHERE timestamp >= ? AND success = 1 GROUP BY d ORDER BY d ASC`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("renderlog: computing average duration: %w", err)
	}
	defer rows.Close()

	var points []DurationPoint
	for rows.Next() {
		var dateStr string
		var avg float64
		if err := rows.Scan(&dateStr, &avg); err != nil {
			return nil, err
		}
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return nil, err
		}
		points = append(points, DurationPoint{Date: date, AvgDurationMS: avg})
	}
	return points, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*Record, error) {
	var r Record
	var ts string
	var success int
	if err := row.Scan(&r.RenderID, &ts, &r.ReferenceText, &r.TemplateName, &r.TemplateTag,
		&r.ManifestDigest, &r.DataDigest, &r.PDFDigest, &success, &r.DurationMS,
		&r.PDFBytesSize, &r.ErrorText); err != nil {
		return nil, err
	}
	parsed, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return nil, err
	}
	r.Timestamp = parsed
	r.Success = success != 0
	return &r, nil
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	defer rows.Close()
	var records []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *r)
	}
	return records, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// sqlLimit normalizes the "no limit" sentinel: SQLite treats any
// negative LIMIT as unbounded.
func sqlLimit(limit int) int {
	if limit < 0 {
		return -1
	}
	return limit
}
