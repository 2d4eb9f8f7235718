package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"mood-analytics-service/models"
)

// rollupLockKey is the advisory lock id serializing rollup runs, so a
// duplicate trigger firing cannot double-count the same event window.
const rollupLockKey = 874302191

type PostgresDB struct {
	db *sql.DB
}

func NewPostgresDB(databaseURL string) (*PostgresDB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresDB{db: db}, nil
}

func (p *PostgresDB) Close() error {
	return p.db.Close()
}

// Ping checks database connectivity
func (p *PostgresDB) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// --- mood_logs ---

const moodLogColumns = `id, mood_id, mood_content, user_id, spam_count, location, created_at`

func scanMoodLog(row interface{ Scan(...any) error }) (*models.MoodLog, error) {
	entry := &models.MoodLog{}
	var content sql.NullString
	var location []byte
	if err := row.Scan(&entry.ID, &entry.MoodID, &content, &entry.UserID, &entry.SpamCount, &location, &entry.CreatedAt); err != nil {
		return nil, err
	}
	entry.MoodContent = content.String
	if len(location) > 0 {
		if err := json.Unmarshal(location, &entry.Location); err != nil {
			return nil, fmt.Errorf("failed to decode location: %w", err)
		}
	}
	return entry, nil
}

// UserMoodLogsSince returns a user's logs in the trailing window, oldest first.
func (p *PostgresDB) UserMoodLogsSince(ctx context.Context, userID string, since time.Time) ([]models.MoodLog, error) {
	query := `SELECT ` + moodLogColumns + `
	          FROM mood_logs
	          WHERE user_id = $1 AND created_at >= $2
	          ORDER BY created_at ASC`

	rows, err := p.db.QueryContext(ctx, query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query user mood logs: %w", err)
	}
	defer rows.Close()

	var logs []models.MoodLog
	for rows.Next() {
		entry, err := scanMoodLog(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan mood log: %w", err)
		}
		logs = append(logs, *entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return logs, nil
}

// SwapUserMoodLog replaces the user's logs in the trailing window with one
// new log. Delete and insert run in a single transaction: a failed insert
// rolls the delete back rather than losing the user's previous log.
func (p *PostgresDB) SwapUserMoodLog(ctx context.Context, userID string, since time.Time, entry *models.MoodLog) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM mood_logs WHERE user_id = $1 AND created_at >= $2`,
		userID, since); err != nil {
		return fmt.Errorf("failed to delete mood logs: %w", err)
	}

	location, err := json.Marshal(entry.Location)
	if err != nil {
		return fmt.Errorf("failed to encode location: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO mood_logs (id, mood_id, mood_content, user_id, spam_count, location, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		entry.ID, entry.MoodID, entry.MoodContent, entry.UserID, entry.SpamCount, location, entry.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert mood log: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit mood log swap: %w", err)
	}

	return nil
}

// LatestUserMoodLog returns the user's newest log regardless of age.
func (p *PostgresDB) LatestUserMoodLog(ctx context.Context, userID string) (*models.MoodLog, error) {
	query := `SELECT ` + moodLogColumns + `
	          FROM mood_logs
	          WHERE user_id = $1
	          ORDER BY created_at DESC
	          LIMIT 1`

	entry, err := scanMoodLog(p.db.QueryRowContext(ctx, query, userID))
	if err == sql.ErrNoRows {
		return nil, &models.NotFoundError{Message: "no mood log found"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest mood log: %w", err)
	}
	return entry, nil
}

// MoodLogsBetween returns logs with created_at in (from, to], optionally
// filtered by the country code stored in the location JSON.
func (p *PostgresDB) MoodLogsBetween(ctx context.Context, from, to time.Time, countryCode string) ([]models.MoodLog, error) {
	query := `SELECT ` + moodLogColumns + `
	          FROM mood_logs
	          WHERE created_at > $1 AND created_at <= $2`
	args := []any{from, to}
	if countryCode != "" {
		query += ` AND location->>'country' = $3`
		args = append(args, countryCode)
	}
	query += ` ORDER BY created_at ASC`

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query mood logs: %w", err)
	}
	defer rows.Close()

	var logs []models.MoodLog
	for rows.Next() {
		entry, err := scanMoodLog(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan mood log: %w", err)
		}
		logs = append(logs, *entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return logs, nil
}

// MoodLogPage returns one page of a country's logs since from, newest
// first, with the total count for pagination.
func (p *PostgresDB) MoodLogPage(ctx context.Context, countryCode string, from time.Time, page, pageSize int) (*models.MoodLogPage, error) {
	var total int64
	if err := p.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM mood_logs WHERE location->>'country' = $1 AND created_at >= $2`,
		countryCode, from).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count mood logs: %w", err)
	}

	offset := (page - 1) * pageSize
	query := `SELECT ` + moodLogColumns + `
	          FROM mood_logs
	          WHERE location->>'country' = $1 AND created_at >= $2
	          ORDER BY created_at DESC
	          LIMIT $3 OFFSET $4`

	rows, err := p.db.QueryContext(ctx, query, countryCode, from, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query mood log page: %w", err)
	}
	defer rows.Close()

	logs := make([]models.MoodLog, 0, pageSize)
	for rows.Next() {
		entry, err := scanMoodLog(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan mood log: %w", err)
		}
		logs = append(logs, *entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return &models.MoodLogPage{
		Logs:       logs,
		HasMore:    int64(offset+len(logs)) < total,
		TotalCount: total,
	}, nil
}

// --- mood_analytics ---

// AcquireRollupLock takes the session-level advisory lock serializing
// rollup runs. ok is false when another run holds it.
func (p *PostgresDB) AcquireRollupLock(ctx context.Context) (func(), bool, error) {
	conn, err := p.db.Conn(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get connection: %w", err)
	}

	var acquired bool
	if err := conn.QueryRowContext(ctx, `SELECT pg_try_advisory_lock($1)`, rollupLockKey).Scan(&acquired); err != nil {
		conn.Close()
		return nil, false, fmt.Errorf("failed to acquire rollup lock: %w", err)
	}
	if !acquired {
		conn.Close()
		return nil, false, nil
	}

	release := func() {
		// Unlock on the same connection the lock was taken on.
		_, _ = conn.ExecContext(context.Background(), `SELECT pg_advisory_unlock($1)`, rollupLockKey)
		conn.Close()
	}
	return release, true, nil
}

// LastProcessedAt returns the newest checkpoint across all analytics rows.
func (p *PostgresDB) LastProcessedAt(ctx context.Context) (time.Time, bool, error) {
	query := `SELECT last_log_processed_at
	          FROM mood_analytics
	          ORDER BY last_log_processed_at DESC
	          LIMIT 1`

	var checkpoint time.Time
	err := p.db.QueryRowContext(ctx, query).Scan(&checkpoint)
	if err == sql.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to read checkpoint: %w", err)
	}
	return checkpoint, true, nil
}

// InsertAnalyticsRow appends one rollup row. Rows are never updated.
func (p *PostgresDB) InsertAnalyticsRow(ctx context.Context, row *models.AnalyticsRow) error {
	analytics, err := json.Marshal(row.Analytics)
	if err != nil {
		return fmt.Errorf("failed to encode analytics snapshot: %w", err)
	}

	if _, err := p.db.ExecContext(ctx,
		`INSERT INTO mood_analytics (time_window, analytics, last_log_processed_at, logs_count, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		row.TimeWindow, analytics, row.LastLogProcessedAt, row.LogsCount, row.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert analytics row: %w", err)
	}
	return nil
}

func scanAnalyticsRow(row interface{ Scan(...any) error }) (*models.AnalyticsRow, error) {
	result := &models.AnalyticsRow{}
	var analytics []byte
	if err := row.Scan(&result.TimeWindow, &analytics, &result.LastLogProcessedAt, &result.LogsCount, &result.CreatedAt); err != nil {
		return nil, err
	}
	if len(analytics) > 0 {
		if err := json.Unmarshal(analytics, &result.Analytics); err != nil {
			return nil, fmt.Errorf("failed to decode analytics snapshot: %w", err)
		}
	}
	if result.Analytics == nil {
		result.Analytics = models.AnalyticsSnapshot{}
	}
	return result, nil
}

const analyticsColumns = `time_window, analytics, last_log_processed_at, logs_count, created_at`

// LatestAnalyticsRow returns the newest row for a window created after
// since, or nil when no row qualifies.
func (p *PostgresDB) LatestAnalyticsRow(ctx context.Context, timeWindow string, since time.Time) (*models.AnalyticsRow, error) {
	query := `SELECT ` + analyticsColumns + `
	          FROM mood_analytics
	          WHERE time_window = $1 AND created_at > $2
	          ORDER BY created_at DESC
	          LIMIT 1`

	row, err := scanAnalyticsRow(p.db.QueryRowContext(ctx, query, timeWindow, since))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest analytics row: %w", err)
	}
	return row, nil
}

// LatestAnalyticsRows returns up to limit rows, newest first.
func (p *PostgresDB) LatestAnalyticsRows(ctx context.Context, limit int) ([]models.AnalyticsRow, error) {
	query := `SELECT ` + analyticsColumns + `
	          FROM mood_analytics
	          ORDER BY created_at DESC
	          LIMIT $1`

	rows, err := p.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query analytics rows: %w", err)
	}
	defer rows.Close()

	var results []models.AnalyticsRow
	for rows.Next() {
		row, err := scanAnalyticsRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan analytics row: %w", err)
		}
		results = append(results, *row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return results, nil
}
