package database

import (
	"database/sql"
	"time"
)

const deletionColumns = `id, run_id, timestamp, action, file_set, path, file_name, size, error_message`

// GetRecentDeletions returns the N most recent removal attempts
func (d *DeletionDB) GetRecentDeletions(limit int) ([]DeletionRecord, error) {
	query := `
	SELECT ` + deletionColumns + `
	FROM deletions
	ORDER BY timestamp DESC, id DESC
	LIMIT ?
	`

	return d.queryDeletions(query, limit)
}

// GetDeletionsBySet returns removal attempts for one file set
func (d *DeletionDB) GetDeletionsBySet(set string) ([]DeletionRecord, error) {
	query := `
	SELECT ` + deletionColumns + `
	FROM deletions
	WHERE file_set = ?
	ORDER BY timestamp DESC, id DESC
	`

	return d.queryDeletions(query, set)
}

// GetDeletionsByAction returns removal attempts filtered by action
func (d *DeletionDB) GetDeletionsByAction(action string) ([]DeletionRecord, error) {
	query := `
	SELECT ` + deletionColumns + `
	FROM deletions
	WHERE action = ?
	ORDER BY timestamp DESC, id DESC
	`

	return d.queryDeletions(query, action)
}

// GetDeletionsByRun returns every removal attempt of one run
func (d *DeletionDB) GetDeletionsByRun(runID int64) ([]DeletionRecord, error) {
	query := `
	SELECT ` + deletionColumns + `
	FROM deletions
	WHERE run_id = ?
	ORDER BY id
	`

	return d.queryDeletions(query, runID)
}

// GetRecentRuns returns the N most recent runs
func (d *DeletionDB) GetRecentRuns(limit int) ([]RunRecord, error) {
	rows, err := d.db.Query(`
	SELECT id, started_at, finished_at, logs_found, outputs_found, choice, message
	FROM runs
	ORDER BY started_at DESC, id DESC
	LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		var finished sql.NullTime
		var choice, message sql.NullString

		if err := rows.Scan(&r.ID, &r.StartedAt, &finished, &r.LogsFound, &r.OutputsFound, &choice, &message); err != nil {
			return nil, err
		}
		if finished.Valid {
			t := finished.Time
			r.FinishedAt = &t
		}
		r.Choice = choice.String
		r.Message = message.String

		runs = append(runs, r)
	}

	return runs, rows.Err()
}

// GetTotalSpaceFreed returns total bytes freed in a time range
func (d *DeletionDB) GetTotalSpaceFreed(start, end time.Time) (int64, error) {
	query := `
	SELECT COALESCE(SUM(size), 0)
	FROM deletions
	WHERE action = 'DELETE' AND timestamp BETWEEN ? AND ?
	`

	var total int64
	err := d.db.QueryRow(query, start.UTC(), end.UTC()).Scan(&total)
	return total, err
}

// DeletionStats holds aggregated statistics
type DeletionStats struct {
	Runs            int
	TotalDeletions  int
	TotalSkipped    int
	TotalErrors     int
	TotalSpaceFreed int64
	BySet           map[string]int
	ByChoice        map[string]int
	StartDate       time.Time
	EndDate         time.Time
}

// GetDeletionStats returns statistics for the last days days
func (d *DeletionDB) GetDeletionStats(days int) (*DeletionStats, error) {
	now := time.Now().UTC()
	since := now.AddDate(0, 0, -days)

	stats := &DeletionStats{
		StartDate: since,
		EndDate:   now,
	}

	err := d.db.QueryRow(`
		SELECT
			COUNT(CASE WHEN action = 'DELETE' THEN 1 END),
			COUNT(CASE WHEN action = 'SKIP' THEN 1 END),
			COUNT(CASE WHEN action = 'ERROR' THEN 1 END)
		FROM deletions
		WHERE timestamp >= ?
	`, since).Scan(&stats.TotalDeletions, &stats.TotalSkipped, &stats.TotalErrors)
	if err != nil {
		return nil, err
	}

	err = d.db.QueryRow(`SELECT COUNT(*) FROM runs WHERE started_at >= ?`, since).Scan(&stats.Runs)
	if err != nil {
		return nil, err
	}

	stats.TotalSpaceFreed, err = d.GetTotalSpaceFreed(since, now)
	if err != nil {
		return nil, err
	}

	stats.BySet, err = d.countBy(`
		SELECT file_set, COUNT(*) FROM deletions
		WHERE action = 'DELETE' AND timestamp >= ?
		GROUP BY file_set
	`, since)
	if err != nil {
		return nil, err
	}

	stats.ByChoice, err = d.countBy(`
		SELECT choice, COUNT(*) FROM runs
		WHERE choice IS NOT NULL AND started_at >= ?
		GROUP BY choice
	`, since)
	if err != nil {
		return nil, err
	}

	return stats, nil
}

// DeleteOldRecords removes records older than specified days
func (d *DeletionDB) DeleteOldRecords(olderThanDays int) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -olderThanDays)

	result, err := d.db.Exec(`DELETE FROM deletions WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	_, err = d.db.Exec(`
		DELETE FROM runs
		WHERE started_at < ? AND id NOT IN (SELECT DISTINCT run_id FROM deletions)
	`, cutoff)
	return affected, err
}

func (d *DeletionDB) countBy(query string, args ...interface{}) (map[string]int, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return nil, err
		}
		counts[key] = count
	}

	return counts, rows.Err()
}

// queryDeletions executes a query and scans deletion rows
func (d *DeletionDB) queryDeletions(query string, args ...interface{}) ([]DeletionRecord, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []DeletionRecord
	for rows.Next() {
		var r DeletionRecord
		var fileName, errMsg sql.NullString

		err := rows.Scan(
			&r.ID, &r.RunID, &r.Timestamp, &r.Action, &r.FileSet,
			&r.Path, &fileName, &r.Size, &errMsg,
		)
		if err != nil {
			return nil, err
		}

		r.FileName = fileName.String
		r.ErrorMessage = errMsg.String

		records = append(records, r)
	}

	return records, rows.Err()
}
