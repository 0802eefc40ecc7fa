package db

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/cv-analyzer/internal/types"
)

// Analysis is a stored analysis report.
type Analysis struct {
	ID          uuid.UUID       `json:"id"`
	Candidate   *string         `json:"candidate,omitempty"`
	Language    string          `json:"language"`
	TotalScore  float64         `json:"total_score"`
	CVTextHash  string          `json:"cv_text_hash"`
	JobTextHash string          `json:"job_text_hash"`
	Report      json.RawMessage `json:"report"`
	CreatedAt   time.Time       `json:"created_at"`
}

// AnalysisInput is what SaveAnalysis stores. The source texts are only hashed.
type AnalysisInput struct {
	Candidate string
	Language  string
	CVText    string
	JobText   string
	Report    *types.Report
}

const analysisColumns = `id, candidate, language, total_score, cv_text_hash, job_text_hash, report, created_at`

// SaveAnalysis stores a report under a new random ID.
func (db *DB) SaveAnalysis(ctx context.Context, in AnalysisInput) (*Analysis, error) {
	if in.Report == nil {
		return nil, errors.New("analysis report is required")
	}
	reportJSON, err := json.Marshal(in.Report)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}

	row := db.pool.QueryRow(ctx,
		`INSERT INTO analyses (id, candidate, language, total_score, cv_text_hash, job_text_hash, report)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+analysisColumns,
		uuid.New(), nullIfEmpty(in.Candidate), in.Language, in.Report.MatchResult.TotalScore,
		hashText(in.CVText), hashText(in.JobText), reportJSON,
	)
	a, err := scanAnalysis(row)
	if err != nil {
		return nil, fmt.Errorf("failed to save analysis: %w", err)
	}
	return a, nil
}

// GetAnalysis returns the stored analysis, or nil when id is unknown.
func (db *DB) GetAnalysis(ctx context.Context, id uuid.UUID) (*Analysis, error) {
	row := db.pool.QueryRow(ctx, `SELECT `+analysisColumns+` FROM analyses WHERE id = $1`, id)
	a, err := scanAnalysis(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get analysis %s: %w", id, err)
	}
	return a, nil
}

// ListAnalyses returns the most recent analyses, newest first.
func (db *DB) ListAnalyses(ctx context.Context, limit int) ([]Analysis, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.pool.Query(ctx,
		`SELECT `+analysisColumns+` FROM analyses ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	var out []Analysis
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func scanAnalysis(row pgx.Row) (*Analysis, error) {
	var a Analysis
	if err := row.Scan(&a.ID, &a.Candidate, &a.Language, &a.TotalScore,
		&a.CVTextHash, &a.JobTextHash, &a.Report, &a.CreatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func hashText(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
