package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/domain"
)

type ReportRepo struct {
	db *PostgresDB
}

func NewReportRepo(db *PostgresDB) *ReportRepo {
	return &ReportRepo{db: db}
}

// Create stores one final report. Reports are immutable; re-scoring a call
// inserts a new row.
func (r *ReportRepo) Create(ctx context.Context, callID string, report *domain.FinalReport) error {
	if report.Score == nil {
		return fmt.Errorf("report for call %s has no score", callID)
	}
	if report.Score.ID == "" {
		report.Score.ID = uuid.New().String()
	}

	scoreJSON, err := json.Marshal(report.Score)
	if err != nil {
		return fmt.Errorf("marshal score: %w", err)
	}

	var emotionJSON, summariesJSON []byte
	if report.Emotion != nil {
		if emotionJSON, err = json.Marshal(report.Emotion); err != nil {
			return fmt.Errorf("marshal emotion: %w", err)
		}
	}
	if report.Summaries != nil {
		if summariesJSON, err = json.Marshal(report.Summaries); err != nil {
			return fmt.Errorf("marshal summaries: %w", err)
		}
	}

	_, err = r.db.Pool.Exec(ctx, `
		INSERT INTO reports (
			id, call_id, rubric_id, total_score, percentage, passed, fatal_triggered,
			score, emotion, summaries, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, report.Score.ID, callID, report.Score.RubricID, report.Score.TotalScore,
		report.Score.Percentage, report.Score.Passed, report.Score.FatalTriggered,
		scoreJSON, emotionJSON, summariesJSON, time.Now())

	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

// GetLatestByCallID returns the most recent report for a call, or nil.
func (r *ReportRepo) GetLatestByCallID(ctx context.Context, callID string) (*domain.FinalReport, error) {
	var scoreJSON, emotionJSON, summariesJSON []byte
	var createdAt time.Time

	err := r.db.Pool.QueryRow(ctx, `
		SELECT score, emotion, summaries, created_at
		FROM reports
		WHERE call_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, callID).Scan(&scoreJSON, &emotionJSON, &summariesJSON, &createdAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query report: %w", err)
	}

	report := &domain.FinalReport{CreatedAt: createdAt}
	report.Score = &domain.ScoreReport{}
	if err := json.Unmarshal(scoreJSON, report.Score); err != nil {
		return nil, fmt.Errorf("unmarshal score: %w", err)
	}
	if emotionJSON != nil {
		report.Emotion = &domain.CallEmotionSummary{}
		if err := json.Unmarshal(emotionJSON, report.Emotion); err != nil {
			return nil, fmt.Errorf("unmarshal emotion: %w", err)
		}
	}
	if summariesJSON != nil {
		report.Summaries = &domain.Summaries{}
		if err := json.Unmarshal(summariesJSON, report.Summaries); err != nil {
			return nil, fmt.Errorf("unmarshal summaries: %w", err)
		}
	}
	return report, nil
}

// ProjectStats is the aggregate view over a project's scored calls.
type ProjectStats struct {
	Project        string  `json:"project"`
	ReportCount    int     `json:"report_count"`
	PassedCount    int     `json:"passed_count"`
	FatalCount     int     `json:"fatal_count"`
	AvgPercentage  float64 `json:"avg_percentage"`
	PassRate       float64 `json:"pass_rate"`
}

func (r *ReportRepo) Stats(ctx context.Context, project string) (*ProjectStats, error) {
	stats := &ProjectStats{Project: project}

	err := r.db.Pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE rep.passed),
			COUNT(*) FILTER (WHERE rep.fatal_triggered),
			COALESCE(AVG(rep.percentage), 0)
		FROM reports rep
		JOIN calls c ON c.id = rep.call_id
		WHERE ($1 = '' OR c.project = $1)
	`, project).Scan(&stats.ReportCount, &stats.PassedCount, &stats.FatalCount, &stats.AvgPercentage)

	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}

	if stats.ReportCount > 0 {
		stats.PassRate = float64(stats.PassedCount) / float64(stats.ReportCount)
	}
	return stats, nil
}
