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

type CallRepo struct {
	db *PostgresDB
}

func NewCallRepo(db *PostgresDB) *CallRepo {
	return &CallRepo{db: db}
}

func (r *CallRepo) Create(ctx context.Context, call *domain.Call) error {
	if call.ID == "" {
		call.ID = uuid.New().String()
	}
	if call.Status == "" {
		call.Status = domain.CallStatusPending
	}

	var transcriptJSON []byte
	if call.Transcript != nil {
		var err error
		transcriptJSON, err = json.Marshal(call.Transcript)
		if err != nil {
			return fmt.Errorf("marshal transcript: %w", err)
		}
	}

	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO calls (id, project, rubric_version, agent_name, audio_file_name, transcript, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, call.ID, call.Project, call.RubricVersion, call.AgentName, call.AudioFileName,
		transcriptJSON, call.Status, time.Now())

	if err != nil {
		return fmt.Errorf("insert call: %w", err)
	}
	return nil
}

func (r *CallRepo) GetByID(ctx context.Context, id string) (*domain.Call, error) {
	var call domain.Call
	var transcriptJSON []byte

	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, project, rubric_version, agent_name, audio_file_name, transcript, status, created_at, scored_at
		FROM calls
		WHERE id = $1
	`, id).Scan(&call.ID, &call.Project, &call.RubricVersion, &call.AgentName, &call.AudioFileName,
		&transcriptJSON, &call.Status, &call.CreatedAt, &call.ScoredAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query call: %w", err)
	}

	if transcriptJSON != nil {
		call.Transcript = &domain.Transcript{}
		if err := json.Unmarshal(transcriptJSON, call.Transcript); err != nil {
			return nil, fmt.Errorf("unmarshal transcript: %w", err)
		}
	}
	return &call, nil
}

// SetTranscript stores the transcript and moves the call to transcribed.
func (r *CallRepo) SetTranscript(ctx context.Context, id string, transcript *domain.Transcript) error {
	transcriptJSON, err := json.Marshal(transcript)
	if err != nil {
		return fmt.Errorf("marshal transcript: %w", err)
	}

	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE calls SET transcript = $2, status = $3 WHERE id = $1
	`, id, transcriptJSON, domain.CallStatusTranscribed)
	if err != nil {
		return fmt.Errorf("update transcript: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("call %s not found", id)
	}
	return nil
}

func (r *CallRepo) UpdateStatus(ctx context.Context, id string, status domain.CallStatus) error {
	var scoredAt interface{}
	if status == domain.CallStatusScored {
		scoredAt = time.Now()
	}

	_, err := r.db.Pool.Exec(ctx, `
		UPDATE calls SET status = $2, scored_at = COALESCE($3, scored_at) WHERE id = $1
	`, id, status, scoredAt)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	return nil
}

func (r *CallRepo) List(ctx context.Context, project string, limit, offset int) ([]*domain.Call, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, project, rubric_version, agent_name, audio_file_name, status, created_at, scored_at
		FROM calls
		WHERE ($1 = '' OR project = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, project, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query calls: %w", err)
	}
	defer rows.Close()

	var calls []*domain.Call
	for rows.Next() {
		var call domain.Call
		if err := rows.Scan(&call.ID, &call.Project, &call.RubricVersion, &call.AgentName,
			&call.AudioFileName, &call.Status, &call.CreatedAt, &call.ScoredAt); err != nil {
			return nil, fmt.Errorf("scan call: %w", err)
		}
		calls = append(calls, &call)
	}
	return calls, rows.Err()
}
