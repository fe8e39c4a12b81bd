package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/notaprep/notaprep/internal/llm"
)

// LLMEvent is one row of the audit log.
type LLMEvent struct {
	ID int64
	llm.LLMRequestEventData
	CreatedAt time.Time
}

// LLMEventRepo implements llm.EventRepo backed by the llm_events table.
type LLMEventRepo struct {
	db *sql.DB
}

func (r *LLMEventRepo) AppendLLMRequest(ctx context.Context, data llm.LLMRequestEventData) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO llm_events
			(provider, model, purpose, user_id, input_tokens, output_tokens,
			 latency_ms, success, error_message, request_body, response_body)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		data.Provider, data.Model, data.Purpose, data.User,
		data.InputTokens, data.OutputTokens, data.LatencyMs,
		data.Success, data.ErrorMessage, data.RequestBody, data.ResponseBody,
	)
	if err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

// Recent returns the latest limit events, newest first.
func (r *LLMEventRepo) Recent(ctx context.Context, limit int) ([]*LLMEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, provider, model, purpose, user_id, input_tokens,
		       output_tokens, latency_ms, success, error_message, created_at
		FROM llm_events ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*LLMEvent
	for rows.Next() {
		var e LLMEvent
		if err := rows.Scan(&e.ID, &e.Provider, &e.Model, &e.Purpose, &e.User,
			&e.InputTokens, &e.OutputTokens, &e.LatencyMs, &e.Success,
			&e.ErrorMessage, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, &e)
	}
	return events, rows.Err()
}
