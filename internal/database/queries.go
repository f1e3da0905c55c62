package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"smrz/internal/llm"

	"github.com/google/uuid"
)

// ModelUsage aggregates the ledger rows of one model.
type ModelUsage struct {
	Model            string  `json:"model"`
	Provider         string  `json:"provider"`
	Calls            int64   `json:"calls"`
	PromptTokens     int64   `json:"prompt_tokens"`
	CompletionTokens int64   `json:"completion_tokens"`
	Cost             float64 `json:"cost"`
}

// RecordGeneration stores one generation. It satisfies llm.Recorder.
func (d *Database) RecordGeneration(ctx context.Context, rec llm.Record) error {
	purpose := strings.TrimSpace(rec.Purpose)
	if purpose == "" {
		return errors.New("generation purpose is empty")
	}

	query := `insert into generations
	(id, created_at, purpose, model, provider, prompt_tokens, completion_tokens, cost, elapsed_ms)
	values (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := d.db.ExecContext(
		ctx,
		query,
		uuid.NewString(),
		time.Now().UTC().UnixMilli(),
		purpose,
		string(rec.Model),
		string(rec.Provider),
		rec.PromptTokens,
		rec.CompletionTokens,
		rec.Cost,
		rec.Elapsed.Milliseconds(),
	)

	return err
}

// UsageTotals returns per-model totals ordered by model id.
func (d *Database) UsageTotals(ctx context.Context) ([]ModelUsage, error) {
	query := `select model, provider, count(*), sum(prompt_tokens), sum(completion_tokens), sum(cost)
	from generations
	group by model, provider
	order by model, provider`

	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer func() {
		if err = rows.Close(); err != nil {
			d.log.ErrorContext(ctx, "Failed to close rows",
				"error", err,
				"operation", "UsageTotals")
		}
	}()

	var totals []ModelUsage
	for rows.Next() {
		var u ModelUsage
		if err = rows.Scan(&u.Model, &u.Provider, &u.Calls, &u.PromptTokens, &u.CompletionTokens, &u.Cost); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		totals = append(totals, u)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	return totals, nil
}

// PruneBefore deletes rows created before cutoff and returns their count.
func (d *Database) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := "delete from generations where created_at < ?"

	res, err := d.db.ExecContext(ctx, query, cutoff.UTC().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to execute query: %w", err)
	}

	return res.RowsAffected()
}
