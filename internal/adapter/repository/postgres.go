package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hive-corporation/casebridge/internal/core/domain"
)

// PostgresCaseStore is the reference downstream case store. Cases and
// evidence land in two tables keyed by generated UUIDs; the raw appliance
// payloads ride along as JSONB for later investigation.
type PostgresCaseStore struct {
	db *pgxpool.Pool
}

func NewPostgresCaseStore(db *pgxpool.Pool) *PostgresCaseStore {
	return &PostgresCaseStore{db: db}
}

func (r *PostgresCaseStore) SaveCase(ctx context.Context, c domain.Case) (string, error) {
	id := uuid.NewString()

	payload, err := json.Marshal(c.Data)
	if err != nil {
		return "", fmt.Errorf("failed to encode case payload: %w", err)
	}

	query := `
		INSERT INTO cases (id, name, description, severity, source_identifier, asset_name, start_time, score, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = r.db.Exec(ctx, query,
		id,
		c.Name,
		c.Description,
		string(c.Severity),
		c.SourceIdentifier,
		c.AssetName,
		c.StartTime,
		c.Score,
		payload,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert case: %w", err)
	}

	return id, nil
}

func (r *PostgresCaseStore) SaveEvidence(ctx context.Context, items []domain.Evidence) ([]string, error) {
	batch := &pgx.Batch{}

	query := `
		INSERT INTO evidence (id, case_id, name, label, type, description, severity, source_identifier, asset_name, start_time, end_time, summary, device_label, cef)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	ids := make([]string, 0, len(items))
	for _, item := range items {
		id := uuid.NewString()
		ids = append(ids, id)

		cef, err := json.Marshal(item.CEF)
		if err != nil {
			return nil, fmt.Errorf("failed to encode evidence cef: %w", err)
		}

		batch.Queue(query,
			id,
			item.CaseID,
			item.Name,
			item.Label,
			item.Type,
			item.Description,
			string(item.Severity),
			item.SourceIdentifier,
			item.AssetName,
			item.StartTime,
			item.EndTime,
			item.Summary,
			item.DeviceLabel,
			cef,
		)
	}

	br := r.db.SendBatch(ctx, batch)
	defer br.Close()

	for range items {
		if _, err := br.Exec(); err != nil {
			return nil, fmt.Errorf("failed to execute batch: %w", err)
		}
	}

	return ids, nil
}
