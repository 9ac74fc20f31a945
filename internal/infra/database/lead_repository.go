package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/xavierca1/imob-crm/internal/entity"
)

const defaultAgingLimit = 500

// pgInvalidText é o código do Postgres para um UUID malformado no WHERE.
const pgInvalidText = "22P02"

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

const leadColumns = `
	id, name, COALESCE(email, ''), COALESCE(phone, ''),
	COALESCE(owner_name, ''), COALESCE(owner_email, ''), COALESCE(owner_phone, ''),
	stage, last_interaction_at, followup_at, COALESCE(followup_note, ''),
	created_at, updated_at`

func (r *LeadRepository) FetchLeadsForAging(ctx context.Context, filter entity.LeadFilter) ([]*entity.Lead, error) {
	query := `
		SELECT` + leadColumns + `
		FROM leads
		WHERE ($1::text[] IS NULL OR stage = ANY($1::text[]))
		  AND ($2 = '' OR owner_name = $2)
		ORDER BY COALESCE(last_interaction_at, created_at) ASC
		LIMIT $3
	`

	var stages []string
	for _, s := range filter.Stages {
		stages = append(stages, string(s))
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultAgingLimit
	}

	rows, err := r.DB.QueryContext(ctx, query, pq.Array(stages), filter.OwnerName, limit)
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar leads: %w", err)
	}
	defer rows.Close()

	var leads []*entity.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("erro ao escanear lead: %w", err)
		}
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("erro ao iterar leads: %w", err)
	}
	return leads, nil
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	query := `SELECT` + leadColumns + ` FROM leads WHERE id = $1`

	lead, err := scanLead(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidID(err) {
			return nil, entity.ErrLeadNotFound
		}
		return nil, fmt.Errorf("erro ao buscar lead: %w", err)
	}
	return lead, nil
}

func (r *LeadRepository) FetchOverdueFollowups(ctx context.Context, now time.Time) ([]*entity.Lead, error) {
	query := `
		SELECT` + leadColumns + `
		FROM leads
		WHERE followup_at IS NOT NULL
		  AND followup_at <= $1
		  AND stage <> ALL($2::text[])
		ORDER BY followup_at ASC
	`

	rows, err := r.DB.QueryContext(ctx, query, now.UTC(), pq.Array(closedStages()))
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar follow-ups vencidos: %w", err)
	}
	defer rows.Close()

	var leads []*entity.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("erro ao escanear lead: %w", err)
		}
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("erro ao iterar follow-ups vencidos: %w", err)
	}
	return leads, nil
}

func closedStages() []string {
	var out []string
	for _, s := range entity.Stages {
		if s.IsClosed() {
			out = append(out, string(s))
		}
	}
	return out
}

func (r *LeadRepository) UpdateFollowup(ctx context.Context, leadID string, at time.Time, note, actorName string) error {
	return r.mutate(ctx, leadID, entity.ChangeFollowupSet, actorName, at.UTC().Format(time.RFC3339), entity.ErrLeadNotFound,
		`UPDATE leads SET followup_at = $2, followup_note = NULLIF($3, ''), updated_at = NOW() WHERE id = $1`,
		leadID, at.UTC(), note,
	)
}

func (r *LeadRepository) RemoveFollowup(ctx context.Context, leadID, actorName string) error {
	// sem linhas afetadas: o lead existe (checado sob o lock) mas já não tem follow-up
	return r.mutate(ctx, leadID, entity.ChangeFollowupRemoved, actorName, "", entity.ErrNoFollowup,
		`UPDATE leads SET followup_at = NULL, followup_note = NULL, updated_at = NOW()
		 WHERE id = $1 AND followup_at IS NOT NULL`,
		leadID,
	)
}

func (r *LeadRepository) RecordInteraction(ctx context.Context, leadID string, at time.Time, actorName string) error {
	return r.mutate(ctx, leadID, entity.ChangeInteraction, actorName, "", entity.ErrLeadNotFound,
		`UPDATE leads SET last_interaction_at = $2, updated_at = NOW() WHERE id = $1`,
		leadID, at.UTC(),
	)
}

func (r *LeadRepository) UpdateStage(ctx context.Context, leadID string, stage entity.Stage, actorName string) error {
	return r.mutate(ctx, leadID, entity.ChangeStage, actorName, string(stage), entity.ErrLeadNotFound,
		`UPDATE leads SET stage = $2, updated_at = NOW() WHERE id = $1`,
		leadID, string(stage),
	)
}

// mutate aplica o UPDATE e grava o histórico na mesma transação. noRows é o
// erro devolvido quando o UPDATE não afeta nenhuma linha.
func (r *LeadRepository) mutate(ctx context.Context, leadID string, kind entity.ChangeKind, actorName, payload string, noRows error, query string, args ...any) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("erro ao abrir transação: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		if isInvalidID(err) {
			return entity.ErrLeadNotFound
		}
		return fmt.Errorf("erro ao atualizar lead (%s): %w", kind, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return noRows
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO lead_history (lead_id, kind, actor_name, payload) VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''))`,
		leadID, string(kind), actorName, payload,
	)
	if err != nil {
		return fmt.Errorf("erro ao gravar histórico: %w", err)
	}

	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (*entity.Lead, error) {
	var (
		lead            entity.Lead
		stage           string
		lastInteraction sql.NullTime
		followup        sql.NullTime
	)
	err := row.Scan(
		&lead.ID, &lead.Name, &lead.Email, &lead.Phone,
		&lead.OwnerName, &lead.OwnerEmail, &lead.OwnerPhone,
		&stage, &lastInteraction, &followup, &lead.FollowupNote,
		&lead.CreatedAt, &lead.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	lead.Stage = entity.Stage(stage)
	lead.LastInteractionAt = nullTimePtr(lastInteraction)
	lead.FollowupAt = nullTimePtr(followup)
	return &lead, nil
}

func nullTimePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func isInvalidID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgInvalidText
}
