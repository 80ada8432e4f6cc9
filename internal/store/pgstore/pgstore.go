// Package pgstore provides a PostgreSQL implementation of ticket.Store and
// triage.Store.
package pgstore

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/deskhivehq/deskhive/internal/ticket"
	"github.com/deskhivehq/deskhive/internal/triage"
)

var tracer = otel.Tracer("github.com/deskhivehq/deskhive/internal/store/pgstore")

//go:embed schema.sql
var schema string

// Store persists tickets, triage results, and activity events in PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// New applies the schema on the given pool and returns a ready Store.
func New(ctx context.Context, pool *pgxpool.Pool) (*Store, error) {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) startSpan(ctx context.Context, name, op string) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", op),
	))
}

func spanErr(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

const ticketColumns = `id, title, description, customer_email, status, priority, assigned_to, tags, created_at, updated_at`

// CreateTicket inserts a new ticket row.
func (s *Store) CreateTicket(ctx context.Context, t *ticket.Ticket) error {
	ctx, span := s.startSpan(ctx, "pgstore.CreateTicket", "INSERT")
	defer span.End()

	tags, err := json.Marshal(t.Tags)
	if err != nil {
		return spanErr(span, fmt.Errorf("marshal tags: %w", err))
	}

	query := `INSERT INTO tickets (` + ticketColumns + `) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`
	_, err = s.pool.Exec(ctx, query,
		t.ID, t.Title, t.Description, t.CustomerEmail, string(t.Status),
		string(t.Priority), t.Assignee, tags, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return spanErr(span, fmt.Errorf("insert ticket: %w", err))
	}
	return nil
}

// GetTicket retrieves a ticket by ID.
func (s *Store) GetTicket(ctx context.Context, id string) (*ticket.Ticket, bool, error) {
	ctx, span := s.startSpan(ctx, "pgstore.GetTicket", "SELECT")
	defer span.End()

	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1`
	t, err := scanTicket(s.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, spanErr(span, err)
	}
	return t, true, nil
}

// ListTickets returns tickets matching the filter, newest first.
func (s *Store) ListTickets(ctx context.Context, f ticket.Filter) ([]*ticket.Ticket, error) {
	ctx, span := s.startSpan(ctx, "pgstore.ListTickets", "SELECT")
	defer span.End()

	query := `SELECT ` + ticketColumns + ` FROM tickets
		WHERE ($1 = '' OR status = $1) AND ($2 = '' OR priority = $2)
		ORDER BY created_at DESC, id DESC`
	rows, err := s.pool.Query(ctx, query, string(f.Status), string(f.Priority))
	if err != nil {
		return nil, spanErr(span, fmt.Errorf("list tickets: %w", err))
	}
	defer rows.Close()

	var out []*ticket.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, spanErr(span, err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, spanErr(span, fmt.Errorf("list tickets: %w", err))
	}
	return out, nil
}

// UpdateTicket replaces the mutable columns of a ticket row.
func (s *Store) UpdateTicket(ctx context.Context, t *ticket.Ticket) error {
	ctx, span := s.startSpan(ctx, "pgstore.UpdateTicket", "UPDATE")
	defer span.End()

	tags, err := json.Marshal(t.Tags)
	if err != nil {
		return spanErr(span, fmt.Errorf("marshal tags: %w", err))
	}

	query := `UPDATE tickets SET
		title = $2, description = $3, customer_email = $4, status = $5,
		priority = $6, assigned_to = $7, tags = $8, updated_at = $9
		WHERE id = $1`
	tag, err := s.pool.Exec(ctx, query,
		t.ID, t.Title, t.Description, t.CustomerEmail, string(t.Status),
		string(t.Priority), t.Assignee, tags, t.UpdatedAt,
	)
	if err != nil {
		return spanErr(span, fmt.Errorf("update ticket: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return spanErr(span, fmt.Errorf("ticket %s not found", t.ID))
	}
	return nil
}

// DeleteTicket removes the ticket row; triage result and activity rows go
// with it via ON DELETE CASCADE.
func (s *Store) DeleteTicket(ctx context.Context, id string) error {
	ctx, span := s.startSpan(ctx, "pgstore.DeleteTicket", "DELETE")
	defer span.End()

	if _, err := s.pool.Exec(ctx, `DELETE FROM tickets WHERE id = $1`, id); err != nil {
		return spanErr(span, fmt.Errorf("delete ticket: %w", err))
	}
	return nil
}

// AppendActivity inserts one immutable history row.
func (s *Store) AppendActivity(ctx context.Context, ev *ticket.ActivityEvent) error {
	ctx, span := s.startSpan(ctx, "pgstore.AppendActivity", "INSERT")
	defer span.End()

	meta := ev.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return spanErr(span, fmt.Errorf("marshal metadata: %w", err))
	}

	query := `INSERT INTO activity_events (id, ticket_id, action_type, actor, description, metadata, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`
	_, err = s.pool.Exec(ctx, query,
		ev.ID, ev.TicketID, string(ev.Action), ev.Actor, ev.Description, metaJSON, ev.CreatedAt,
	)
	if err != nil {
		return spanErr(span, fmt.Errorf("insert activity: %w", err))
	}
	return nil
}

// ListActivity returns a ticket's history, oldest first.
func (s *Store) ListActivity(ctx context.Context, ticketID string) ([]*ticket.ActivityEvent, error) {
	ctx, span := s.startSpan(ctx, "pgstore.ListActivity", "SELECT")
	defer span.End()

	query := `SELECT id, ticket_id, action_type, actor, description, metadata, created_at
		FROM activity_events WHERE ticket_id = $1 ORDER BY created_at, id`
	rows, err := s.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, spanErr(span, fmt.Errorf("list activity: %w", err))
	}
	defer rows.Close()

	var out []*ticket.ActivityEvent
	for rows.Next() {
		var (
			ev       ticket.ActivityEvent
			action   string
			metaJSON []byte
		)
		if err := rows.Scan(&ev.ID, &ev.TicketID, &action, &ev.Actor, &ev.Description, &metaJSON, &ev.CreatedAt); err != nil {
			return nil, spanErr(span, fmt.Errorf("scan activity: %w", err))
		}
		ev.Action = ticket.Action(action)
		if err := json.Unmarshal(metaJSON, &ev.Metadata); err != nil {
			return nil, spanErr(span, fmt.Errorf("unmarshal metadata: %w", err))
		}
		out = append(out, &ev)
	}
	if err := rows.Err(); err != nil {
		return nil, spanErr(span, fmt.Errorf("list activity: %w", err))
	}
	return out, nil
}

// Put upserts the triage result for a ticket, replacing any previous one.
func (s *Store) Put(ctx context.Context, r *triage.Result) error {
	ctx, span := s.startSpan(ctx, "pgstore.PutTriageResult", "UPSERT")
	defer span.End()

	query := `INSERT INTO triage_results (
		ticket_id, suggested_priority, confidence, priority_rationale,
		suggested_assignee, assignee_rationale, reply_draft, reply_truncated,
		model, triaged_at, duration_s, input_tokens, output_tokens
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	ON CONFLICT (ticket_id) DO UPDATE SET
		suggested_priority = EXCLUDED.suggested_priority,
		confidence         = EXCLUDED.confidence,
		priority_rationale = EXCLUDED.priority_rationale,
		suggested_assignee = EXCLUDED.suggested_assignee,
		assignee_rationale = EXCLUDED.assignee_rationale,
		reply_draft        = EXCLUDED.reply_draft,
		reply_truncated    = EXCLUDED.reply_truncated,
		model              = EXCLUDED.model,
		triaged_at         = EXCLUDED.triaged_at,
		duration_s         = EXCLUDED.duration_s,
		input_tokens       = EXCLUDED.input_tokens,
		output_tokens      = EXCLUDED.output_tokens`

	_, err := s.pool.Exec(ctx, query,
		r.TicketID, string(r.Priority), r.Confidence, r.PriorityRationale,
		r.Assignee, r.AssigneeRationale, r.ReplyDraft, r.ReplyTruncated,
		r.Model, r.TriagedAt, r.Duration, r.Usage.InputTokens, r.Usage.OutputTokens,
	)
	if err != nil {
		return spanErr(span, fmt.Errorf("upsert triage result: %w", err))
	}
	return nil
}

// GetByTicket retrieves the stored triage result for a ticket.
func (s *Store) GetByTicket(ctx context.Context, ticketID string) (*triage.Result, bool, error) {
	ctx, span := s.startSpan(ctx, "pgstore.GetTriageResult", "SELECT")
	defer span.End()

	query := `SELECT ticket_id, suggested_priority, confidence, priority_rationale,
		suggested_assignee, assignee_rationale, reply_draft, reply_truncated,
		model, triaged_at, duration_s, input_tokens, output_tokens
		FROM triage_results WHERE ticket_id = $1`

	var (
		r    triage.Result
		prio string
	)
	err := s.pool.QueryRow(ctx, query, ticketID).Scan(
		&r.TicketID, &prio, &r.Confidence, &r.PriorityRationale,
		&r.Assignee, &r.AssigneeRationale, &r.ReplyDraft, &r.ReplyTruncated,
		&r.Model, &r.TriagedAt, &r.Duration, &r.Usage.InputTokens, &r.Usage.OutputTokens,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, spanErr(span, fmt.Errorf("get triage result: %w", err))
	}
	r.Priority = ticket.Priority(prio)
	return &r, true, nil
}

// scanTicket maps one tickets row. Works for both QueryRow and Query rows.
func scanTicket(row pgx.Row) (*ticket.Ticket, error) {
	var (
		t        ticket.Ticket
		status   string
		priority string
		tagsJSON []byte
	)
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.CustomerEmail, &status,
		&priority, &t.Assignee, &tagsJSON, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan ticket: %w", err)
	}
	t.Status = ticket.Status(status)
	t.Priority = ticket.Priority(priority)
	if err := json.Unmarshal(tagsJSON, &t.Tags); err != nil {
		return nil, fmt.Errorf("unmarshal tags: %w", err)
	}
	return &t, nil
}
