package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-tracker/internal/domain"
)

// TicketOrder selects the sort order of a listing.
type TicketOrder int

const (
	OrderNewest TicketOrder = iota
	OrderOldest
	OrderRecentlyResolved
)

// TicketFilter captures listing parameters. Nil fields are not filtered on.
type TicketFilter struct {
	SubmitterID   *int64
	Resolved      *bool
	PriorityID    *int64
	CategoryID    *int64
	SearchTerm    *string
	ResolvedSince *time.Time
	Order         TicketOrder
	Limit         int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	Stats(ctx context.Context) (domain.TicketStats, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `t.id, t.title, t.description, t.resolved, t.created_at, t.resolved_at,
               t.submitter_id, t.resolver_id, p.id, p.name`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const query = `
        INSERT INTO tickets (title, description, resolved, submitter_id, priority_id)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	if err := tx.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Resolved,
		ticket.SubmitterID,
		ticket.Priority.ID,
	).Scan(&ticket.ID, &ticket.CreatedAt); err != nil {
		return err
	}
	if err := replaceCategories(ctx, tx, ticket.ID, ticket.CategoryIDs()); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const query = `
        UPDATE tickets SET title=$1, description=$2, resolved=$3, resolved_at=$4,
            resolver_id=$5, priority_id=$6
        WHERE id=$7`
	cmd, err := tx.Exec(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Resolved,
		ticket.ResolvedAt,
		ticket.ResolverID,
		ticket.Priority.ID,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrTicketNotFound
	}
	if err := replaceCategories(ctx, tx, ticket.ID, ticket.CategoryIDs()); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func replaceCategories(ctx context.Context, tx pgx.Tx, ticketID int64, categoryIDs []int64) error {
	if _, err := tx.Exec(ctx, `DELETE FROM ticket_categories WHERE ticket_id=$1`, ticketID); err != nil {
		return err
	}
	for _, id := range categoryIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO ticket_categories (ticket_id, category_id) VALUES ($1,$2) ON CONFLICT DO NOTHING`,
			ticketID, id,
		); err != nil {
			return err
		}
	}
	return nil
}

func (r *ticketRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrTicketNotFound
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + `
        FROM tickets t JOIN priorities p ON p.id = t.priority_id
        WHERE t.id=$1`

	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapNoRows(err, domain.ErrTicketNotFound)
	}
	tickets := []domain.Ticket{*ticket}
	if err := r.attachCategories(ctx, tickets); err != nil {
		return nil, err
	}
	return &tickets[0], nil
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	base := `SELECT ` + ticketColumns + `
             FROM tickets t JOIN priorities p ON p.id = t.priority_id`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.SubmitterID != nil {
		args = append(args, *filter.SubmitterID)
		clauses = append(clauses, fmt.Sprintf("t.submitter_id=$%d", len(args)))
	}
	if filter.Resolved != nil {
		args = append(args, *filter.Resolved)
		clauses = append(clauses, fmt.Sprintf("t.resolved=$%d", len(args)))
	}
	if filter.PriorityID != nil {
		args = append(args, *filter.PriorityID)
		clauses = append(clauses, fmt.Sprintf("t.priority_id=$%d", len(args)))
	}
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		clauses = append(clauses, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM ticket_categories tc WHERE tc.ticket_id = t.id AND tc.category_id=$%d)", len(args)))
	}
	if filter.ResolvedSince != nil {
		args = append(args, *filter.ResolvedSince)
		clauses = append(clauses, fmt.Sprintf("t.resolved_at >= $%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(t.title) LIKE %s OR LOWER(t.description) LIKE %s)", placeholder, placeholder))
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY %s`, base, strings.Join(clauses, " AND "), orderClause(filter.Order))
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := []domain.Ticket{}
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, *ticket)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachCategories(ctx, tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

func orderClause(order TicketOrder) string {
	switch order {
	case OrderOldest:
		return "t.created_at ASC, t.id ASC"
	case OrderRecentlyResolved:
		return "t.resolved_at DESC NULLS LAST, t.id DESC"
	default:
		return "t.created_at DESC, t.id DESC"
	}
}

func (r *ticketRepository) Stats(ctx context.Context) (domain.TicketStats, error) {
	var stats domain.TicketStats
	if err := r.pool.QueryRow(ctx, `
        SELECT COUNT(*), COUNT(*) FILTER (WHERE NOT resolved), COUNT(*) FILTER (WHERE resolved)
        FROM tickets`).Scan(&stats.Total, &stats.Unresolved, &stats.Resolved); err != nil {
		return stats, err
	}

	rows, err := r.pool.Query(ctx, `
        SELECT p.id, p.name, COUNT(t.id)
        FROM priorities p LEFT JOIN tickets t ON t.priority_id = p.id
        GROUP BY p.id, p.name
        ORDER BY p.name`)
	if err != nil {
		return stats, err
	}
	defer rows.Close()

	stats.ByPriority = []domain.LabelStat{}
	for rows.Next() {
		var s domain.LabelStat
		if err := rows.Scan(&s.ID, &s.Name, &s.Count); err != nil {
			return stats, err
		}
		stats.ByPriority = append(stats.ByPriority, s)
	}
	return stats, rows.Err()
}

func (r *ticketRepository) attachCategories(ctx context.Context, tickets []domain.Ticket) error {
	if len(tickets) == 0 {
		return nil
	}
	ids := make([]int64, len(tickets))
	index := make(map[int64]int, len(tickets))
	for i := range tickets {
		ids[i] = tickets[i].ID
		index[tickets[i].ID] = i
		tickets[i].Categories = []domain.Label{}
	}

	rows, err := r.pool.Query(ctx, `
        SELECT tc.ticket_id, c.id, c.name
        FROM ticket_categories tc JOIN categories c ON c.id = tc.category_id
        WHERE tc.ticket_id = ANY($1)
        ORDER BY c.name`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var ticketID int64
		var label domain.Label
		if err := rows.Scan(&ticketID, &label.ID, &label.Name); err != nil {
			return err
		}
		if i, ok := index[ticketID]; ok {
			tickets[i].Categories = append(tickets[i].Categories, label)
		}
	}
	return rows.Err()
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := row.Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Resolved,
		&ticket.CreatedAt,
		&ticket.ResolvedAt,
		&ticket.SubmitterID,
		&ticket.ResolverID,
		&ticket.Priority.ID,
		&ticket.Priority.Name,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}
