package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-tracker/internal/domain"
)

// LabelRepository persists priorities or categories.
// Names are unique case-insensitively.
type LabelRepository interface {
	Kind() domain.LabelKind
	Create(ctx context.Context, label *domain.Label) error
	Update(ctx context.Context, label *domain.Label) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Label, error)
	GetByName(ctx context.Context, name string) (*domain.Label, error)
	List(ctx context.Context) ([]domain.Label, error)
	Search(ctx context.Context, keyword string) ([]domain.Label, error)
	CountTickets(ctx context.Context, id int64) (int64, error)
	Stats(ctx context.Context) ([]domain.LabelStat, error)
	WithUnresolvedTickets(ctx context.Context) ([]domain.Label, error)
	UsedByUser(ctx context.Context, userID int64) ([]domain.Label, error)
}

type labelRepository struct {
	pool  *pgxpool.Pool
	kind  domain.LabelKind
	table string
	// usage yields (label_id, ticket_id) pairs.
	usage string
}

// NewPriorityRepository returns the Postgres-backed priority store.
func NewPriorityRepository(pool *pgxpool.Pool) LabelRepository {
	return &labelRepository{
		pool:  pool,
		kind:  domain.LabelPriority,
		table: "priorities",
		usage: "SELECT priority_id AS label_id, id AS ticket_id FROM tickets",
	}
}

// NewCategoryRepository returns the Postgres-backed category store.
func NewCategoryRepository(pool *pgxpool.Pool) LabelRepository {
	return &labelRepository{
		pool:  pool,
		kind:  domain.LabelCategory,
		table: "categories",
		usage: "SELECT category_id AS label_id, ticket_id FROM ticket_categories",
	}
}

func (r *labelRepository) Kind() domain.LabelKind {
	return r.kind
}

func (r *labelRepository) Create(ctx context.Context, label *domain.Label) error {
	query := fmt.Sprintf(`INSERT INTO %s (name) VALUES ($1) RETURNING id`, r.table)
	err := r.pool.QueryRow(ctx, query, label.Name).Scan(&label.ID)
	if isUniqueViolation(err) {
		return domain.ErrDuplicateName
	}
	return err
}

func (r *labelRepository) Update(ctx context.Context, label *domain.Label) error {
	query := fmt.Sprintf(`UPDATE %s SET name=$1 WHERE id=$2`, r.table)
	cmd, err := r.pool.Exec(ctx, query, label.Name, label.ID)
	if isUniqueViolation(err) {
		return domain.ErrDuplicateName
	}
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.LabelNotFound(r.kind)
	}
	return nil
}

func (r *labelRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id=$1`, r.table), id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.LabelNotFound(r.kind)
	}
	return nil
}

func (r *labelRepository) GetByID(ctx context.Context, id int64) (*domain.Label, error) {
	var label domain.Label
	query := fmt.Sprintf(`SELECT id, name FROM %s WHERE id=$1`, r.table)
	if err := r.pool.QueryRow(ctx, query, id).Scan(&label.ID, &label.Name); err != nil {
		return nil, mapNoRows(err, domain.LabelNotFound(r.kind))
	}
	return &label, nil
}

func (r *labelRepository) GetByName(ctx context.Context, name string) (*domain.Label, error) {
	var label domain.Label
	query := fmt.Sprintf(`SELECT id, name FROM %s WHERE LOWER(name)=LOWER($1)`, r.table)
	if err := r.pool.QueryRow(ctx, query, strings.TrimSpace(name)).Scan(&label.ID, &label.Name); err != nil {
		return nil, mapNoRows(err, domain.LabelNotFound(r.kind))
	}
	return &label, nil
}

func (r *labelRepository) List(ctx context.Context) ([]domain.Label, error) {
	return r.queryLabels(ctx, fmt.Sprintf(`SELECT id, name FROM %s ORDER BY name`, r.table))
}

func (r *labelRepository) Search(ctx context.Context, keyword string) ([]domain.Label, error) {
	query := fmt.Sprintf(`SELECT id, name FROM %s WHERE LOWER(name) LIKE $1 ORDER BY name`, r.table)
	return r.queryLabels(ctx, query, "%"+strings.ToLower(strings.TrimSpace(keyword))+"%")
}

func (r *labelRepository) CountTickets(ctx context.Context, id int64) (int64, error) {
	var count int64
	query := fmt.Sprintf(`SELECT COUNT(*) FROM (%s) u WHERE u.label_id=$1`, r.usage)
	err := r.pool.QueryRow(ctx, query, id).Scan(&count)
	return count, err
}

// Stats counts tickets per label, most used first. Unused labels report zero.
func (r *labelRepository) Stats(ctx context.Context) ([]domain.LabelStat, error) {
	query := fmt.Sprintf(`
        SELECT l.id, l.name, COUNT(u.ticket_id)
        FROM %s l LEFT JOIN (%s) u ON u.label_id = l.id
        GROUP BY l.id, l.name
        ORDER BY COUNT(u.ticket_id) DESC, l.name`, r.table, r.usage)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := []domain.LabelStat{}
	for rows.Next() {
		var s domain.LabelStat
		if err := rows.Scan(&s.ID, &s.Name, &s.Count); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

func (r *labelRepository) WithUnresolvedTickets(ctx context.Context) ([]domain.Label, error) {
	query := fmt.Sprintf(`
        SELECT DISTINCT l.id, l.name
        FROM %s l JOIN (%s) u ON u.label_id = l.id JOIN tickets t ON t.id = u.ticket_id
        WHERE t.resolved = FALSE
        ORDER BY l.name`, r.table, r.usage)
	return r.queryLabels(ctx, query)
}

func (r *labelRepository) UsedByUser(ctx context.Context, userID int64) ([]domain.Label, error) {
	query := fmt.Sprintf(`
        SELECT DISTINCT l.id, l.name
        FROM %s l JOIN (%s) u ON u.label_id = l.id JOIN tickets t ON t.id = u.ticket_id
        WHERE t.submitter_id = $1
        ORDER BY l.name`, r.table, r.usage)
	return r.queryLabels(ctx, query, userID)
}

func (r *labelRepository) queryLabels(ctx context.Context, query string, args ...any) ([]domain.Label, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	labels := []domain.Label{}
	for rows.Next() {
		var l domain.Label
		if err := rows.Scan(&l.ID, &l.Name); err != nil {
			return nil, err
		}
		labels = append(labels, l)
	}
	return labels, rows.Err()
}
