package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Fetcher reads pages of records. dest must be a pointer to a slice of the entity's model.
type Fetcher interface {
	Fetch(ctx context.Context, q Query, dest interface{}) (*PageInfo, error)
}

// RecordRepository serves record queries from the CRM database.
//
// Index recommendations for the report queries:
// - CREATE INDEX idx_leads_status_closed_at ON leads(status, closed_at);
// - CREATE INDEX idx_leads_created_at ON leads(created_at);
// - CREATE INDEX idx_invoices_issued_at ON invoices(issued_at);
// - CREATE INDEX idx_email_logs_campaign_id ON email_logs(campaign_id);
// - CREATE INDEX idx_tasks_due_date ON tasks(due_date) WHERE due_date IS NOT NULL;
type RecordRepository struct {
	db *gorm.DB
}

func NewRecordRepository(db *gorm.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// Fetch returns one page of records matching the query
func (r *RecordRepository) Fetch(ctx context.Context, q Query, dest interface{}) (*PageInfo, error) {
	s, err := q.schema()
	if err != nil {
		return nil, err
	}

	where, args, err := q.where(s)
	if err != nil {
		return nil, err
	}
	order, err := q.orderClause(s)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).Table(s.table)
	if where != "" {
		query = query.Where(where, args...)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count %s: %w", q.Entity, err)
	}

	page, perPage := q.pagination()
	if err := query.Order(order).Offset((page - 1) * perPage).Limit(perPage).Find(dest).Error; err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", q.Entity, err)
	}

	totalPages := int((total + int64(perPage) - 1) / int64(perPage))
	return &PageInfo{
		TotalItems: total,
		TotalPages: totalPages,
		Page:       page,
		PerPage:    perPage,
	}, nil
}

// FetchPage reads a single page into a typed page
func FetchPage[T any](ctx context.Context, f Fetcher, q Query) (*Page[T], error) {
	var items []T
	info, err := f.Fetch(ctx, q, &items)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return &Page[T]{Items: items, PageInfo: *info}, nil
}

// FetchAll walks every page of a query and returns all matching records
func FetchAll[T any](ctx context.Context, f Fetcher, q Query) ([]T, error) {
	all := make([]T, 0)
	q.Page = 1
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := FetchPage[T](ctx, f, q)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Items...)
		if page.Page >= page.TotalPages || len(page.Items) == 0 {
			return all, nil
		}
		q.Page++
	}
}
