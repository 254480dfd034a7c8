package repository

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// MaxPageSize is the maximum allowed page size for record queries
const MaxPageSize = 500

// DefaultPageSize is used when a query does not set PerPage
const DefaultPageSize = 200

var (
	// ErrUnknownEntity is returned when a query targets an entity the store does not expose
	ErrUnknownEntity = errors.New("unknown entity")

	// ErrUnknownField is returned when a filter, sort or window names a column outside the whitelist
	ErrUnknownField = errors.New("unknown field")
)

// Entity names a record collection
type Entity string

const (
	EntityUsers             Entity = "users"
	EntityCompanies         Entity = "companies"
	EntityContacts          Entity = "contacts"
	EntityLeads             Entity = "leads"
	EntityInvoices          Entity = "invoices"
	EntityCampaigns         Entity = "campaigns"
	EntityEmailLogs         Entity = "email_logs"
	EntityMarketingExpenses Entity = "marketing_expenses"
	EntityTasks             Entity = "tasks"
	EntityActivities        Entity = "activities"
)

// entitySchema whitelists the columns of one collection
type entitySchema struct {
	table       string
	columns     map[string]bool
	windowField string
}

func schema(table, windowField string, columns ...string) entitySchema {
	set := make(map[string]bool, len(columns)+1)
	set["id"] = true
	for _, c := range columns {
		set[c] = true
	}
	return entitySchema{table: table, columns: set, windowField: windowField}
}

var schemas = map[Entity]entitySchema{
	EntityUsers:     schema("users", "created_at", "name", "email", "role", "created_at", "updated_at"),
	EntityCompanies: schema("companies", "created_at", "name", "industry", "city", "created_at", "updated_at"),
	EntityContacts: schema("contacts", "created_at",
		"first_name", "last_name", "email", "company_id", "owner_id", "tags", "created_at", "updated_at"),
	EntityLeads: schema("leads", "created_at",
		"title", "value", "status", "priority", "source", "contact_id", "company_id", "owner_id",
		"campaign_id", "expected_close", "closed_at", "created_at", "updated_at"),
	EntityInvoices: schema("invoices", "issued_at",
		"number", "lead_id", "contact_id", "company_id", "owner_id", "status", "amount", "tax_rate",
		"total", "issued_at", "due_at", "paid_at", "created_at", "updated_at"),
	EntityCampaigns: schema("campaigns", "created_at",
		"name", "type", "status", "budget", "total", "sent", "failed", "created_at", "updated_at"),
	EntityEmailLogs: schema("email_logs", "sent_at",
		"campaign_id", "contact_id", "recipient", "status", "open_count", "click_count", "sent_at",
		"opened_at", "clicked_at", "created_at", "updated_at"),
	EntityMarketingExpenses: schema("marketing_expenses", "date",
		"date", "amount", "category", "campaign_id", "description", "created_at", "updated_at"),
	EntityTasks: schema("tasks", "created_at",
		"title", "type", "status", "assignee_id", "lead_id", "due_date", "completed_at", "created_at", "updated_at"),
	EntityActivities: schema("activities", "created_at",
		"type", "description", "user_id", "lead_id", "contact_id", "created_at"),
}

// Window restricts a query to records whose Field falls in [Start, End).
// An empty Field uses the default time column of the entity.
type Window struct {
	Field string
	Start time.Time
	End   time.Time
}

// Query is a paginated read against one record collection
type Query struct {
	Entity  Entity
	Filter  Predicate
	Sort    string // comma-separated columns, "-" prefix for descending
	Page    int
	PerPage int
	Window  *Window
}

// PageInfo describes the position of a page in the full result
type PageInfo struct {
	TotalItems int64 `json:"totalItems"`
	TotalPages int   `json:"totalPages"`
	Page       int   `json:"page"`
	PerPage    int   `json:"perPage"`
}

// Page is one page of records
type Page[T any] struct {
	Items []T `json:"items"`
	PageInfo
}

func (q Query) schema() (entitySchema, error) {
	s, ok := schemas[q.Entity]
	if !ok {
		return entitySchema{}, fmt.Errorf("%w: %q", ErrUnknownEntity, q.Entity)
	}
	return s, nil
}

func (q Query) pagination() (page, perPage int) {
	page, perPage = q.Page, q.PerPage
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPageSize
	}
	if perPage > MaxPageSize {
		perPage = MaxPageSize
	}
	return page, perPage
}

// where renders the window and filter as one SQL condition
func (q Query) where(s entitySchema) (string, []interface{}, error) {
	var parts []string
	var args []interface{}

	if q.Window != nil {
		field := q.Window.Field
		if field == "" {
			field = s.windowField
		}
		if !s.columns[field] {
			return "", nil, fmt.Errorf("%w: %s.%s", ErrUnknownField, s.table, field)
		}
		parts = append(parts, field+" >= ? AND "+field+" < ?")
		args = append(args, q.Window.Start, q.Window.End)
	}

	if q.Filter != nil {
		sql, filterArgs, err := q.Filter.render(s)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, sql)
		args = append(args, filterArgs...)
	}

	if len(parts) == 0 {
		return "", nil, nil
	}
	return "(" + strings.Join(parts, ") AND (") + ")", args, nil
}

// orderClause renders the sort expression, always ending with id for stable paging
func (q Query) orderClause(s entitySchema) (string, error) {
	var terms []string
	hasID := false
	for _, raw := range strings.Split(q.Sort, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		direction := "ASC"
		if strings.HasPrefix(raw, "-") {
			direction = "DESC"
			raw = raw[1:]
		} else {
			raw = strings.TrimPrefix(raw, "+")
		}
		if !s.columns[raw] {
			return "", fmt.Errorf("%w: %s.%s", ErrUnknownField, s.table, raw)
		}
		if raw == "id" {
			hasID = true
		}
		terms = append(terms, raw+" "+direction)
	}
	if !hasID {
		terms = append(terms, "id ASC")
	}
	return strings.Join(terms, ", "), nil
}
