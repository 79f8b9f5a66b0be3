// internal/adapter/storage/account_store.go

package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"trendpulse/internal/domain/trend"
)

// loadAccountsQuery returns one row per account keyword in a total order.
// Names follow positions so equal positions still load the same way.
const loadAccountsQuery = `
	SELECT
		a.username, a.weight, k.category, k.keyword
	FROM tracked_accounts a
	LEFT JOIN account_keywords k ON k.username = a.username
	WHERE a.enabled = true
	ORDER BY a.position, a.username, k.category_position, k.category, k.keyword_position, k.keyword
`

// AccountStore loads the tracked account set from Postgres
type AccountStore struct {
	db *pgxpool.Pool
}

// NewAccountStore creates a new account store
func NewAccountStore(db *pgxpool.Pool) *AccountStore {
	return &AccountStore{
		db: db,
	}
}

// accountRow is one joined row of an account and one of its keywords.
// Category and Keyword are nil for accounts without keywords.
type accountRow struct {
	Username string
	Weight   float64
	Category *string
	Keyword  *string
}

// LoadAccounts reads enabled accounts with their ordered keyword categories
func (s *AccountStore) LoadAccounts(ctx context.Context) ([]trend.AccountConfig, error) {
	rows, err := s.db.Query(ctx, loadAccountsQuery)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	records, err := scanAccountRows(rows)
	if err != nil {
		return nil, err
	}

	return assembleAccounts(records)
}

func scanAccountRows(rows pgx.Rows) ([]accountRow, error) {
	var records []accountRow
	for rows.Next() {
		var r accountRow
		if err := rows.Scan(&r.Username, &r.Weight, &r.Category, &r.Keyword); err != nil {
			return nil, fmt.Errorf("error scanning account: %w", err)
		}
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}
	return records, nil
}

// assembleAccounts groups ordered rows into account configurations,
// keeping the row order of accounts, categories and keywords
func assembleAccounts(records []accountRow) ([]trend.AccountConfig, error) {
	type draft struct {
		username   string
		weight     float64
		categories []trend.CategoryKeywords
		index      map[string]int
	}

	var drafts []*draft
	byName := make(map[string]*draft)

	for _, r := range records {
		d, ok := byName[r.Username]
		if !ok {
			d = &draft{username: r.Username, weight: r.Weight, index: make(map[string]int)}
			byName[r.Username] = d
			drafts = append(drafts, d)
		}

		if r.Category == nil || r.Keyword == nil {
			continue
		}

		i, ok := d.index[*r.Category]
		if !ok {
			i = len(d.categories)
			d.index[*r.Category] = i
			d.categories = append(d.categories, trend.CategoryKeywords{Name: *r.Category})
		}
		d.categories[i].Keywords = append(d.categories[i].Keywords, *r.Keyword)
	}

	accounts := make([]trend.AccountConfig, 0, len(drafts))
	for _, d := range drafts {
		acc, err := trend.NewAccountConfig(d.username, d.categories, d.weight)
		if err != nil {
			return nil, fmt.Errorf("invalid account %q: %w", d.username, err)
		}
		accounts = append(accounts, acc)
	}
	return accounts, nil
}
