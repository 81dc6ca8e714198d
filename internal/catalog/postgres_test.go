package catalog

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var portfolioColumns = []string{"id", "slug", "created_at", "updated_at", "title", "category", "thumbnail", "date", "description", "images"}

func newMockPortfolioStore(t *testing.T) (*PostgresStore[*PortfolioItem], pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresStore(mock, PortfolioTable), mock
}

func samplePortfolioItem() *PortfolioItem {
	at := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)
	return &PortfolioItem{
		Meta:        Meta{ID: "p-1", Slug: "the-great-harvest", CreatedAt: at, UpdatedAt: at},
		Title:       "The Great Harvest",
		Category:    CategoryPlantation,
		Thumbnail:   "/img/harvest.png",
		Date:        "August 2023",
		Description: "Harvest scenes.",
		Images:      []string{"/img/a.png", "/img/b.png"},
	}
}

func portfolioRow(p *PortfolioItem) []any {
	return []any{p.ID, p.Slug, p.CreatedAt, p.UpdatedAt, p.Title, p.Category, p.Thumbnail, p.Date, p.Description, p.Images}
}

func TestPostgresStoreSQL(t *testing.T) {
	store, _ := newMockPortfolioStore(t)

	assert.Equal(t,
		"SELECT id, slug, created_at, updated_at, title, category, thumbnail, date, description, images FROM portfolio_items",
		store.selectSQL)
	assert.Equal(t,
		"INSERT INTO portfolio_items (id, slug, created_at, updated_at, title, category, thumbnail, date, description, images) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)",
		store.insertSQL)
	assert.Equal(t,
		"UPDATE portfolio_items SET slug = $2, updated_at = $3, title = $4, category = $5, thumbnail = $6, date = $7, description = $8, images = $9 WHERE id = $1",
		store.updateSQL)
	assert.Equal(t,
		"SELECT id, slug, created_at, updated_at, title, category, thumbnail, date, description, images FROM portfolio_items WHERE id = $1 FOR UPDATE",
		store.lockSQL)
}

func TestPostgresList(t *testing.T) {
	store, mock := newMockPortfolioStore(t)
	item := samplePortfolioItem()

	mock.ExpectQuery(regexp.QuoteMeta(store.selectSQL + " ORDER BY created_at ASC, id ASC")).
		WillReturnRows(pgxmock.NewRows(portfolioColumns).AddRow(portfolioRow(item)...))

	items, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []*PortfolioItem{item}, items)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetBySlug(t *testing.T) {
	store, mock := newMockPortfolioStore(t)
	item := samplePortfolioItem()

	mock.ExpectQuery(regexp.QuoteMeta(store.selectSQL + " WHERE slug = $1")).
		WithArgs(item.Slug).
		WillReturnRows(pgxmock.NewRows(portfolioColumns).AddRow(portfolioRow(item)...))
	mock.ExpectQuery(regexp.QuoteMeta(store.selectSQL + " WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	got, err := store.GetBySlug(context.Background(), item.Slug)
	require.NoError(t, err)
	assert.Equal(t, item, got)

	_, err = store.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreate(t *testing.T) {
	store, mock := newMockPortfolioStore(t)
	item := samplePortfolioItem()

	mock.ExpectExec(regexp.QuoteMeta(store.insertSQL)).
		WithArgs(portfolioRow(item)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(regexp.QuoteMeta(store.insertSQL)).
		WithArgs(portfolioRow(item)...).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})

	require.NoError(t, store.Create(context.Background(), item))
	assert.ErrorIs(t, store.Create(context.Background(), item), ErrSlugConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresModifyLocksRowInTransaction(t *testing.T) {
	store, mock := newMockPortfolioStore(t)
	item := samplePortfolioItem()
	later := item.UpdatedAt.Add(time.Minute)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(store.lockSQL)).
		WithArgs(item.ID).
		WillReturnRows(pgxmock.NewRows(portfolioColumns).AddRow(portfolioRow(item)...))
	mock.ExpectExec(regexp.QuoteMeta(store.updateSQL)).
		WithArgs(item.ID, item.Slug, later, "Harvest Day", item.Category, item.Thumbnail, item.Date, item.Description, item.Images).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	got, err := store.Modify(context.Background(), item.ID, func(p *PortfolioItem) error {
		p.Title = "Harvest Day"
		p.UpdatedAt = later
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Harvest Day", got.Title)
	assert.Equal(t, item.Images, got.Images)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresModifyRollsBack(t *testing.T) {
	store, mock := newMockPortfolioStore(t)
	item := samplePortfolioItem()
	touch := func(p *PortfolioItem) error { return nil }

	// 存在しない
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(store.lockSQL)).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()
	_, err := store.Modify(context.Background(), "missing", touch)
	assert.ErrorIs(t, err, ErrNotFound)

	// slug の重複
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(store.lockSQL)).
		WithArgs(item.ID).
		WillReturnRows(pgxmock.NewRows(portfolioColumns).AddRow(portfolioRow(item)...))
	mock.ExpectExec(regexp.QuoteMeta(store.updateSQL)).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})
	mock.ExpectRollback()
	_, err = store.Modify(context.Background(), item.ID, touch)
	assert.ErrorIs(t, err, ErrSlugConflict)

	// apply のエラーでは書き込まない
	applyErr := errors.New("rejected")
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(store.lockSQL)).
		WithArgs(item.ID).
		WillReturnRows(pgxmock.NewRows(portfolioColumns).AddRow(portfolioRow(item)...))
	mock.ExpectRollback()
	_, err = store.Modify(context.Background(), item.ID, func(*PortfolioItem) error { return applyErr })
	assert.ErrorIs(t, err, applyErr)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDeleteWrapsBackendError(t *testing.T) {
	store, mock := newMockPortfolioStore(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM portfolio_items WHERE id = $1")).
		WithArgs("p-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM portfolio_items WHERE id = $1")).
		WithArgs("p-2").
		WillReturnError(errors.New("connection reset"))

	require.NoError(t, store.Delete(context.Background(), "p-1"))
	err := store.Delete(context.Background(), "p-2")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAwardOrdering(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	store := NewPostgresStore(mock, AwardTable)

	mock.ExpectQuery(regexp.QuoteMeta("FROM awards ORDER BY display_order ASC, created_at ASC, id ASC")).
		WillReturnRows(pgxmock.NewRows([]string{"id", "slug", "created_at", "updated_at", "name", "year", "organization", "category", "description", "image", "display_order"}))

	items, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
	require.NoError(t, mock.ExpectationsWereMet())
}
