package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/yourusername/galoya-api/internal/database"
)

// Table はリソース1種類分のテーブル定義です。
// 共通カラム（id, slug, created_at, updated_at）は Columns に含めません。
type Table[T Entity[T]] struct {
	Name    string
	Columns []string
	OrderBy string
	// Values は Columns と同じ順序で値を返します。
	Values func(item T) []any
	// Fields は Scan 先のポインタを Columns と同じ順序で返します。
	Fields func(item T) []any
	New    func() T
}

// PostgresStore は Table の定義に従って読み書きする Store 実装です。
type PostgresStore[T Entity[T]] struct {
	db    database.DBTX
	table Table[T]

	selectSQL string
	insertSQL string
	updateSQL string
	lockSQL   string
}

// NewPostgresStore は PostgresStore を作成します。
func NewPostgresStore[T Entity[T]](db database.DBTX, table Table[T]) *PostgresStore[T] {
	cols := append([]string{"id", "slug", "created_at", "updated_at"}, table.Columns...)

	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	assignments := []string{"slug = $2", "updated_at = $3"}
	for i, col := range table.Columns {
		assignments = append(assignments, fmt.Sprintf("%s = $%d", col, i+4))
	}

	return &PostgresStore[T]{
		db:        db,
		table:     table,
		selectSQL: fmt.Sprintf("SELECT %s FROM %s", strings.Join(cols, ", "), table.Name),
		insertSQL: fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table.Name, strings.Join(cols, ", "), strings.Join(placeholders, ", ")),
		updateSQL: fmt.Sprintf("UPDATE %s SET %s WHERE id = $1", table.Name, strings.Join(assignments, ", ")),
		lockSQL:   fmt.Sprintf("SELECT %s FROM %s WHERE id = $1 FOR UPDATE", strings.Join(cols, ", "), table.Name),
	}
}

func (s *PostgresStore[T]) List(ctx context.Context) ([]T, error) {
	rows, err := s.db.Query(ctx, s.selectSQL+" ORDER BY "+s.table.OrderBy)
	if err != nil {
		return nil, oops.Code("CATALOG_LIST_FAILED").With("table", s.table.Name).Wrap(err)
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (T, error) {
		return s.scan(row)
	})
	if err != nil {
		return nil, oops.Code("CATALOG_LIST_FAILED").With("table", s.table.Name).Wrap(err)
	}
	return items, nil
}

func (s *PostgresStore[T]) GetByID(ctx context.Context, id string) (T, error) {
	return s.getOne(ctx, "id", id)
}

func (s *PostgresStore[T]) GetBySlug(ctx context.Context, slug string) (T, error) {
	return s.getOne(ctx, "slug", slug)
}

func (s *PostgresStore[T]) getOne(ctx context.Context, column, value string) (T, error) {
	item, err := s.scan(s.db.QueryRow(ctx, s.selectSQL+" WHERE "+column+" = $1", value))
	if errors.Is(err, pgx.ErrNoRows) {
		var zero T
		return zero, ErrNotFound
	}
	if err != nil {
		var zero T
		return zero, oops.Code("CATALOG_GET_FAILED").With("table", s.table.Name).With(column, value).Wrap(err)
	}
	return item, nil
}

func (s *PostgresStore[T]) Create(ctx context.Context, item T) error {
	meta := item.Metadata()
	args := append([]any{meta.ID, meta.Slug, meta.CreatedAt, meta.UpdatedAt}, s.table.Values(item)...)
	_, err := s.db.Exec(ctx, s.insertSQL, args...)
	if database.IsUniqueViolation(err) {
		return ErrSlugConflict
	}
	if err != nil {
		return oops.Code("CATALOG_CREATE_FAILED").With("table", s.table.Name).With("slug", meta.Slug).Wrap(err)
	}
	return nil
}

// Modify は1トランザクション内で行をロックして読み込み、apply の結果で更新します。
func (s *PostgresStore[T]) Modify(ctx context.Context, id string, apply func(item T) error) (T, error) {
	var zero T
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return zero, oops.Code("CATALOG_UPDATE_FAILED").With("table", s.table.Name).With("id", id).Wrap(err)
	}

	item, err := s.modify(ctx, tx, id, apply)
	if err != nil {
		_ = tx.Rollback(ctx)
		return zero, err
	}
	if err := tx.Commit(ctx); err != nil {
		return zero, oops.Code("CATALOG_UPDATE_FAILED").With("table", s.table.Name).With("id", id).Wrap(err)
	}
	return item, nil
}

func (s *PostgresStore[T]) modify(ctx context.Context, tx pgx.Tx, id string, apply func(item T) error) (T, error) {
	var zero T
	item, err := s.scan(tx.QueryRow(ctx, s.lockSQL, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return zero, ErrNotFound
	}
	if err != nil {
		return zero, oops.Code("CATALOG_UPDATE_FAILED").With("table", s.table.Name).With("id", id).Wrap(err)
	}

	if err := apply(item); err != nil {
		return zero, err
	}
	meta := item.Metadata()
	meta.ID = id
	args := append([]any{meta.ID, meta.Slug, meta.UpdatedAt}, s.table.Values(item)...)
	_, err = tx.Exec(ctx, s.updateSQL, args...)
	if database.IsUniqueViolation(err) {
		return zero, ErrSlugConflict
	}
	if err != nil {
		return zero, oops.Code("CATALOG_UPDATE_FAILED").With("table", s.table.Name).With("id", id).Wrap(err)
	}
	return item, nil
}

func (s *PostgresStore[T]) Delete(ctx context.Context, id string) error {
	if _, err := s.db.Exec(ctx, "DELETE FROM "+s.table.Name+" WHERE id = $1", id); err != nil {
		return oops.Code("CATALOG_DELETE_FAILED").With("table", s.table.Name).With("id", id).Wrap(err)
	}
	return nil
}

func (s *PostgresStore[T]) DeleteAll(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, "DELETE FROM "+s.table.Name); err != nil {
		return oops.Code("CATALOG_RESET_FAILED").With("table", s.table.Name).Wrap(err)
	}
	return nil
}

func (s *PostgresStore[T]) scan(row pgx.Row) (T, error) {
	item := s.table.New()
	meta := item.Metadata()
	dest := append([]any{&meta.ID, &meta.Slug, &meta.CreatedAt, &meta.UpdatedAt}, s.table.Fields(item)...)
	if err := row.Scan(dest...); err != nil {
		var zero T
		return zero, err
	}
	return item, nil
}

// ProductTable は products テーブルの定義です。
var ProductTable = Table[*Product]{
	Name:    "products",
	Columns: []string{"name", "abv", "image", "description", "ingredients", "tasting_notes", "long_description"},
	OrderBy: "created_at ASC, id ASC",
	Values: func(p *Product) []any {
		return []any{p.Name, p.ABV, p.Image, p.Description, p.Ingredients, p.TastingNotes, p.LongDescription}
	},
	Fields: func(p *Product) []any {
		return []any{&p.Name, &p.ABV, &p.Image, &p.Description, &p.Ingredients, &p.TastingNotes, &p.LongDescription}
	},
	New: func() *Product { return &Product{} },
}

// PortfolioTable は portfolio_items テーブルの定義です。
var PortfolioTable = Table[*PortfolioItem]{
	Name:    "portfolio_items",
	Columns: []string{"title", "category", "thumbnail", "date", "description", "images"},
	OrderBy: "created_at ASC, id ASC",
	Values: func(p *PortfolioItem) []any {
		return []any{p.Title, p.Category, p.Thumbnail, p.Date, p.Description, p.Images}
	},
	Fields: func(p *PortfolioItem) []any {
		return []any{&p.Title, &p.Category, &p.Thumbnail, &p.Date, &p.Description, &p.Images}
	},
	New: func() *PortfolioItem { return &PortfolioItem{} },
}

// AwardTable は awards テーブルの定義です。
var AwardTable = Table[*Award]{
	Name:    "awards",
	Columns: []string{"name", "year", "organization", "category", "description", "image", "display_order"},
	OrderBy: "display_order ASC, created_at ASC, id ASC",
	Values: func(a *Award) []any {
		return []any{a.Name, a.Year, a.Organization, a.Category, a.Description, a.Image, a.DisplayOrder}
	},
	Fields: func(a *Award) []any {
		return []any{&a.Name, &a.Year, &a.Organization, &a.Category, &a.Description, &a.Image, &a.DisplayOrder}
	},
	New: func() *Award { return &Award{} },
}
