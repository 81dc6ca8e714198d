package catalog

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Store は1種類のリソースの永続化を担います。
type Store[T any] interface {
	List(ctx context.Context) ([]T, error)
	GetByID(ctx context.Context, id string) (T, error)
	GetBySlug(ctx context.Context, slug string) (T, error)
	Create(ctx context.Context, item T) error
	// Modify は最新のレコードに apply を適用して保存します。読み込みから保存までは他の更新と直列化されます。
	// 存在しなければ ErrNotFound です。
	Modify(ctx context.Context, id string, apply func(item T) error) (T, error)
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
}

// ValidationError は入力がスキーマ制約に違反したことを表します。
type ValidationError struct {
	Field string
	Rule  string
	Param string
}

func (e *ValidationError) Error() string {
	switch e.Rule {
	case "required":
		return e.Field + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s", e.Field, e.Param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", e.Field, strings.ReplaceAll(e.Param, " ", ", "))
	case "slug":
		return e.Field + " must be lowercase without spaces or /?#%"
	default:
		return fmt.Sprintf("%s failed the %s constraint", e.Field, e.Rule)
	}
}

// Service はリソース1種類分のCRUD操作です。slug の導出と updatedAt の単調増加を保証します。
type Service[T Entity[T]] struct {
	store    Store[T]
	validate *validator.Validate
	now      func() time.Time
	newID    func() string
}

// NewService は Service を作成します。
func NewService[T Entity[T]](store Store[T]) *Service[T] {
	return &Service[T]{
		store:    store,
		validate: newValidator(),
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// エラーのフィールド名は JSON 名にする
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// List は全件を返します。
func (s *Service[T]) List(ctx context.Context) ([]T, error) {
	return s.store.List(ctx)
}

// GetBySlug は slug で取得します。
func (s *Service[T]) GetBySlug(ctx context.Context, slug string) (T, error) {
	return s.store.GetBySlug(ctx, slug)
}

// GetByID は ID で取得します。
func (s *Service[T]) GetByID(ctx context.Context, id string) (T, error) {
	return s.store.GetByID(ctx, id)
}

// GetBySlugOrID は slug、ID の順に探します。
func (s *Service[T]) GetBySlugOrID(ctx context.Context, key string) (T, error) {
	item, err := s.store.GetBySlug(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return s.store.GetByID(ctx, key)
	}
	return item, err
}

// Create は入力を検証して新しいリソースを作成します。
func (s *Service[T]) Create(ctx context.Context, in Input[T]) (T, error) {
	var zero T
	if err := s.check(in); err != nil {
		return zero, err
	}

	item := in.Build()
	meta := item.Metadata()
	slug := in.RequestedSlug()
	if slug != "" {
		if !validSlug(slug) {
			return zero, &ValidationError{Field: "slug", Rule: "slug"}
		}
	} else {
		slug = Slugify(item.DisplayName())
		if slug == "" {
			return zero, &ValidationError{Field: "slug", Rule: "required"}
		}
	}

	now := s.now().Truncate(time.Microsecond)
	meta.ID = s.newID()
	meta.Slug = slug
	meta.CreatedAt = now
	meta.UpdatedAt = now

	if err := s.store.Create(ctx, item); err != nil {
		return zero, err
	}
	return item, nil
}

// Update は指定されたフィールドだけを更新します。ID と作成日時は変わりません。
func (s *Service[T]) Update(ctx context.Context, id string, patch Patch[T]) (T, error) {
	var zero T
	if err := s.check(patch); err != nil {
		return zero, err
	}
	slug := patch.RequestedSlug()
	if slug != nil && !validSlug(*slug) {
		return zero, &ValidationError{Field: "slug", Rule: "slug"}
	}

	return s.store.Modify(ctx, id, func(item T) error {
		patch.ApplyTo(item)
		meta := item.Metadata()
		if slug != nil {
			meta.Slug = *slug
		}
		meta.UpdatedAt = s.nextUpdatedAt(meta.UpdatedAt)
		return nil
	})
}

// Delete は削除します。存在しない ID でもエラーにしません。
func (s *Service[T]) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// Reset はコレクションを空にします（シード用）。
func (s *Service[T]) Reset(ctx context.Context) error {
	return s.store.DeleteAll(ctx)
}

// nextUpdatedAt は前回より必ず大きい更新日時を返します。
func (s *Service[T]) nextUpdatedAt(prev time.Time) time.Time {
	now := s.now().Truncate(time.Microsecond)
	if !now.After(prev) {
		now = prev.Add(time.Microsecond)
	}
	return now
}

func (s *Service[T]) check(v any) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &ValidationError{Field: fe.Field(), Rule: fe.Tag(), Param: fe.Param()}
	}
	return err
}
