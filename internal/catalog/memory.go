package catalog

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore はプロセス内で完結する Store 実装です（開発・テスト用）。
// 読み書きともコピーを受け渡し、呼び出し側の変更が内部状態に漏れないようにします。
type MemoryStore[T Entity[T]] struct {
	mu    sync.RWMutex
	items map[string]T
	less  func(a, b T) bool
}

// NewMemoryStore は空の MemoryStore を作成します。less は一覧の並び順です。
func NewMemoryStore[T Entity[T]](less func(a, b T) bool) *MemoryStore[T] {
	if less == nil {
		less = byCreatedAt[T]
	}
	return &MemoryStore[T]{items: make(map[string]T), less: less}
}

func (s *MemoryStore[T]) List(_ context.Context) ([]T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, 0, len(s.items))
	for _, item := range s.items {
		out = append(out, item.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return s.less(out[i], out[j]) })
	return out, nil
}

func (s *MemoryStore[T]) GetByID(_ context.Context, id string) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	return item.Clone(), nil
}

func (s *MemoryStore[T]) GetBySlug(_ context.Context, slug string) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.items {
		if item.Metadata().Slug == slug {
			return item.Clone(), nil
		}
	}
	var zero T
	return zero, ErrNotFound
}

func (s *MemoryStore[T]) Create(_ context.Context, item T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	meta := item.Metadata()
	if s.slugTaken(meta.Slug, meta.ID) {
		return ErrSlugConflict
	}
	s.items[meta.ID] = item.Clone()
	return nil
}

func (s *MemoryStore[T]) Modify(_ context.Context, id string, apply func(item T) error) (T, error) {
	var zero T
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.items[id]
	if !ok {
		return zero, ErrNotFound
	}
	updated := current.Clone()
	if err := apply(updated); err != nil {
		return zero, err
	}
	meta := updated.Metadata()
	meta.ID = id
	if s.slugTaken(meta.Slug, id) {
		return zero, ErrSlugConflict
	}
	s.items[id] = updated.Clone()
	return updated, nil
}

func (s *MemoryStore[T]) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}

func (s *MemoryStore[T]) DeleteAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]T)
	return nil
}

// slugTaken は呼び出し時にロックを保持している前提です。
func (s *MemoryStore[T]) slugTaken(slug, exceptID string) bool {
	for id, item := range s.items {
		if id != exceptID && item.Metadata().Slug == slug {
			return true
		}
	}
	return false
}
