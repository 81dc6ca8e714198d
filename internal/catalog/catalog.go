// Package catalog は商品・ポートフォリオ・受賞歴の3種類のコンテンツを扱うリポジトリです。
// 3種類とも同じCRUD契約（一覧・slug/ID取得・作成・部分更新・削除）を持ちます。
package catalog

import (
	"errors"
	"time"
)

var (
	// ErrNotFound は対象が存在しない場合に返ります。
	ErrNotFound = errors.New("resource not found")
	// ErrSlugConflict は同じコレクション内で slug が重複した場合に返ります。
	ErrSlugConflict = errors.New("slug already exists")
)

// Meta は全リソース共通のフィールドです。
type Meta struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Metadata は共通フィールドへのポインタを返します。
func (m *Meta) Metadata() *Meta { return m }

// Entity はリポジトリが扱うリソースの制約です。
type Entity[T any] interface {
	Metadata() *Meta
	// DisplayName は slug の導出元になる表示名です。
	DisplayName() string
	Clone() T
}

// Product は商品です。
type Product struct {
	Meta
	Name            string `json:"name"`
	ABV             string `json:"abv"`
	Image           string `json:"image"`
	Description     string `json:"description"`
	Ingredients     string `json:"ingredients"`
	TastingNotes    string `json:"tastingNotes"`
	LongDescription string `json:"longDescription"`
}

func (p *Product) DisplayName() string { return p.Name }

func (p *Product) Clone() *Product {
	cp := *p
	return &cp
}

// ポートフォリオのカテゴリ
const (
	CategoryCSR         = "csr"
	CategoryPlantation  = "plantation"
	CategoryDistillery  = "distillery"
	CategoryBottleShots = "bottle_shots"
)

// PortfolioItem はCSR活動やギャラリーの項目です。
type PortfolioItem struct {
	Meta
	Title       string   `json:"title"`
	Category    string   `json:"category"`
	Thumbnail   string   `json:"thumbnail"`
	Date        string   `json:"date"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
}

func (p *PortfolioItem) DisplayName() string { return p.Title }

func (p *PortfolioItem) Clone() *PortfolioItem {
	cp := *p
	cp.Images = append([]string(nil), p.Images...)
	return &cp
}

// Award は受賞歴です。一覧は DisplayOrder の昇順に並びます。
type Award struct {
	Meta
	Name         string `json:"name"`
	Year         string `json:"year"`
	Organization string `json:"organization"`
	Category     string `json:"category"`
	Description  string `json:"description"`
	Image        string `json:"image"`
	DisplayOrder int    `json:"displayOrder"`
}

func (a *Award) DisplayName() string { return a.Name }

func (a *Award) Clone() *Award {
	cp := *a
	return &cp
}

// byCreatedAt は作成日時の昇順で並べます。同時刻は ID で安定させます。
func byCreatedAt[T Entity[T]](a, b T) bool {
	ma, mb := a.Metadata(), b.Metadata()
	if !ma.CreatedAt.Equal(mb.CreatedAt) {
		return ma.CreatedAt.Before(mb.CreatedAt)
	}
	return ma.ID < mb.ID
}

// byDisplayOrder は表示順、作成日時の順で並べます。
func byDisplayOrder(a, b *Award) bool {
	if a.DisplayOrder != b.DisplayOrder {
		return a.DisplayOrder < b.DisplayOrder
	}
	return byCreatedAt(a, b)
}
