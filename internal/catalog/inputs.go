package catalog

// Input は作成リクエストです。検証は validate タグで行います。
type Input[T any] interface {
	Build() T
	// RequestedSlug は明示指定された slug です。空なら表示名から導出します。
	RequestedSlug() string
}

// Patch は部分更新リクエストです。nil のフィールドは変更しません。
type Patch[T any] interface {
	ApplyTo(T)
	RequestedSlug() *string
}

// ProductInput は商品の作成リクエストです。
type ProductInput struct {
	Slug            string `json:"slug"`
	Name            string `json:"name" validate:"required"`
	ABV             string `json:"abv" validate:"required"`
	Image           string `json:"image" validate:"required"`
	Description     string `json:"description" validate:"required"`
	Ingredients     string `json:"ingredients" validate:"required"`
	TastingNotes    string `json:"tastingNotes" validate:"required"`
	LongDescription string `json:"longDescription" validate:"required"`
}

func (in ProductInput) RequestedSlug() string { return in.Slug }

func (in ProductInput) Build() *Product {
	return &Product{
		Name:            in.Name,
		ABV:             in.ABV,
		Image:           in.Image,
		Description:     in.Description,
		Ingredients:     in.Ingredients,
		TastingNotes:    in.TastingNotes,
		LongDescription: in.LongDescription,
	}
}

// ProductPatch は商品の部分更新リクエストです。
type ProductPatch struct {
	Slug            *string `json:"slug"`
	Name            *string `json:"name" validate:"omitnil,min=1"`
	ABV             *string `json:"abv" validate:"omitnil,min=1"`
	Image           *string `json:"image" validate:"omitnil,min=1"`
	Description     *string `json:"description" validate:"omitnil,min=1"`
	Ingredients     *string `json:"ingredients" validate:"omitnil,min=1"`
	TastingNotes    *string `json:"tastingNotes" validate:"omitnil,min=1"`
	LongDescription *string `json:"longDescription" validate:"omitnil,min=1"`
}

func (p ProductPatch) RequestedSlug() *string { return p.Slug }

func (p ProductPatch) ApplyTo(dst *Product) {
	set(&dst.Name, p.Name)
	set(&dst.ABV, p.ABV)
	set(&dst.Image, p.Image)
	set(&dst.Description, p.Description)
	set(&dst.Ingredients, p.Ingredients)
	set(&dst.TastingNotes, p.TastingNotes)
	set(&dst.LongDescription, p.LongDescription)
}

// PortfolioInput はポートフォリオ項目の作成リクエストです。
type PortfolioInput struct {
	Slug        string   `json:"slug"`
	Title       string   `json:"title" validate:"required"`
	Category    string   `json:"category" validate:"required,oneof=csr plantation distillery bottle_shots"`
	Thumbnail   string   `json:"thumbnail" validate:"required"`
	Date        string   `json:"date" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Images      []string `json:"images" validate:"required,min=1,dive,required"`
}

func (in PortfolioInput) RequestedSlug() string { return in.Slug }

func (in PortfolioInput) Build() *PortfolioItem {
	return &PortfolioItem{
		Title:       in.Title,
		Category:    in.Category,
		Thumbnail:   in.Thumbnail,
		Date:        in.Date,
		Description: in.Description,
		Images:      append([]string(nil), in.Images...),
	}
}

// PortfolioPatch はポートフォリオ項目の部分更新リクエストです。
type PortfolioPatch struct {
	Slug        *string   `json:"slug"`
	Title       *string   `json:"title" validate:"omitnil,min=1"`
	Category    *string   `json:"category" validate:"omitnil,oneof=csr plantation distillery bottle_shots"`
	Thumbnail   *string   `json:"thumbnail" validate:"omitnil,min=1"`
	Date        *string   `json:"date" validate:"omitnil,min=1"`
	Description *string   `json:"description" validate:"omitnil,min=1"`
	Images      *[]string `json:"images" validate:"omitnil,min=1,dive,required"`
}

func (p PortfolioPatch) RequestedSlug() *string { return p.Slug }

func (p PortfolioPatch) ApplyTo(dst *PortfolioItem) {
	set(&dst.Title, p.Title)
	set(&dst.Category, p.Category)
	set(&dst.Thumbnail, p.Thumbnail)
	set(&dst.Date, p.Date)
	set(&dst.Description, p.Description)
	if p.Images != nil {
		dst.Images = append([]string(nil), (*p.Images)...)
	}
}

// AwardInput は受賞歴の作成リクエストです。
type AwardInput struct {
	Slug         string `json:"slug"`
	Name         string `json:"name" validate:"required"`
	Year         string `json:"year" validate:"required"`
	Organization string `json:"organization" validate:"required"`
	Category     string `json:"category" validate:"required"`
	Description  string `json:"description"`
	Image        string `json:"image"`
	DisplayOrder *int   `json:"displayOrder" validate:"omitnil,min=0"`
}

func (in AwardInput) RequestedSlug() string { return in.Slug }

func (in AwardInput) Build() *Award {
	a := &Award{
		Name:         in.Name,
		Year:         in.Year,
		Organization: in.Organization,
		Category:     in.Category,
		Description:  in.Description,
		Image:        in.Image,
	}
	if in.DisplayOrder != nil {
		a.DisplayOrder = *in.DisplayOrder
	}
	return a
}

// AwardPatch は受賞歴の部分更新リクエストです。
type AwardPatch struct {
	Slug         *string `json:"slug"`
	Name         *string `json:"name" validate:"omitnil,min=1"`
	Year         *string `json:"year" validate:"omitnil,min=1"`
	Organization *string `json:"organization" validate:"omitnil,min=1"`
	Category     *string `json:"category" validate:"omitnil,min=1"`
	Description  *string `json:"description"`
	Image        *string `json:"image"`
	DisplayOrder *int    `json:"displayOrder" validate:"omitnil,min=0"`
}

func (p AwardPatch) RequestedSlug() *string { return p.Slug }

func (p AwardPatch) ApplyTo(dst *Award) {
	set(&dst.Name, p.Name)
	set(&dst.Year, p.Year)
	set(&dst.Organization, p.Organization)
	set(&dst.Category, p.Category)
	set(&dst.Description, p.Description)
	set(&dst.Image, p.Image)
	set(&dst.DisplayOrder, p.DisplayOrder)
}

func set[V any](dst *V, v *V) {
	if v != nil {
		*dst = *v
	}
}
