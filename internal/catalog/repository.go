package catalog

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/galoya-api/internal/database"
)

// Repository は3種類のリソースのサービスをまとめたものです。
type Repository struct {
	Products  *Service[*Product]
	Portfolio *Service[*PortfolioItem]
	Awards    *Service[*Award]
}

// NewPostgresRepository は PostgreSQL をバックエンドにした Repository を作成します。
func NewPostgresRepository(db database.DBTX) *Repository {
	return &Repository{
		Products:  NewService[*Product](NewPostgresStore(db, ProductTable)),
		Portfolio: NewService[*PortfolioItem](NewPostgresStore(db, PortfolioTable)),
		Awards:    NewService[*Award](NewPostgresStore(db, AwardTable)),
	}
}

// NewMemoryRepository はメモリ上の Repository を作成します。
func NewMemoryRepository() *Repository {
	return &Repository{
		Products:  NewService[*Product](NewMemoryStore[*Product](nil)),
		Portfolio: NewService[*PortfolioItem](NewMemoryStore[*PortfolioItem](nil)),
		Awards:    NewService[*Award](NewMemoryStore(byDisplayOrder)),
	}
}

// RegisterRoutes は /portfolio, /products, /awards を api 配下に登録します。
func (r *Repository) RegisterRoutes(api *gin.RouterGroup, guard gin.HandlerFunc, logger *zap.Logger) {
	NewHandler[*PortfolioItem, PortfolioInput, PortfolioPatch](r.Portfolio, "Portfolio item", logger).
		Register(api.Group("/portfolio"), guard)
	NewHandler[*Product, ProductInput, ProductPatch](r.Products, "Product", logger).
		Register(api.Group("/products"), guard)
	NewHandler[*Award, AwardInput, AwardPatch](r.Awards, "Award", logger).
		Register(api.Group("/awards"), guard)
}
