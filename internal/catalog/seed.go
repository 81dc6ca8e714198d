package catalog

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

const assetDir = "/attached_assets/generated_images/"

// SamplePortfolio はシード用のポートフォリオ項目です。
var SamplePortfolio = []PortfolioInput{
	{
		Slug:        "school-supplies-donation-2024",
		Title:       "Supporting Future Generations",
		Category:    CategoryCSR,
		Thumbnail:   assetDir + "csr_school_donation_event.png",
		Date:        "January 2024",
		Description: "Providing school supplies and scholarships to over 500 children in the Gal Oya community.",
		Images: []string{
			assetDir + "csr_school_donation_event.png",
			assetDir + "csr_medical_camp_event.png",
			assetDir + "csr_tree_planting.png",
			assetDir + "sugarcane_plantation_landscape.png",
		},
	},
	{
		Slug:        "community-medical-camp-2024",
		Title:       "Annual Health & Wellness Camp",
		Category:    CategoryCSR,
		Thumbnail:   assetDir + "csr_medical_camp_event.png",
		Date:        "March 2024",
		Description: "Free medical checkups and eye clinics for our plantation workers and their families.",
		Images: []string{
			assetDir + "csr_medical_camp_event.png",
			assetDir + "csr_school_donation_event.png",
			assetDir + "csr_tree_planting.png",
			assetDir + "copper_pot_stills_distillery.png",
		},
	},
	{
		Slug:        "sugarcane-harvest-season",
		Title:       "The Great Harvest",
		Category:    CategoryPlantation,
		Thumbnail:   assetDir + "sugarcane_plantation_landscape.png",
		Date:        "August 2023",
		Description: "Scenes from our annual sugarcane harvest, where tradition meets precision agriculture.",
		Images: []string{
			assetDir + "sugarcane_plantation_landscape.png",
			assetDir + "csr_tree_planting.png",
			assetDir + "luxury_arrack_bottle_hero_shot.png",
		},
	},
	{
		Slug:        "art-of-distillation",
		Title:       "The Art of Distillation",
		Category:    CategoryDistillery,
		Thumbnail:   assetDir + "copper_pot_stills_distillery.png",
		Date:        "Ongoing",
		Description: "A look inside our copper pot still house where the magic happens.",
		Images: []string{
			assetDir + "copper_pot_stills_distillery.png",
			assetDir + "galoya_original_bottle.png",
			assetDir + "galoya_reserve_bottle.png",
		},
	},
	{
		Slug:        "galoya-reserve-campaign",
		Title:       "Galoya Reserve Campaign",
		Category:    CategoryBottleShots,
		Thumbnail:   assetDir + "galoya_reserve_bottle.png",
		Date:        "December 2023",
		Description: "Promotional photography for our premium 15-year aged arrack.",
		Images: []string{
			assetDir + "galoya_reserve_bottle.png",
			assetDir + "luxury_arrack_bottle_hero_shot.png",
			assetDir + "galoya_original_bottle.png",
		},
	},
}

// SampleProducts はシード用の商品です。
var SampleProducts = []ProductInput{
	{
		Slug:            "galoya-original",
		Name:            "Galoya Arrack Original",
		ABV:             "36.8% ABV",
		Image:           assetDir + "galoya_original_bottle.png",
		Description:     "A smooth, mellow spirit distilled from pure sugarcane syrup. Aged in Halmilla vats for a distinctive character.",
		Ingredients:     "100% Sugarcane Syrup, Water",
		TastingNotes:    "Honey, Caramel, Vanilla",
		LongDescription: "Our flagship spirit, Galoya Arrack Original is a testament to the purity of our ingredients. Harvested from our own estates, the sugarcane is crushed and fermented within 24 hours to preserve its fresh, grassy notes. Distilled in traditional copper pot stills and aged in Halmilla wood vats, it develops a rich golden hue and a smooth, mellow finish that is perfect for sipping neat or in cocktails.",
	},
	{
		Slug:            "galoya-reserve",
		Name:            "Galoya Reserve",
		ABV:             "40% ABV",
		Image:           assetDir + "galoya_reserve_bottle.png",
		Description:     "A premium blend aged for 15 years. Rich, complex, and full-bodied with notes of dried fruit and spice.",
		Ingredients:     "Aged Sugarcane Spirits, Water",
		TastingNotes:    "Dried Fig, Oak, Cinnamon, Dark Chocolate",
		LongDescription: "Galoya Reserve is our masterpiece. Selected from our finest barrels, some aged for over 15 years, this reserve blend offers a complexity that rivals fine whiskies and cognacs. The deep amber liquid reveals layers of flavor, from dried fruits and toasted oak to subtle spices and dark chocolate. It is a spirit to be savored slowly, a true reflection of the distiller's art.",
	},
	{
		Slug:            "galoya-white",
		Name:            "Galoya White Label",
		ABV:             "35% ABV",
		Image:           assetDir + "galoya_original_bottle.png",
		Description:     "A crystal clear spirit, double distilled for purity. Crisp and clean, ideal for tropical cocktails.",
		Ingredients:     "Sugarcane Spirits, Water",
		TastingNotes:    "Citrus, Fresh Cane, White Pepper",
		LongDescription: "For those who prefer a lighter touch, Galoya White Label offers the pure essence of sugarcane without the influence of wood aging. Crystal clear and brilliantly crisp, it captures the fresh, grassy notes of the cane field. Double distilled for exceptional purity, it makes an excellent base for refreshing tropical cocktails.",
	},
}

// SeedResult はシードで投入した件数です。
type SeedResult struct {
	Portfolio int
	Products  int
}

// Seed はサンプルデータを投入します。reset が true なら3コレクションを先に空にします。
func (r *Repository) Seed(ctx context.Context, reset bool, logger *zap.Logger) (SeedResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var result SeedResult

	if reset {
		if err := r.Portfolio.Reset(ctx); err != nil {
			return result, fmt.Errorf("failed to clear portfolio items: %w", err)
		}
		if err := r.Products.Reset(ctx); err != nil {
			return result, fmt.Errorf("failed to clear products: %w", err)
		}
		if err := r.Awards.Reset(ctx); err != nil {
			return result, fmt.Errorf("failed to clear awards: %w", err)
		}
		logger.Info("catalog cleared")
	}

	for _, in := range SamplePortfolio {
		item, err := r.Portfolio.Create(ctx, in)
		if err != nil {
			return result, fmt.Errorf("failed to insert portfolio item %q: %w", in.Slug, err)
		}
		result.Portfolio++
		logger.Info("portfolio item added", zap.String("title", item.Title))
	}
	for _, in := range SampleProducts {
		item, err := r.Products.Create(ctx, in)
		if err != nil {
			return result, fmt.Errorf("failed to insert product %q: %w", in.Slug, err)
		}
		result.Products++
		logger.Info("product added", zap.String("name", item.Name))
	}
	return result, nil
}
