/**
 * @description
 * Price query engine.
 * Filtered listing and latest-price-per-(market, commodity) resolution.
 *
 * @dependencies
 * - gorm.io/gorm
 * - backend/internal/models
 *
 * @notes
 * - LatestPrices joins prices back onto per-pair MAX(date); every row tied at the
 *   maximal date is returned, not one arbitrary winner.
 */

package services

import (
	"context"
	"fmt"

	"github.com/foodprices-project/backend/internal/models"
	"gorm.io/gorm"
)

// PriceFilter holds the optional filters; nil fields impose no constraint.
// StartDate and EndDate are inclusive and only apply to FilteredPrices.
type PriceFilter struct {
	MarketID    *int64
	CommodityID *int64
	StartDate   *models.Date
	EndDate     *models.Date
}

// PriceService reads the prices table
type PriceService struct {
	db *gorm.DB
}

// NewPriceService creates a new PriceService
func NewPriceService(db *gorm.DB) *PriceService {
	return &PriceService{db: db}
}

// FilteredPrices returns the prices matching the conjunction of the supplied filters.
// A start date after the end date simply matches nothing.
func (s *PriceService) FilteredPrices(ctx context.Context, filter PriceFilter) ([]models.Price, error) {
	query := s.db.WithContext(ctx).Model(&models.Price{})
	query = applyPairFilters(query, filter)

	if filter.StartDate != nil {
		query = query.Where("prices.date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("prices.date <= ?", *filter.EndDate)
	}

	prices := make([]models.Price, 0)
	if err := query.Order("prices.id").Find(&prices).Error; err != nil {
		return nil, fmt.Errorf("filter prices: %w", err)
	}
	return prices, nil
}

// LatestPrices returns, for every (market_id, commodity_id) pair, the price rows
// dated on that pair's maximal date. Date bounds in filter are ignored.
func (s *PriceService) LatestPrices(ctx context.Context, filter PriceFilter) ([]models.Price, error) {
	latest := s.db.Model(&models.Price{}).
		Select("market_id, commodity_id, MAX(date) AS latest_date").
		Group("market_id, commodity_id")

	query := s.db.WithContext(ctx).Model(&models.Price{}).
		Select("prices.*").
		Joins(`JOIN (?) AS latest ON prices.market_id = latest.market_id
			AND prices.commodity_id = latest.commodity_id
			AND prices.date = latest.latest_date`, latest)
	query = applyPairFilters(query, filter)

	prices := make([]models.Price, 0)
	if err := query.Order("prices.id").Find(&prices).Error; err != nil {
		return nil, fmt.Errorf("latest prices: %w", err)
	}
	return prices, nil
}

func applyPairFilters(query *gorm.DB, filter PriceFilter) *gorm.DB {
	if filter.MarketID != nil {
		query = query.Where("prices.market_id = ?", *filter.MarketID)
	}
	if filter.CommodityID != nil {
		query = query.Where("prices.commodity_id = ?", *filter.CommodityID)
	}
	return query
}
