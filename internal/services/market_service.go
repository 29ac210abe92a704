/**
 * @description
 * Service layer for the Market and Commodity directories.
 * Read-only lookups against Postgres (or SQLite) through GORM.
 *
 * @dependencies
 * - gorm.io/gorm
 * - backend/internal/models
 */

package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/foodprices-project/backend/internal/models"
	"gorm.io/gorm"
)

var (
	ErrMarketNotFound    = errors.New("market not found")
	ErrCommodityNotFound = errors.New("commodity not found")
)

// MarketService reads the markets table
type MarketService struct {
	db *gorm.DB
}

// NewMarketService creates a new MarketService
func NewMarketService(db *gorm.DB) *MarketService {
	return &MarketService{db: db}
}

// ListMarkets returns every market ordered by market_id
func (s *MarketService) ListMarkets(ctx context.Context) ([]models.Market, error) {
	markets := make([]models.Market, 0)
	if err := s.db.WithContext(ctx).Order("market_id").Find(&markets).Error; err != nil {
		return nil, fmt.Errorf("list markets: %w", err)
	}
	return markets, nil
}

// GetMarket returns the market with the given id or ErrMarketNotFound
func (s *MarketService) GetMarket(ctx context.Context, marketID int64) (*models.Market, error) {
	var market models.Market
	err := s.db.WithContext(ctx).Where("market_id = ?", marketID).Take(&market).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMarketNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get market %d: %w", marketID, err)
	}
	return &market, nil
}

// CommodityService reads the commodities table
type CommodityService struct {
	db *gorm.DB
}

// NewCommodityService creates a new CommodityService
func NewCommodityService(db *gorm.DB) *CommodityService {
	return &CommodityService{db: db}
}

// ListCommodities returns every commodity ordered by commodity_id
func (s *CommodityService) ListCommodities(ctx context.Context) ([]models.Commodity, error) {
	commodities := make([]models.Commodity, 0)
	if err := s.db.WithContext(ctx).Order("commodity_id").Find(&commodities).Error; err != nil {
		return nil, fmt.Errorf("list commodities: %w", err)
	}
	return commodities, nil
}

// GetCommodity returns the commodity with the given id or ErrCommodityNotFound
func (s *CommodityService) GetCommodity(ctx context.Context, commodityID int64) (*models.Commodity, error) {
	var commodity models.Commodity
	err := s.db.WithContext(ctx).Where("commodity_id = ?", commodityID).Take(&commodity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCommodityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get commodity %d: %w", commodityID, err)
	}
	return &commodity, nil
}
