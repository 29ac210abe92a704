/**
 * @description
 * Price API Handlers.
 * Filtered price listing and latest price per (market, commodity).
 *
 * @dependencies
 * - github.com/gofiber/fiber/v2
 * - backend/internal/services
 */

package handlers

import (
	"context"

	"github.com/foodprices-project/backend/internal/logger"
	"github.com/foodprices-project/backend/internal/models"
	"github.com/foodprices-project/backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

// PriceQuerier runs the price queries
type PriceQuerier interface {
	FilteredPrices(ctx context.Context, filter services.PriceFilter) ([]models.Price, error)
	LatestPrices(ctx context.Context, filter services.PriceFilter) ([]models.Price, error)
}

type PriceHandler struct {
	Prices PriceQuerier
}

func NewPriceHandler(prices PriceQuerier) *PriceHandler {
	return &PriceHandler{Prices: prices}
}

// GetPrices returns prices matching all supplied filters
// GET /prices?market_id=&commodity_id=&start_date=&end_date=
func (h *PriceHandler) GetPrices(c *fiber.Ctx) error {
	params := newParamParser(c)
	filter := services.PriceFilter{
		MarketID:    params.queryInt("market_id"),
		CommodityID: params.queryInt("commodity_id"),
		StartDate:   params.queryDate("start_date"),
		EndDate:     params.queryDate("end_date"),
	}
	if params.failed() {
		return params.reject()
	}

	prices, err := h.Prices.FilteredPrices(c.UserContext(), filter)
	if err != nil {
		logger.Error("PriceHandler: Failed to filter prices: %v", err)
		return errorDetail(c, fiber.StatusInternalServerError, "Failed to fetch prices")
	}
	return c.JSON(prices)
}

// GetLatestPrices returns the latest price rows for each market/commodity pair
// GET /latest-prices?market_id=&commodity_id=
func (h *PriceHandler) GetLatestPrices(c *fiber.Ctx) error {
	params := newParamParser(c)
	filter := services.PriceFilter{
		MarketID:    params.queryInt("market_id"),
		CommodityID: params.queryInt("commodity_id"),
	}
	if params.failed() {
		return params.reject()
	}

	prices, err := h.Prices.LatestPrices(c.UserContext(), filter)
	if err != nil {
		logger.Error("PriceHandler: Failed to resolve latest prices: %v", err)
		return errorDetail(c, fiber.StatusInternalServerError, "Failed to fetch latest prices")
	}
	return c.JSON(prices)
}
