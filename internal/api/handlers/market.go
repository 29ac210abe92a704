/**
 * @description
 * Market and Commodity directory handlers.
 *
 * @dependencies
 * - github.com/gofiber/fiber/v2
 * - backend/internal/services
 */

package handlers

import (
	"context"
	"errors"

	"github.com/foodprices-project/backend/internal/logger"
	"github.com/foodprices-project/backend/internal/models"
	"github.com/foodprices-project/backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

// MarketDirectory is the read side of the markets table
type MarketDirectory interface {
	ListMarkets(ctx context.Context) ([]models.Market, error)
	GetMarket(ctx context.Context, marketID int64) (*models.Market, error)
}

// CommodityDirectory is the read side of the commodities table
type CommodityDirectory interface {
	ListCommodities(ctx context.Context) ([]models.Commodity, error)
	GetCommodity(ctx context.Context, commodityID int64) (*models.Commodity, error)
}

type MarketHandler struct {
	Markets     MarketDirectory
	Commodities CommodityDirectory
}

func NewMarketHandler(markets MarketDirectory, commodities CommodityDirectory) *MarketHandler {
	return &MarketHandler{Markets: markets, Commodities: commodities}
}

// ListMarkets returns every market
// GET /markets
func (h *MarketHandler) ListMarkets(c *fiber.Ctx) error {
	markets, err := h.Markets.ListMarkets(c.UserContext())
	if err != nil {
		logger.Error("MarketHandler: Failed to list markets: %v", err)
		return errorDetail(c, fiber.StatusInternalServerError, "Failed to fetch markets")
	}
	return c.JSON(markets)
}

// GetMarket returns a single market
// GET /markets/:id
func (h *MarketHandler) GetMarket(c *fiber.Ctx) error {
	params := newParamParser(c)
	marketID := params.pathInt("id", "market_id")
	if params.failed() {
		return params.reject()
	}

	market, err := h.Markets.GetMarket(c.UserContext(), marketID)
	if err != nil {
		if errors.Is(err, services.ErrMarketNotFound) {
			return errorDetail(c, fiber.StatusNotFound, "Market not found")
		}
		logger.Error("MarketHandler: Failed to get market %d: %v", marketID, err)
		return errorDetail(c, fiber.StatusInternalServerError, "Failed to fetch market")
	}
	return c.JSON(market)
}

// ListCommodities returns every commodity
// GET /commodities
func (h *MarketHandler) ListCommodities(c *fiber.Ctx) error {
	commodities, err := h.Commodities.ListCommodities(c.UserContext())
	if err != nil {
		logger.Error("MarketHandler: Failed to list commodities: %v", err)
		return errorDetail(c, fiber.StatusInternalServerError, "Failed to fetch commodities")
	}
	return c.JSON(commodities)
}

// GetCommodity returns a single commodity
// GET /commodities/:id
func (h *MarketHandler) GetCommodity(c *fiber.Ctx) error {
	params := newParamParser(c)
	commodityID := params.pathInt("id", "commodity_id")
	if params.failed() {
		return params.reject()
	}

	commodity, err := h.Commodities.GetCommodity(c.UserContext(), commodityID)
	if err != nil {
		if errors.Is(err, services.ErrCommodityNotFound) {
			return errorDetail(c, fiber.StatusNotFound, "Commodity not found")
		}
		logger.Error("MarketHandler: Failed to get commodity %d: %v", commodityID, err)
		return errorDetail(c, fiber.StatusInternalServerError, "Failed to fetch commodity")
	}
	return c.JSON(commodity)
}
