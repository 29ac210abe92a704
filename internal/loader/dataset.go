package loader

import "github.com/foodprices-project/backend/internal/models"

// Dataset is what one run writes: unique markets, unique commodities, every price
type Dataset struct {
	Markets     []models.Market
	Commodities []models.Commodity
	Prices      []models.Price
}

// BuildDataset dedups markets by market_id and commodities by commodity_id,
// keeping the first occurrence, and emits one price per record.
func BuildDataset(records []Record) Dataset {
	ds := Dataset{
		Markets:     make([]models.Market, 0),
		Commodities: make([]models.Commodity, 0),
		Prices:      make([]models.Price, 0, len(records)),
	}
	seenMarkets := make(map[int64]bool)
	seenCommodities := make(map[int64]bool)

	for _, r := range records {
		if !seenMarkets[r.MarketID] {
			seenMarkets[r.MarketID] = true
			ds.Markets = append(ds.Markets, models.Market{
				MarketID:   r.MarketID,
				MarketName: r.Market,
				Admin1:     r.Admin1,
				Admin2:     r.Admin2,
				Country:    r.Country,
				Latitude:   r.Latitude,
				Longitude:  r.Longitude,
			})
		}
		if !seenCommodities[r.CommodityID] {
			seenCommodities[r.CommodityID] = true
			ds.Commodities = append(ds.Commodities, models.Commodity{
				CommodityID:   r.CommodityID,
				CommodityName: r.Commodity,
				Category:      r.Category,
				Unit:          r.Unit,
			})
		}
		ds.Prices = append(ds.Prices, models.Price{
			MarketID:    r.MarketID,
			CommodityID: r.CommodityID,
			Date:        r.Date,
			Price:       r.Price,
			USDPrice:    r.USDPrice,
			PriceFlag:   r.PriceFlag,
			PriceType:   r.PriceType,
		})
	}
	return ds
}
