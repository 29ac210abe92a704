/**
 * @description
 * Price database model.
 * Maps to the 'prices' table.
 *
 * @dependencies
 * - gorm.io/gorm
 */

package models

// Price is one observed price for a commodity in a market on a date.
// (market_id, commodity_id, date) is not unique: rows may differ only by pricetype or priceflag.
type Price struct {
	ID          uint64  `gorm:"primaryKey;autoIncrement" json:"-"`
	MarketID    int64   `gorm:"column:market_id;index:idx_prices_market_commodity_date,priority:1" json:"market_id"`
	CommodityID int64   `gorm:"column:commodity_id;index:idx_prices_market_commodity_date,priority:2" json:"commodity_id"`
	Date        Date    `gorm:"column:date;index:idx_prices_market_commodity_date,priority:3" json:"date"`
	Price       float64 `gorm:"column:price" json:"price"`
	USDPrice    float64 `gorm:"column:usd_price" json:"usd_price"`
	PriceFlag   string  `gorm:"column:priceflag" json:"priceflag"`
	PriceType   string  `gorm:"column:pricetype" json:"pricetype"`
}

// TableName overrides the table name used by Price to `prices`
func (Price) TableName() string {
	return "prices"
}

// AllModels lists the entities created at startup, parents before children
func AllModels() []interface{} {
	return []interface{}{
		&Market{},
		&Commodity{},
		&Price{},
	}
}
