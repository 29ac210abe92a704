/**
 * @description
 * Market and Commodity database models.
 * Maps to the 'markets' and 'commodities' tables.
 *
 * @dependencies
 * - gorm.io/gorm
 *
 * @notes
 * - Primary keys are the stable identifiers from the source dataset, never auto-generated.
 * - Nullable text columns scan into "" so the JSON shape stays all-strings.
 */

package models

// Market represents a physical or administrative location where prices are observed
type Market struct {
	MarketID   int64   `gorm:"primaryKey;autoIncrement:false;column:market_id" json:"market_id"`
	MarketName string  `gorm:"column:market_name;not null" json:"market_name"`
	Admin1     string  `gorm:"column:admin1" json:"admin1"`
	Admin2     string  `gorm:"column:admin2" json:"admin2"`
	Country    string  `gorm:"column:country" json:"country"`
	Latitude   float64 `gorm:"column:latitude" json:"latitude"`
	Longitude  float64 `gorm:"column:longitude" json:"longitude"`

	Prices []Price `gorm:"foreignKey:MarketID;references:MarketID" json:"-"`
}

// TableName overrides the table name used by Market to `markets`
func (Market) TableName() string {
	return "markets"
}

// Commodity represents a tracked good with its category and unit of measure
type Commodity struct {
	CommodityID   int64  `gorm:"primaryKey;autoIncrement:false;column:commodity_id" json:"commodity_id"`
	CommodityName string `gorm:"column:commodity_name;not null" json:"commodity_name"`
	Category      string `gorm:"column:category" json:"category"`
	Unit          string `gorm:"column:unit" json:"unit"`

	Prices []Price `gorm:"foreignKey:CommodityID;references:CommodityID" json:"-"`
}

// TableName overrides the table name used by Commodity to `commodities`
func (Commodity) TableName() string {
	return "commodities"
}
