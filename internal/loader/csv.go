/**
 * @description
 * CSV extract reader and cleaner for the WFP global food prices file.
 *
 * @notes
 * - Lines starting with '#' are skipped, which covers the HXL hashtag row.
 * - Columns are looked up by header name, so column order does not matter.
 */

package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/foodprices-project/backend/internal/models"
)

// Source column names
const (
	colDate        = "date"
	colAdmin1      = "admin1"
	colAdmin2      = "admin2"
	colMarket      = "market"
	colMarketID    = "market_id"
	colLatitude    = "latitude"
	colLongitude   = "longitude"
	colCategory    = "category"
	colCommodity   = "commodity"
	colCommodityID = "commodity_id"
	colUnit        = "unit"
	colPriceFlag   = "priceflag"
	colPriceType   = "pricetype"
	colPrice       = "price"
	colUSDPrice    = "usdprice"
	colCountry     = "countryiso3"
)

var requiredColumns = []string{
	colDate, colMarket, colMarketID, colCategory, colCommodity, colCommodityID,
	colPrice, colUSDPrice, colCountry,
}

// RawRow is one CSV data line keyed by header name
type RawRow map[string]string

// Record is a cleaned source row
type Record struct {
	Date        models.Date
	Admin1      string
	Admin2      string
	Market      string
	MarketID    int64
	Latitude    float64
	Longitude   float64
	Category    string
	Commodity   string
	CommodityID int64
	Unit        string
	PriceFlag   string
	PriceType   string
	Price       float64
	USDPrice    float64
	Country     string
}

// CleanStats counts why rows were dropped
type CleanStats struct {
	Read            int
	Kept            int
	NoCountry       int
	OtherCategory   int
	MissingPrice    int
	InvalidID       int
	UnparsableDates int // kept with a NULL date
}

// ReadRows parses the CSV, skipping comment lines
func ReadRows(r io.Reader) ([]RawRow, error) {
	reader := csv.NewReader(r)
	reader.Comment = '#'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("csv is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff")))
	}
	if missing := missingColumns(header); len(missing) > 0 {
		return nil, fmt.Errorf("csv header missing columns: %s", strings.Join(missing, ", "))
	}

	var rows []RawRow
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(rows)+1, err)
		}
		row := make(RawRow, len(header))
		for i, name := range header {
			if i < len(fields) {
				row[name] = strings.TrimSpace(fields[i])
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func missingColumns(header []string) []string {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}
	var missing []string
	for _, c := range requiredColumns {
		if !present[c] {
			missing = append(missing, c)
		}
	}
	return missing
}

// Clean keeps rows with a country code in the given category and with both prices.
// Rows whose date does not parse are kept with an unknown date.
func Clean(rows []RawRow, category string) ([]Record, CleanStats) {
	stats := CleanStats{Read: len(rows)}
	records := make([]Record, 0, len(rows))

	for _, row := range rows {
		if row[colCountry] == "" {
			stats.NoCountry++
			continue
		}
		if row[colCategory] != category {
			stats.OtherCategory++
			continue
		}

		price, okPrice := parseFloat(row[colPrice])
		usdPrice, okUSD := parseFloat(row[colUSDPrice])
		if !okPrice || !okUSD {
			stats.MissingPrice++
			continue
		}

		marketID, errMarket := strconv.ParseInt(row[colMarketID], 10, 64)
		commodityID, errCommodity := strconv.ParseInt(row[colCommodityID], 10, 64)
		if errMarket != nil || errCommodity != nil {
			stats.InvalidID++
			continue
		}

		date, ok := parseSourceDate(row[colDate])
		if !ok {
			stats.UnparsableDates++
		}

		lat, _ := parseFloat(row[colLatitude])
		lon, _ := parseFloat(row[colLongitude])

		records = append(records, Record{
			Date:        date,
			Admin1:      row[colAdmin1],
			Admin2:      row[colAdmin2],
			Market:      row[colMarket],
			MarketID:    marketID,
			Latitude:    lat,
			Longitude:   lon,
			Category:    row[colCategory],
			Commodity:   row[colCommodity],
			CommodityID: commodityID,
			Unit:        row[colUnit],
			PriceFlag:   row[colPriceFlag],
			PriceType:   row[colPriceType],
			Price:       price,
			USDPrice:    usdPrice,
			Country:     row[colCountry],
		})
	}

	stats.Kept = len(records)
	return records, stats
}

// parseFloat treats empty and NaN cells as missing
func parseFloat(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

var sourceDateLayouts = []string{
	models.DateLayout,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
}

func parseSourceDate(s string) (models.Date, bool) {
	for _, layout := range sourceDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return models.NewDate(t.Year(), t.Month(), t.Day()), true
		}
	}
	return models.Date{}, false
}
