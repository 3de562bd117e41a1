package models

import "github.com/shopspring/decimal"

// Observation is a single price read from an input file
type Observation struct {
	ReceiveTS uint64          `json:"receive_ts"`
	Price     decimal.Decimal `json:"price"`
}

// MedianRecord is one row of the median changelog.
// Median holds the 8-decimal rendering that was compared for change detection.
type MedianRecord struct {
	ReceiveTS uint64 `json:"receive_ts"`
	Median    string `json:"price_median"`
}
