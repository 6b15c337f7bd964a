package model

import "time"

// PriceBar is one daily OHLCV row for a symbol. Prices are split and
// dividend adjusted when the provider supports it.
type PriceBar struct {
	Symbol string    `json:"symbol"`
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}
