package models

// MQuoteRecord is one stock's quote as returned by the single-stock lookup.
type MQuoteRecord struct {
	Symbol           string  `json:"symbol"`
	Name             string  `json:"name"`
	Code             string  `json:"code"`
	Price            float64 `json:"price"`
	PreviousClose    float64 `json:"previous_close"`
	Open             float64 `json:"open"`
	Volume           float64 `json:"volume"`
	Time             string  `json:"time"`
	Change           float64 `json:"change"`
	ChangePercent    float64 `json:"change_percent"`
	High             float64 `json:"high"`
	Low              float64 `json:"low"`
	TurnoverRate     float64 `json:"turnover_rate"`
	PE               float64 `json:"pe"`
	Amplitude        float64 `json:"amplitude"`
	CirculatingValue float64 `json:"circulating_value"`
	TotalValue       float64 `json:"total_value"`
	PB               float64 `json:"pb"`
}
