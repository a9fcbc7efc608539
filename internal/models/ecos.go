package models

// ExchangeRate is one row of /ecos/exchange_rate_by_date/{month}.
type ExchangeRate struct {
	ExchangeType string  `json:"exchange_type"` // DOLLAR, YEN or EURO
	ExchangeRate float64 `json:"exchange_rate"`
	ErmDate      string  `json:"erm_date"`
	CreatedAt    string  `json:"created_at"`
}

// InterestRate is one row of /ecos/interest_rate_by_date/{month}.
type InterestRate struct {
	InterestType string  `json:"interest_type"`
	InterestRate float64 `json:"interest_rate"`
	ErmDate      string  `json:"erm_date"`
	CreatedAt    string  `json:"created_at"`
}

// RatePoint is either kind of rate, as shown in the viewer table.
type RatePoint struct {
	Type      string  `json:"type"`
	Rate      float64 `json:"rate"`
	Date      string  `json:"date"`
	CreatedAt string  `json:"created_at"`
}
