package models

// AuthStatus is /authentication/status.
type AuthStatus struct {
	LoggedIn bool `json:"logged_in"`
}

// Departure is /account/departure.
type Departure struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ProductType tags a saved portfolio entry.
type ProductType string

// Product types accepted by /finance.
const (
	ProductETF  ProductType = "ETF"
	ProductFund ProductType = "FUND"
	ProductBond ProductType = "BOND"
)

// FinanceEntry is one element of the POST /finance body.
type FinanceEntry struct {
	UserID string      `json:"user_id"`
	Type   ProductType `json:"type"`
	BaseDt string      `json:"base_dt"`
	Key    string      `json:"key"`
	Value  string      `json:"value"`
}

// FinanceRecord is a stored portfolio entry.
type FinanceRecord struct {
	ID        string `json:"id,omitempty"`
	UserID    string `json:"user_id"`
	Type      string `json:"type"`
	BaseDt    string `json:"base_dt"`
	Key       string `json:"key"`
	Value     string `json:"value"`
	CreatedAt string `json:"created_at,omitempty"`
}
