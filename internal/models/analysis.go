package models

// DocumentType is the side of the ledger an uploaded document describes.
type DocumentType string

// Document types accepted by the analysis service.
const (
	DocumentIncome  DocumentType = "income"
	DocumentExpense DocumentType = "expense"
)

// AnalyzeResponse is returned by the upload and manual-form endpoints.
type AnalyzeResponse struct {
	SessionID string `json:"session_id"`
}

// AnalysisSummary is the headline of an analysis result.
type AnalysisSummary struct {
	TotalIncome  int64   `json:"total_income"`
	TotalExpense int64   `json:"total_expense"`
	Surplus      int64   `json:"surplus"`
	SurplusRatio float64 `json:"surplus_ratio"`
	Status       string  `json:"status"` // 흑자, 적자 or 균형
}

// AnalysisResult is /documents-multi-agents/result.
type AnalysisResult struct {
	Success   bool            `json:"success"`
	Summary   AnalysisSummary `json:"summary"`
	Income    map[string]any  `json:"income"`
	Expense   map[string]any  `json:"expense"`
	ChartData ChartData       `json:"chart_data"`
}

// ChartData holds category breakdowns.
type ChartData struct {
	IncomeByCategory      map[string]float64 `json:"income_by_category,omitempty"`
	ExpenseByMainCategory map[string]float64 `json:"expense_by_main_category,omitempty"`
	ExpenseDetail         map[string]any     `json:"expense_detail,omitempty"`
}
