// Package ecos serves the economic-statistics viewer: monthly exchange and
// interest rates from the Bank of Korea ECOS feed.
package ecos

import (
	"context"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/finboard/internal/apperr"
	"github.com/starford/finboard/internal/format"
	"github.com/starford/finboard/internal/models"
)

// Tab selects the rate series.
type Tab string

// Viewer tabs.
const (
	TabExchangeRate Tab = "exchange_rate"
	TabInterestRate Tab = "interest_rate"
)

// ParseTab maps a query value to a Tab, defaulting to exchange rates.
func ParseTab(s string) Tab {
	if Tab(s) == TabInterestRate {
		return TabInterestRate
	}
	return TabExchangeRate
}

// MonthLayout is the selection month format (YYYYMM).
const MonthLayout = "200601"

// CurrentMonth returns the current month in Seoul time.
func CurrentMonth(now time.Time) string {
	return now.In(format.Seoul).Format(MonthLayout)
}

// ShiftMonth moves a YYYYMM month by delta months. Invalid input is
// returned unchanged.
func ShiftMonth(month string, delta int) string {
	t, err := time.Parse(MonthLayout, month)
	if err != nil {
		return month
	}
	return t.AddDate(0, delta, 0).Format(MonthLayout)
}

// ValidateMonth checks a YYYYMM month.
func ValidateMonth(month string) error {
	if err := validation.Validate(month, validation.Required, validation.Date(MonthLayout)); err != nil {
		return apperr.Validation(fmt.Sprintf("월 형식이 올바르지 않습니다: %s", month))
	}
	return nil
}

// Upstream is the subset of the API client the viewer uses.
type Upstream interface {
	Endpoint(path string) string
	GetJSON(ctx context.Context, rawURL, fallback string, out any) error
}

// Service fetches rate series.
type Service struct {
	api Upstream
}

// NewService creates a Service.
func NewService(api Upstream) *Service {
	return &Service{api: api}
}

// Rates returns the tab's series for month.
func (s *Service) Rates(ctx context.Context, tab Tab, month string) ([]models.RatePoint, error) {
	if err := ValidateMonth(month); err != nil {
		return nil, err
	}
	const fallback = "데이터 조회 실패"
	switch tab {
	case TabInterestRate:
		var rows []models.InterestRate
		if err := s.api.GetJSON(ctx, s.api.Endpoint("/ecos/interest_rate_by_date/"+month), fallback, &rows); err != nil {
			return nil, err
		}
		out := make([]models.RatePoint, len(rows))
		for i, r := range rows {
			out[i] = models.RatePoint{Type: r.InterestType, Rate: r.InterestRate, Date: r.ErmDate, CreatedAt: r.CreatedAt}
		}
		return out, nil
	default:
		var rows []models.ExchangeRate
		if err := s.api.GetJSON(ctx, s.api.Endpoint("/ecos/exchange_rate_by_date/"+month), fallback, &rows); err != nil {
			return nil, err
		}
		out := make([]models.RatePoint, len(rows))
		for i, r := range rows {
			out[i] = models.RatePoint{Type: r.ExchangeType, Rate: r.ExchangeRate, Date: r.ErmDate, CreatedAt: r.CreatedAt}
		}
		return out, nil
	}
}
