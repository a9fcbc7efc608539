package market

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/starford/finboard/internal/apperr"
	"github.com/starford/finboard/internal/models"
)

// Recommendation API names reported in ETFAdvice.APIUsed.
const (
	APIRecommend = "recommend"
	APIETFInfo   = "etf-info"
)

// SourceRecommendation marks a personalised recommendation.
const SourceRecommendation = "recommendation"

// ETFAdvice is an ETF recommendation plus how it was obtained.
type ETFAdvice struct {
	models.Recommendation[models.ETF]

	// APIUsed is APIRecommend only when the advanced view is shown.
	APIUsed string
	// ShowAdvanced gates the surplus ratio: a personalised source with
	// both income and expense known.
	ShowAdvanced bool
}

// BondRecommendation returns /bond-recommendation/bond-info.
func (s *Service) BondRecommendation(ctx context.Context) (models.Recommendation[models.Bond], error) {
	var rec models.Recommendation[models.Bond]
	if err := s.api.GetJSON(ctx, s.api.Endpoint("/bond-recommendation/bond-info"), "채권 추천 데이터 조회 실패", &rec); err != nil {
		return rec, err
	}
	for i := range rec.Items {
		rec.Items[i].DisplayID = BondDisplayID(rec.Items[i], i)
	}
	return rec, nil
}

// FundRecommendation returns /fund-recommendation/fund-info.
func (s *Service) FundRecommendation(ctx context.Context) (models.Recommendation[models.Fund], error) {
	var rec models.Recommendation[models.Fund]
	if err := s.api.GetJSON(ctx, s.api.Endpoint("/fund-recommendation/fund-info"), "펀드 추천 데이터 조회 실패", &rec); err != nil {
		return rec, err
	}
	for i := range rec.Items {
		rec.Items[i].DisplayID = FundDisplayID(rec.Items[i], i)
	}
	return rec, nil
}

// ETFRecommendation asks /etf-recommendation/recommend first. An HTTP error
// from it, or an answer without both income and expense, falls back to
// /etf-recommendation/etf-info. Errors handled by a redirect are returned
// without falling back.
func (s *Service) ETFRecommendation(ctx context.Context) (ETFAdvice, error) {
	const fallback = "ETF 추천 데이터 조회 실패"

	var rec models.Recommendation[models.ETF]
	used := APIRecommend
	err := s.api.GetJSON(ctx, s.api.Endpoint("/etf-recommendation/recommend"), fallback, &rec)
	var de *apperr.DomainError
	switch {
	case err == nil:
	case apperr.Redirected(err):
		return ETFAdvice{}, err
	case errors.As(err, &de):
		rec = models.Recommendation[models.ETF]{}
		if err := s.etfInfo(ctx, &rec); err != nil {
			return ETFAdvice{}, err
		}
		used = APIETFInfo
	default:
		return ETFAdvice{}, err
	}

	complete := rec.TotalIncome > 0 && rec.TotalExpense > 0
	if !complete && used == APIRecommend {
		rec = models.Recommendation[models.ETF]{}
		if err := s.etfInfo(ctx, &rec); err != nil {
			return ETFAdvice{}, err
		}
	}

	advice := ETFAdvice{
		Recommendation: rec,
		ShowAdvanced:   rec.Source == SourceRecommendation && complete,
	}
	advice.APIUsed = APIETFInfo
	if advice.ShowAdvanced {
		advice.APIUsed = APIRecommend
	}
	for i := range advice.Items {
		advice.Items[i].DisplayID = ETFDisplayID(advice.Items[i], i)
	}
	return advice, nil
}

func (s *Service) etfInfo(ctx context.Context, rec *models.Recommendation[models.ETF]) error {
	return s.api.GetJSON(ctx, s.api.Endpoint("/etf-recommendation/etf-info"), "ETF 추천 데이터 조회 실패", rec)
}

// Overview is the row count of each listing for one date.
type Overview struct {
	Date  string
	Bonds int
	Funds int
	ETFs  int
}

// Overview fetches the three listings concurrently. The first failure
// cancels the others.
func (s *Service) Overview(ctx context.Context, date string) (Overview, error) {
	ov := Overview{Date: date}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		bonds, err := s.Bonds(gctx, date)
		ov.Bonds = len(bonds)
		return err
	})
	g.Go(func() error {
		funds, err := s.Funds(gctx, date)
		ov.Funds = len(funds)
		return err
	})
	g.Go(func() error {
		listing, err := s.ETFs(gctx)
		ov.ETFs = len(listing.Items)
		return err
	})
	if err := g.Wait(); err != nil {
		return Overview{}, err
	}
	return ov, nil
}
