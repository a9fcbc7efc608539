// Package market fetches the bond, fund and ETF listings and the AI
// recommendations built on them.
package market

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/starford/finboard/internal/apperr"
	"github.com/starford/finboard/internal/localstore"
	"github.com/starford/finboard/internal/models"
)

// Upstream is the subset of the API client the market pages use.
type Upstream interface {
	Endpoint(path string) string
	GetJSON(ctx context.Context, rawURL, fallback string, out any) error
}

// Cache keeps listing rows so detail pages can be served without a request.
type Cache interface {
	PutMany(ctx context.Context, client string, values map[string]any) error
	Get(ctx context.Context, client, key string, out any) error
}

// Service serves the market pages.
type Service struct {
	api   Upstream
	cache Cache
}

// NewService creates a Service.
func NewService(api Upstream, cache Cache) *Service {
	return &Service{api: api, cache: cache}
}

// Bonds returns the bond listing for date (YYYYMMDD) with display ids.
func (s *Service) Bonds(ctx context.Context, date string) ([]models.Bond, error) {
	if err := ValidateDate(date); err != nil {
		return nil, err
	}
	var bonds []models.Bond
	if err := s.getArray(ctx, "/product/bond/"+date, "채권 데이터 조회 실패", &bonds); err != nil {
		return nil, err
	}
	for i := range bonds {
		bonds[i].DisplayID = BondDisplayID(bonds[i], i)
	}
	return bonds, nil
}

// Funds returns the fund listing for date (YYYYMMDD) with display ids.
func (s *Service) Funds(ctx context.Context, date string) ([]models.Fund, error) {
	if err := ValidateDate(date); err != nil {
		return nil, err
	}
	var funds []models.Fund
	if err := s.getArray(ctx, "/product/fund/"+date, "펀드 데이터 조회 실패", &funds); err != nil {
		return nil, err
	}
	for i := range funds {
		funds[i].DisplayID = FundDisplayID(funds[i], i)
	}
	return funds, nil
}

// ETFs returns the latest ETF listing with display ids.
func (s *Service) ETFs(ctx context.Context) (models.ETFListing, error) {
	var listing models.ETFListing
	if err := s.api.GetJSON(ctx, s.api.Endpoint("/product/etf"), "ETF 데이터 조회 실패", &listing); err != nil {
		return models.ETFListing{}, err
	}
	for i := range listing.Items {
		listing.Items[i].DisplayID = ETFDisplayID(listing.Items[i], i)
	}
	return listing, nil
}

// getArray decodes a JSON array endpoint, failing with
// apperr.ErrMalformedResponse when the payload is not an array.
func (s *Service) getArray(ctx context.Context, path, fallback string, out any) error {
	var raw json.RawMessage
	if err := s.api.GetJSON(ctx, s.api.Endpoint(path), fallback, &raw); err != nil {
		return err
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return fmt.Errorf("%w: API 응답 형식이 올바르지 않습니다. 배열이 아닙니다", apperr.ErrMalformedResponse)
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrMalformedResponse, err)
	}
	return nil
}

// RememberBonds caches every row under bond_<id> for the detail page.
func (s *Service) RememberBonds(ctx context.Context, client string, bonds []models.Bond) error {
	if len(bonds) == 0 {
		return nil
	}
	values := make(map[string]any, len(bonds))
	for _, b := range bonds {
		values[localstore.Key(localstore.PrefixBond, strconv.FormatInt(b.ID, 10))] = b
	}
	return s.cache.PutMany(ctx, client, values)
}

// Bond reads a cached bond row. Missing or corrupt entries fail with
// apperr.ErrLocalData.
func (s *Service) Bond(ctx context.Context, client, id string) (models.Bond, error) {
	var b models.Bond
	if err := s.cache.Get(ctx, client, localstore.Key(localstore.PrefixBond, id), &b); err != nil {
		return models.Bond{}, err
	}
	return b, nil
}

// BondDisplayID is basDt-(isinCd|id)-index.
func BondDisplayID(b models.Bond, index int) string {
	ref := b.IsinCd
	if ref == "" {
		ref = strconv.FormatInt(b.ID, 10)
	}
	return fmt.Sprintf("%s-%s-%d", b.BasDt, ref, index)
}

// FundDisplayID is basDt-(srtnCd|id)-index.
func FundDisplayID(f models.Fund, index int) string {
	ref := f.SrtnCd
	if ref == "" {
		ref = strconv.FormatInt(f.ID, 10)
	}
	return fmt.Sprintf("%s-%s-%d", f.BasDt, ref, index)
}

// ETFDisplayID is basDt-bssIdxIdxNm-index.
func ETFDisplayID(e models.ETF, index int) string {
	return fmt.Sprintf("%s-%s-%d", e.BasDt, e.BssIdxIdxNm, index)
}
