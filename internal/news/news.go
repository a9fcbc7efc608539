// Package news fetches finance news from the upstream news service.
package news

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/PaesslerAG/jsonpath"

	"github.com/starford/finboard/internal/apperr"
	"github.com/starford/finboard/internal/models"
)

// SuggestedQueries are offered as one-click searches.
var SuggestedQueries = []string{"환율", "금리", "코스피", "주식", "ETF"}

// itemPaths are tried in order on object responses.
var itemPaths = []string{"$.items", "$.news"}

// Upstream is the subset of the API client the news page uses.
type Upstream interface {
	Endpoint(path string) string
	GetJSON(ctx context.Context, rawURL, fallback string, out any) error
}

// Service fetches news.
type Service struct {
	api Upstream
}

// NewService creates a Service.
func NewService(api Upstream) *Service {
	return &Service{api: api}
}

// Latest returns the latest finance news.
func (s *Service) Latest(ctx context.Context) ([]models.NewsItem, error) {
	q := url.Values{}
	q.Set("limit", "10")
	q.Set("display_per_query", "20")
	q.Set("sort", "date")
	q.Set("finance_only", "true")
	q.Set("include_content", "true")
	q.Set("require_content", "true")
	return s.fetch(ctx, "/news_info/latest?"+q.Encode())
}

// Search returns news matching query. A blank query returns Latest.
func (s *Service) Search(ctx context.Context, query string) ([]models.NewsItem, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.Latest(ctx)
	}
	q := url.Values{}
	q.Set("query", query)
	q.Set("display", "100")
	q.Set("start", "1")
	q.Set("sort", "date")
	q.Set("finance_only", "true")
	q.Set("include_content", "true")
	q.Set("require_content", "true")
	return s.fetch(ctx, "/news_info/fetch?"+q.Encode())
}

func (s *Service) fetch(ctx context.Context, path string) ([]models.NewsItem, error) {
	var raw any
	if err := s.api.GetJSON(ctx, s.api.Endpoint(path), "뉴스 조회 실패", &raw); err != nil {
		return nil, err
	}
	return Normalize(raw)
}

// Normalize accepts a bare array, {"items": [...]} or {"news": [...]}.
// Any other object yields no items.
func Normalize(raw any) ([]models.NewsItem, error) {
	list, ok := raw.([]any)
	if !ok {
		for _, path := range itemPaths {
			v, err := jsonpath.Get(path, raw)
			if err != nil {
				continue
			}
			if l, ok := v.([]any); ok {
				list = l
				break
			}
		}
	}
	if len(list) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(list)
	if err != nil {
		return nil, fmt.Errorf("news: re-encode items: %w", err)
	}
	var items []models.NewsItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrMalformedResponse, err)
	}
	return items, nil
}
