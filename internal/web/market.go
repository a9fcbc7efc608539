package web

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/finboard/internal/analysis"
	"github.com/starford/finboard/internal/apiclient"
	"github.com/starford/finboard/internal/apperr"
	"github.com/starford/finboard/internal/market"
	"github.com/starford/finboard/internal/models"
)

type homeData struct {
	Overview market.Overview
}

// Home handles GET /.
func (s *Server) Home(w http.ResponseWriter, r *http.Request) {
	date := market.Yesterday(s.now())
	data := &homeData{Overview: market.Overview{Date: date}}
	p := &page{Title: "finboard", Data: data}

	ov, err := s.svc.Market.Overview(r.Context(), date)
	if err != nil {
		s.fail(w, r, "home", p, err, "/")
		return
	}
	data.Overview = ov
	p.View = ready(ov.Bonds+ov.Funds+ov.ETFs, "해당 날짜의 시장 데이터가 없습니다.")
	s.render(w, r, http.StatusOK, "home", p)
}

type datedListing struct {
	Date string
	Prev string
	Next string
}

func (s *Server) listingDate(r *http.Request) datedListing {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = market.Yesterday(s.now())
	}
	return datedListing{Date: date, Prev: market.ShiftDate(date, -1), Next: market.ShiftDate(date, 1)}
}

type bondsData struct {
	datedListing
	Issuer  string
	Issuers []string
	Bonds   []models.Bond
}

// Bonds handles GET /bond.
func (s *Server) Bonds(w http.ResponseWriter, r *http.Request) {
	data := &bondsData{datedListing: s.listingDate(r), Issuer: r.URL.Query().Get("issuer")}
	if data.Issuer == "" {
		data.Issuer = market.All
	}
	p := &page{Title: "채권", Data: data}

	if err := market.ValidateDate(data.Date); err != nil {
		s.fail(w, r, "bonds", p, err, "/bond")
		return
	}

	ctx := r.Context()
	bonds, err := s.svc.Market.Bonds(ctx, data.Date)
	if err != nil {
		s.fail(w, r, "bonds", p, err, r.URL.RequestURI())
		return
	}
	if err := s.svc.Market.RememberBonds(ctx, clientFrom(ctx), bonds); err != nil {
		s.logger.Warn("cache bonds failed", slog.String("error", err.Error()))
	}

	data.Issuers = market.BondIssuers(bonds)
	data.Bonds = market.FilterBonds(bonds, data.Issuer)
	p.View = ready(len(data.Bonds), "해당 날짜의 채권 데이터가 없습니다.")
	s.render(w, r, http.StatusOK, "bonds", p)
}

type bondDetailData struct {
	Bond  models.Bond
	Saved bool
}

// BondDetail handles GET /bond/{id}. The row comes from the listing the
// browser viewed last; without it the browser goes back to the listing.
func (s *Server) BondDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	b, err := s.svc.Market.Bond(ctx, clientFrom(ctx), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, apperr.ErrLocalData) {
			seeOther(w, r, "/bond")
			return
		}
		s.fail(w, r, "bond", &page{Title: "채권 상세"}, err, "/bond")
		return
	}

	q := r.URL.Query()
	p := &page{
		Title:    b.Name(),
		LoggedIn: s.svc.Account.LoggedIn(ctx),
		Notice:   q.Get("error"),
		View:     View{Status: StatusReady},
		Data:     &bondDetailData{Bond: b, Saved: q.Get("saved") == "1"},
	}
	s.render(w, r, http.StatusOK, "bond", p)
}

// SaveBond handles POST /bond/{id}/save.
func (s *Server) SaveBond(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	back := "/bond/" + url.PathEscape(raw)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		seeOther(w, r, "/bond")
		return
	}

	ctx := r.Context()
	var sessionID string
	if b := apiclient.BrowserFrom(ctx); b != nil {
		sessionID, _ = b.Cookie(analysis.SessionCookie)
	}
	if _, err := s.svc.Account.SaveBond(ctx, sessionID, id); err != nil {
		if navigated(r) {
			return
		}
		s.logger.Warn("save bond failed", slog.Int64("bond_id", id), slog.String("error", err.Error()))
		seeOther(w, r, back+"?error="+url.QueryEscape(message(err)))
		return
	}
	seeOther(w, r, back+"?saved=1")
}

type fundsData struct {
	datedListing
	Type  string
	Types []string
	Funds []models.Fund
}

// Funds handles GET /fund.
func (s *Server) Funds(w http.ResponseWriter, r *http.Request) {
	data := &fundsData{datedListing: s.listingDate(r), Type: r.URL.Query().Get("type")}
	if data.Type == "" {
		data.Type = market.All
	}
	p := &page{Title: "펀드", Data: data}

	if err := market.ValidateDate(data.Date); err != nil {
		s.fail(w, r, "funds", p, err, "/fund")
		return
	}
	funds, err := s.svc.Market.Funds(r.Context(), data.Date)
	if err != nil {
		s.fail(w, r, "funds", p, err, r.URL.RequestURI())
		return
	}

	data.Types = market.FundTypes(funds)
	data.Funds = market.FilterFunds(funds, data.Type)
	p.View = ready(len(data.Funds), "해당 날짜의 펀드 데이터가 없습니다.")
	s.render(w, r, http.StatusOK, "funds", p)
}

type etfsData struct {
	Query     string
	Sort      market.SortField
	Asc       bool
	Source    string
	FetchedAt string
	Total     int
	Items     []models.ETF
	Fields    []market.SortField
}

// ETFs handles GET /etf.
func (s *Server) ETFs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	data := &etfsData{
		Query:  q.Get("q"),
		Sort:   market.ParseSortField(q.Get("sort")),
		Asc:    q.Get("order") == "asc",
		Fields: []market.SortField{market.SortBasDt, market.SortClpr, market.SortFltRt, market.SortTrqu, market.SortTrPrc},
	}
	p := &page{Title: "ETF", Data: data}

	listing, err := s.svc.Market.ETFs(r.Context())
	if err != nil {
		s.fail(w, r, "etfs", p, err, r.URL.RequestURI())
		return
	}
	data.Source = listing.Source
	data.FetchedAt = listing.FetchedAt
	data.Total = len(listing.Items)
	data.Items = market.SortETFs(market.SearchETFs(listing.Items, data.Query), data.Sort, data.Asc)

	empty := "ETF 데이터가 없습니다."
	if data.Query != "" {
		empty = "검색 결과가 없습니다."
	}
	p.View = ready(len(data.Items), empty)
	s.render(w, r, http.StatusOK, "etfs", p)
}

// BondRecommendation handles GET /recommendations/bond.
func (s *Server) BondRecommendation(w http.ResponseWriter, r *http.Request) {
	p := &page{Title: "채권 추천"}
	rec, err := s.svc.Market.BondRecommendation(r.Context())
	if err != nil {
		s.fail(w, r, "recommend_bond", p, err, r.URL.Path)
		return
	}
	p.Data = &rec
	p.View = ready(len(rec.Items), "추천할 채권이 없습니다.")
	s.render(w, r, http.StatusOK, "recommend_bond", p)
}

// FundRecommendation handles GET /recommendations/fund.
func (s *Server) FundRecommendation(w http.ResponseWriter, r *http.Request) {
	p := &page{Title: "펀드 추천"}
	rec, err := s.svc.Market.FundRecommendation(r.Context())
	if err != nil {
		s.fail(w, r, "recommend_fund", p, err, r.URL.Path)
		return
	}
	p.Data = &rec
	p.View = ready(len(rec.Items), "추천할 펀드가 없습니다.")
	s.render(w, r, http.StatusOK, "recommend_fund", p)
}

// ETFRecommendation handles GET /recommendations/etf.
func (s *Server) ETFRecommendation(w http.ResponseWriter, r *http.Request) {
	p := &page{Title: "ETF 추천"}
	advice, err := s.svc.Market.ETFRecommendation(r.Context())
	if err != nil {
		s.fail(w, r, "recommend_etf", p, err, r.URL.Path)
		return
	}
	p.Data = &advice
	p.View = ready(len(advice.Items), "추천할 ETF가 없습니다.")
	s.render(w, r, http.StatusOK, "recommend_etf", p)
}
