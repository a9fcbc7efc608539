// Package account is the authentication gate: login status, logout,
// account departure and saving products to the user's portfolio.
package account

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/starford/finboard/internal/apiclient"
	"github.com/starford/finboard/internal/apperr"
	"github.com/starford/finboard/internal/models"
)

// Upstream is the subset of the API client the account gate uses.
type Upstream interface {
	Endpoint(path string) string
	Fetch(ctx context.Context, rawURL string, opts apiclient.Options) (*http.Response, error)
	DoJSON(ctx context.Context, rawURL string, opts apiclient.Options, fallback string, out any) error
	PostJSON(ctx context.Context, rawURL string, body any, fallback string, out any) error
}

// Service talks to the authentication endpoints.
type Service struct {
	api Upstream
	now func() time.Time
}

// NewService creates a Service.
func NewService(api Upstream) *Service {
	return &Service{api: api, now: time.Now}
}

// LoggedIn asks the upstream whether the browser has a session. Any failure
// counts as logged out, and never redirects.
func (s *Service) LoggedIn(ctx context.Context) bool {
	var st models.AuthStatus
	err := s.api.DoJSON(ctx, s.api.Endpoint("/authentication/status"), apiclient.Options{
		Method:            http.MethodGet,
		Credentials:       apiclient.CredentialsInclude,
		SkipErrorHandling: true,
	}, "", &st)
	return err == nil && st.LoggedIn
}

// Logout ends the upstream session. The local state is logged out whatever
// the upstream answers.
func (s *Service) Logout(ctx context.Context) {
	resp, err := s.api.Fetch(ctx, s.api.Endpoint("/authentication/logout"), apiclient.Options{
		Method:            http.MethodPost,
		Credentials:       apiclient.CredentialsInclude,
		SkipErrorHandling: true,
	})
	if err == nil {
		resp.Body.Close()
	}
}

// Depart deletes the account. An unsuccessful answer is returned as a
// DomainError carrying the upstream message.
func (s *Service) Depart(ctx context.Context) error {
	var d models.Departure
	err := s.api.DoJSON(ctx, s.api.Endpoint("/account/departure"), apiclient.Options{
		Method:      http.MethodPost,
		Credentials: apiclient.CredentialsInclude,
	}, "회원탈퇴 중 오류가 발생했습니다.", &d)
	if err != nil {
		return err
	}
	if !d.Success {
		return &apperr.DomainError{Status: http.StatusOK, Detail: "회원탈퇴 실패: " + d.Message}
	}
	return nil
}

// SaveBond adds a bond to the portfolio of the session owner.
func (s *Service) SaveBond(ctx context.Context, sessionID string, bondID int64) ([]models.FinanceRecord, error) {
	if sessionID == "" {
		return nil, apperr.Validation("로그인이 필요합니다.")
	}
	entries := []models.FinanceEntry{{
		UserID: sessionID,
		Type:   models.ProductBond,
		BaseDt: s.now().UTC().Format(time.RFC3339),
		Key:    "product_bond_id",
		Value:  strconv.FormatInt(bondID, 10),
	}}
	var out []models.FinanceRecord
	if err := s.api.PostJSON(ctx, s.api.Endpoint("/finance"), entries, "채권 저장에 실패했습니다.", &out); err != nil {
		return nil, err
	}
	return out, nil
}
