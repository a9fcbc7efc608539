// Package analysis drives the document-analysis flow (income and expense
// uploads, the manual form and the result page) and the financial guide.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/finboard/internal/apiclient"
	"github.com/starford/finboard/internal/apperr"
	"github.com/starford/finboard/internal/format"
	"github.com/starford/finboard/internal/localstore"
	"github.com/starford/finboard/internal/markdown"
	"github.com/starford/finboard/internal/models"
)

// SessionCookie carries the analysis session to the upstream.
const SessionCookie = "session_id"

// sessionMaxAge is one day.
const sessionMaxAge = 24 * 60 * 60

// Upstream is the subset of the API client the flow uses.
type Upstream interface {
	Endpoint(path string) string
	GetJSON(ctx context.Context, rawURL, fallback string, out any) error
	PostJSON(ctx context.Context, rawURL string, body any, fallback string, out any) error
	DoJSON(ctx context.Context, rawURL string, opts apiclient.Options, fallback string, out any) error
	GetText(ctx context.Context, rawURL, fallback string) (string, error)
}

// Cache persists the analysis session id per browser.
type Cache interface {
	Put(ctx context.Context, client, key string, v any) error
	Get(ctx context.Context, client, key string, out any) error
}

// Service runs the analysis flow.
type Service struct {
	api   Upstream
	cache Cache
}

// NewService creates a Service.
func NewService(api Upstream, cache Cache) *Service {
	return &Service{api: api, cache: cache}
}

func validateType(typ models.DocumentType) error {
	err := validation.Validate(string(typ),
		validation.Required,
		validation.In(string(models.DocumentIncome), string(models.DocumentExpense)),
	)
	if err != nil {
		return apperr.Validation("문서 종류는 income 또는 expense 여야 합니다.")
	}
	return nil
}

// Upload sends a document for analysis as multipart form data.
func (s *Service) Upload(ctx context.Context, client string, typ models.DocumentType, filename string, file io.Reader) (models.AnalyzeResponse, error) {
	if err := validateType(typ); err != nil {
		return models.AnalyzeResponse{}, err
	}
	if file == nil || strings.TrimSpace(filename) == "" {
		return models.AnalyzeResponse{}, apperr.Validation("업로드할 파일을 선택해주세요.")
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return models.AnalyzeResponse{}, fmt.Errorf("analysis: create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return models.AnalyzeResponse{}, fmt.Errorf("analysis: copy upload: %w", err)
	}
	if err := mw.WriteField("type_of_doc", string(typ)); err != nil {
		return models.AnalyzeResponse{}, fmt.Errorf("analysis: write field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return models.AnalyzeResponse{}, fmt.Errorf("analysis: close multipart: %w", err)
	}

	var resp models.AnalyzeResponse
	err = s.api.DoJSON(ctx, s.api.Endpoint("/documents-multi-agents/analyze"), apiclient.Options{
		Method:      http.MethodPost,
		Header:      http.Header{"Content-Type": []string{mw.FormDataContentType()}},
		Body:        &buf,
		Credentials: apiclient.CredentialsInclude,
	}, "분석 실패", &resp)
	if err != nil {
		return models.AnalyzeResponse{}, err
	}
	s.rememberSession(ctx, client, resp.SessionID)
	return resp, nil
}

// SubmitForm sends manually entered amounts keyed by category.
func (s *Service) SubmitForm(ctx context.Context, client string, typ models.DocumentType, data map[string]string) (models.AnalyzeResponse, error) {
	if err := validateType(typ); err != nil {
		return models.AnalyzeResponse{}, err
	}
	if len(data) == 0 {
		return models.AnalyzeResponse{}, apperr.Validation("입력된 항목이 없습니다.")
	}
	body := struct {
		DocumentType models.DocumentType `json:"document_type"`
		Data         map[string]string   `json:"data"`
	}{typ, data}

	var resp models.AnalyzeResponse
	if err := s.api.PostJSON(ctx, s.api.Endpoint("/documents-multi-agents/analyze_form"), body, "저장 실패", &resp); err != nil {
		return models.AnalyzeResponse{}, err
	}
	s.rememberSession(ctx, client, resp.SessionID)
	return resp, nil
}

// rememberSession persists id to the cache and to the session cookie. A
// cache failure only loses the convenience of restoring it later.
func (s *Service) rememberSession(ctx context.Context, client, id string) {
	if id == "" {
		return
	}
	if err := s.cache.Put(ctx, client, localstore.KeySessionID, id); err != nil {
		slog.Warn("failed to remember analysis session",
			slog.String("client", client),
			slog.String("error", err.Error()))
	}
	setSessionCookie(ctx, id)
}

func setSessionCookie(ctx context.Context, id string) {
	if b := apiclient.BrowserFrom(ctx); b != nil {
		b.SetCookie(&http.Cookie{
			Name:     SessionCookie,
			Value:    id,
			Path:     "/",
			MaxAge:   sessionMaxAge,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

// Result restores the session cookie from the cache, then fetches the
// analysis result.
func (s *Service) Result(ctx context.Context, client string) (models.AnalysisResult, error) {
	var id string
	if err := s.cache.Get(ctx, client, localstore.KeySessionID, &id); err == nil && id != "" {
		setSessionCookie(ctx, id)
	}
	var res models.AnalysisResult
	if err := s.api.GetJSON(ctx, s.api.Endpoint("/documents-multi-agents/result"), "데이터를 불러오는데 실패했습니다.", &res); err != nil {
		return models.AnalysisResult{}, err
	}
	return res, nil
}

// GuideInput is the financial-guide form.
type GuideInput struct {
	Current string
	Goal    string
}

const (
	msgGuideRequired = "현재 총 자산과 목표 금액을 모두 입력해주세요."
	msgGuideOrder    = "총 자산보다 목표 금액이 커야 합니다."
	msgGuideRange    = "입력한 금액이 너무 큽니다."

	codeGuideRange = "guide_range"
)

// Amounts validates the form and returns both amounts. Zero counts as
// missing.
func (in GuideInput) Amounts() (current, goal int64, err error) {
	amount := validation.By(func(v any) error {
		n, err := format.ParseAmount(v.(string))
		switch {
		case errors.Is(err, format.ErrAmountRange):
			return validation.NewError(codeGuideRange, msgGuideRange)
		case err != nil || n == 0:
			return validation.NewError("guide_required", msgGuideRequired)
		}
		return nil
	})
	if err := validation.ValidateStruct(&in,
		validation.Field(&in.Current, amount),
		validation.Field(&in.Goal, amount),
	); err != nil {
		return 0, 0, apperr.Validation(guideMessage(err))
	}
	current, _ = format.ParseAmount(in.Current)
	goal, _ = format.ParseAmount(in.Goal)
	if current >= goal {
		return 0, 0, apperr.Validation(msgGuideOrder)
	}
	return current, goal, nil
}

// guideMessage prefers the range message over the required one.
func guideMessage(err error) string {
	var errs validation.Errors
	if errors.As(err, &errs) {
		for _, fieldErr := range errs {
			var ve validation.Error
			if errors.As(fieldErr, &ve) && ve.Code() == codeGuideRange {
				return msgGuideRange
			}
		}
	}
	return msgGuideRequired
}

// Guide is a rendered financial guide.
type Guide struct {
	Current int64
	Goal    int64
	Text    string
	Blocks  []markdown.Block
}

// FinancialGuide validates in and asks the upstream for a plan to grow the
// current assets to the goal. Validation failures never reach the upstream.
func (s *Service) FinancialGuide(ctx context.Context, in GuideInput) (Guide, error) {
	current, goal, err := in.Amounts()
	if err != nil {
		return Guide{}, err
	}
	q := url.Values{}
	q.Set("now_mon", strconv.FormatInt(current, 10))
	q.Set("tar_mon", strconv.FormatInt(goal, 10))
	text, err := s.api.GetText(ctx, s.api.Endpoint("/documents-multi-agents/financial-guide?"+q.Encode()), "분석 실패")
	if err != nil {
		return Guide{}, err
	}
	text = unquote(text)
	return Guide{Current: current, Goal: goal, Text: text, Blocks: markdown.Parse(text)}, nil
}

// unquote unwraps a body that is a JSON string literal.
func unquote(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, `"`) {
		return text
	}
	var s string
	if err := json.Unmarshal([]byte(trimmed), &s); err != nil {
		return text
	}
	return s
}
