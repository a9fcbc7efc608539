package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/finboard/internal/analysis"
	"github.com/starford/finboard/internal/apperr"
	"github.com/starford/finboard/internal/models"
	"github.com/starford/finboard/internal/news"
)

const maxUpload = 20 << 20

type newsData struct {
	Query     string
	Suggested []string
	Items     []models.NewsItem
}

// News handles GET /news-search. A blank query shows the latest news.
func (s *Server) News(w http.ResponseWriter, r *http.Request) {
	data := &newsData{Query: strings.TrimSpace(r.URL.Query().Get("q")), Suggested: news.SuggestedQueries}
	p := &page{Title: "뉴스 검색", Data: data}

	items, err := s.svc.News.Search(r.Context(), data.Query)
	if err != nil {
		s.fail(w, r, "news", p, err, r.URL.RequestURI())
		return
	}
	data.Items = items
	empty := "최신 뉴스가 없습니다."
	if data.Query != "" {
		empty = "'" + data.Query + "'에 대한 뉴스가 없습니다."
	}
	p.View = ready(len(items), empty)
	s.render(w, r, http.StatusOK, "news", p)
}

type flowStep struct {
	Type   models.DocumentType
	Number int
	Label  string
	Path   string
	Next   string
	Fields []string
}

var flowSteps = []flowStep{
	{
		Type: models.DocumentIncome, Number: 1, Label: "소득 자료",
		Path: "/flow/income", Next: "/flow/expense",
		Fields: []string{"급여", "상여금", "사업소득", "기타소득"},
	},
	{
		Type: models.DocumentExpense, Number: 2, Label: "지출 자료",
		Path: "/flow/expense", Next: "/flow/result",
		Fields: []string{"주거비", "식비", "교통비", "통신비", "보험료", "기타지출"},
	},
}

func stepFor(r *http.Request) flowStep {
	if chi.URLParam(r, "step") == string(models.DocumentExpense) {
		return flowSteps[1]
	}
	return flowSteps[0]
}

// Flow handles GET /flow.
func (s *Server) Flow(w http.ResponseWriter, r *http.Request) {
	p := &page{Title: "재무 분석", View: View{Status: StatusReady}, Data: flowSteps}
	s.render(w, r, http.StatusOK, "flow", p)
}

// FlowStep handles GET /flow/{income,expense}.
func (s *Server) FlowStep(w http.ResponseWriter, r *http.Request) {
	step := stepFor(r)
	p := &page{Title: step.Label, View: View{Status: StatusReady}, Data: step}
	s.render(w, r, http.StatusOK, "flow_step", p)
}

// FlowSubmit handles POST /flow/{income,expense}: an uploaded document, or
// amounts typed into the form when no file is attached.
func (s *Server) FlowSubmit(w http.ResponseWriter, r *http.Request) {
	step := stepFor(r)
	p := &page{Title: step.Label, Data: step}
	ctx := r.Context()
	client := clientFrom(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	if err := r.ParseMultipartForm(maxUpload); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		s.fail(w, r, "flow_step", p, apperr.Validation("업로드 요청을 읽을 수 없습니다."), step.Path)
		return
	}

	var err error
	file, header, ferr := r.FormFile("file")
	if ferr == nil {
		defer file.Close()
		_, err = s.svc.Analysis.Upload(ctx, client, step.Type, header.Filename, file)
	} else {
		data := make(map[string]string)
		for _, name := range step.Fields {
			if v := strings.TrimSpace(r.FormValue("data." + name)); v != "" {
				data[name] = v
			}
		}
		_, err = s.svc.Analysis.SubmitForm(ctx, client, step.Type, data)
	}
	if err != nil {
		s.fail(w, r, "flow_step", p, err, step.Path)
		return
	}
	seeOther(w, r, step.Next)
}

// FlowResult handles GET /flow/result.
func (s *Server) FlowResult(w http.ResponseWriter, r *http.Request) {
	p := &page{Title: "분석 결과"}
	ctx := r.Context()
	res, err := s.svc.Analysis.Result(ctx, clientFrom(ctx))
	if err != nil {
		s.fail(w, r, "flow_result", p, err, "")
		return
	}
	if !res.Success {
		p.View = View{Status: StatusError, Message: "분석 결과를 불러올 수 없습니다."}
		s.render(w, r, http.StatusOK, "flow_result", p)
		return
	}
	p.Data = &res
	p.View = View{Status: StatusReady}
	s.render(w, r, http.StatusOK, "flow_result", p)
}

type guideData struct {
	Current string
	Goal    string
	Guide   analysis.Guide
}

// FinancialGuide handles GET /financial_guide. Without amounts it shows the
// empty form.
func (s *Server) FinancialGuide(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	data := &guideData{Current: q.Get("current"), Goal: q.Get("goal")}
	p := &page{Title: "재무 가이드", Data: data}

	if !q.Has("current") && !q.Has("goal") {
		p.View = View{Status: StatusEmpty, Message: "현재 총 자산과 목표 금액을 입력하면 재무 가이드를 받아볼 수 있습니다."}
		s.render(w, r, http.StatusOK, "guide", p)
		return
	}

	guide, err := s.svc.Analysis.FinancialGuide(r.Context(), analysis.GuideInput{Current: data.Current, Goal: data.Goal})
	if err != nil {
		s.fail(w, r, "guide", p, err, r.URL.RequestURI())
		return
	}
	data.Guide = guide
	p.View = ready(len(guide.Blocks), "가이드 내용이 비어 있습니다.")
	s.render(w, r, http.StatusOK, "guide", p)
}
