package web

import (
	"net/http"
	"time"

	"github.com/starford/finboard/internal/ecos"
	"github.com/starford/finboard/internal/fetchctl"
	"github.com/starford/finboard/internal/format"
	"github.com/starford/finboard/internal/models"
	"github.com/starford/finboard/internal/session"
)

// EcosEvent is the payload of an ecos.state event.
type EcosEvent struct {
	Phase       string `json:"phase"`
	Key         string `json:"key"`
	Loading     bool   `json:"loading"`
	Error       string `json:"error,omitempty"`
	Count       int    `json:"count"`
	RetrievedAt string `json:"retrieved_at,omitempty"`
}

func newEcosEvent(st ecos.State) EcosEvent {
	ev := EcosEvent{
		Phase:   st.Phase.String(),
		Key:     st.Key,
		Loading: st.Loading,
		Error:   st.Err,
		Count:   len(st.Data),
	}
	if !st.RetrievedAt.IsZero() {
		ev.RetrievedAt = st.RetrievedAt.Format(time.RFC3339)
	}
	return ev
}

type ecosData struct {
	Tab         ecos.Tab
	Tabs        []ecos.Tab
	Month       string
	Prev        string
	Next        string
	Key         string
	Rows        []models.RatePoint
	RetrievedAt string
}

// Ecos handles GET /ecos. Members only; the request for the selected tab and
// month replaces whatever this browser's viewer was fetching.
func (s *Server) Ecos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !s.svc.Account.LoggedIn(ctx) {
		seeOther(w, r, "/login")
		return
	}

	q := r.URL.Query()
	data := &ecosData{
		Tab:   ecos.ParseTab(q.Get("tab")),
		Tabs:  []ecos.Tab{ecos.TabExchangeRate, ecos.TabInterestRate},
		Month: q.Get("month"),
	}
	if data.Month == "" {
		data.Month = ecos.CurrentMonth(s.now())
	}
	data.Prev, data.Next = ecos.ShiftMonth(data.Month, -1), ecos.ShiftMonth(data.Month, 1)
	data.Key = ecos.SelectionKey(data.Tab, data.Month, true)
	p := &page{Title: "경제 지표", LoggedIn: true, Data: data}

	if err := ecos.ValidateMonth(data.Month); err != nil {
		s.fail(w, r, "ecos", p, err, "/ecos")
		return
	}

	client := clientFrom(ctx)
	view := s.views.Get(client)
	res := <-view.Select(ctx, data.Tab, data.Month, true)
	if res.Outcome == fetchctl.OutcomeCancelled && ctx.Err() == nil && !s.superseded(client, view) {
		// The viewer was evicted mid-request, or the newer selection already
		// settled. No event will follow, so fetch again on the live viewer.
		view = s.views.Get(client)
		res = <-view.Select(ctx, data.Tab, data.Month, true)
	}
	switch res.Outcome {
	case fetchctl.OutcomeOk:
		data.Rows = res.Data
		data.RetrievedAt = format.DateTime(res.RetrievedAt.Format(time.RFC3339))
		p.View = ready(len(res.Data), "해당 월의 데이터가 없습니다.")
	case fetchctl.OutcomeError:
		if navigated(r) {
			return
		}
		p.View = View{Status: StatusError, Message: res.Message, Retry: r.URL.RequestURI()}
		s.render(w, r, http.StatusBadGateway, "ecos", p)
		return
	default:
		if ctx.Err() != nil {
			return
		}
		// Another window of this browser changed the selection meanwhile.
		st := view.State()
		data.Key = st.Key
		p.View = loading("데이터를 불러오는 중...")
	}
	s.render(w, r, http.StatusOK, "ecos", p)
}

// superseded reports whether view is still the client's viewer and is busy
// with a newer selection whose result will be pushed as an event.
func (s *Server) superseded(client string, view *ecos.View) bool {
	current, ok := s.views.Peek(client)
	return ok && current == view && view.Pending()
}

// EcosEvents handles GET /ecos/events, the viewer state stream of the
// requesting browser.
func (s *Server) EcosEvents(w http.ResponseWriter, r *http.Request) {
	client, ok := session.ClientID(r)
	if !ok {
		http.Error(w, "unknown client", http.StatusBadRequest)
		return
	}
	s.broker.Stream(w, r, client)
}
