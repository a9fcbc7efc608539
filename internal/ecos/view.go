package ecos

import (
	"context"

	"github.com/starford/finboard/internal/fetchctl"
	"github.com/starford/finboard/internal/models"
)

// State is what the viewer displays.
type State = fetchctl.State[[]models.RatePoint]

// Result is the outcome of one selection.
type Result = fetchctl.Result[[]models.RatePoint]

// View is one browser's viewer. Changing the selection cancels the request
// for the previous one.
type View struct {
	svc *Service
	ctl *fetchctl.Controller[[]models.RatePoint]
}

// NewView creates a View. onChange, when set, observes every state change in
// order and must not block.
func NewView(svc *Service, onChange func(State)) *View {
	var opts []fetchctl.Option[[]models.RatePoint]
	if onChange != nil {
		opts = append(opts, fetchctl.WithOnChange(onChange))
	}
	return &View{svc: svc, ctl: fetchctl.New(opts...)}
}

// SelectionKey identifies one selection of the viewer.
func SelectionKey(tab Tab, month string, loggedIn bool) string {
	gate := "guest"
	if loggedIn {
		gate = "member"
	}
	return string(tab) + "|" + month + "|" + gate
}

// Select starts fetching the tab's series for month. ctx bounds the request
// and carries the browser it is made for.
func (v *View) Select(ctx context.Context, tab Tab, month string, loggedIn bool) <-chan Result {
	return v.ctl.Trigger(ctx, SelectionKey(tab, month, loggedIn), func(ctx context.Context) ([]models.RatePoint, error) {
		return v.svc.Rates(ctx, tab, month)
	})
}

// Pending reports whether a selection is still being fetched.
func (v *View) Pending() bool {
	return v.ctl.Pending()
}

// State returns the current display state.
func (v *View) State() State {
	return v.ctl.Snapshot()
}

// Dispose cancels any outstanding request and waits for it to finish.
func (v *View) Dispose() {
	v.ctl.Dispose()
}
