package web

import (
	"errors"

	"github.com/starford/finboard/internal/apperr"
)

// Status is the display state of a data view.
type Status string

// Every data view is in exactly one of these.
const (
	StatusReady   Status = "ready"
	StatusLoading Status = "loading"
	StatusError   Status = "error"
	StatusEmpty   Status = "empty"
)

// View is the state of the main data view of a page.
type View struct {
	Status  Status
	Message string
	Retry   string
}

// ready is StatusReady, or StatusEmpty when there is nothing to show.
func ready(n int, empty string) View {
	if n == 0 {
		return View{Status: StatusEmpty, Message: empty}
	}
	return View{Status: StatusReady}
}

func loading(msg string) View {
	return View{Status: StatusLoading, Message: msg}
}

func failed(err error, retry string) View {
	return View{Status: StatusError, Message: message(err), Retry: retry}
}

// message is the user-facing text for err.
func message(err error) string {
	var ve *apperr.ValidationError
	var de *apperr.DomainError
	switch {
	case errors.As(err, &ve):
		return ve.Message
	case errors.As(err, &de):
		return de.Error()
	case errors.Is(err, apperr.ErrMalformedResponse):
		return "응답 데이터 형식이 올바르지 않습니다."
	case errors.Is(err, apperr.ErrLocalData):
		return "저장된 데이터를 찾을 수 없습니다."
	case errors.Is(err, apperr.ErrNetwork):
		return "서버에 연결할 수 없습니다."
	}
	return "데이터를 불러오는 중 오류가 발생했습니다."
}

// page is the data every template receives.
type page struct {
	Title    string
	Path     string
	LoggedIn bool
	Notice   string
	View     View
	Data     any
}
