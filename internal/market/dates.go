package market

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/finboard/internal/apperr"
	"github.com/starford/finboard/internal/format"
)

// DateLayout is the listing date format (YYYYMMDD).
const DateLayout = "20060102"

// Yesterday is the default listing date, in Seoul time.
func Yesterday(now time.Time) string {
	return now.In(format.Seoul).AddDate(0, 0, -1).Format(DateLayout)
}

// ValidateDate checks a YYYYMMDD listing date.
func ValidateDate(date string) error {
	err := validation.Validate(date,
		validation.Required,
		validation.Date(DateLayout),
	)
	if err != nil {
		return apperr.Validation(fmt.Sprintf("날짜 형식이 올바르지 않습니다: %s", date))
	}
	return nil
}

// ShiftDate moves a YYYYMMDD date by days. Invalid input is returned
// unchanged.
func ShiftDate(date string, days int) string {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return date
	}
	return t.AddDate(0, 0, days).Format(DateLayout)
}

// CompactDate renders an ISO timestamp (as used by basDt and the bond date
// fields) as YYYYMMDD in Seoul time. Empty input yields "" and unparsable
// input is returned unchanged.
func CompactDate(iso string) string {
	if iso == "" {
		return ""
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, iso); err == nil {
			if layout == time.RFC3339 {
				t = t.In(format.Seoul)
			}
			return t.Format(DateLayout)
		}
	}
	return iso
}
