// Package format renders upstream values for display the way the Korean
// market pages show them.
package format

import (
	"errors"
	"math"
	"strings"
	"time"
	"unicode"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Seoul is the display time zone. Korea observes no daylight saving time.
var Seoul = time.FixedZone("KST", 9*60*60)

var (
	// numberFmt groups thousands with up to three fraction digits.
	numberFmt = money.NewFormatter(3, ".", ",", "", "1")
	wonFmt    = money.NewFormatter(0, ".", ",", "원", "1$")
)

// Amount parsing errors.
var (
	ErrNoAmount    = errors.New("format: amount has no digits")
	ErrAmountRange = errors.New("format: amount out of range")
)

var (
	maxAmount = decimal.NewFromInt(math.MaxInt64)
	// maxGrouped is the largest magnitude numberFmt can take in thousandths.
	maxGrouped = maxAmount.Shift(-3)
)

// Direction classifies a signed change.
type Direction string

// Change directions.
const (
	Up   Direction = "up"
	Down Direction = "down"
	Flat Direction = "flat"
)

func parse(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// Number groups thousands ("1234567.5" becomes "1,234,567.5"). Empty input
// and "-" yield "-"; unparsable input is returned unchanged.
func Number(s string) string {
	if s == "" || s == "-" {
		return "-"
	}
	d, ok := parse(s)
	if !ok {
		return s
	}
	if d.Abs().GreaterThan(maxGrouped) {
		return group(d.Round(3).String())
	}
	out := numberFmt.Format(d.Shift(3).Round(0).IntPart())
	if strings.Contains(out, ".") {
		out = strings.TrimRight(strings.TrimRight(out, "0"), ".")
	}
	return out
}

// group inserts thousands separators into a plain decimal string.
func group(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	b.WriteString(sign)
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if frac = strings.TrimRight(frac, "0"); frac != "" {
		b.WriteString("." + frac)
	}
	return b.String()
}

// Percent renders a value with two fraction digits and a percent sign.
func Percent(s string) string {
	if s == "" || s == "-" {
		return "-"
	}
	d, ok := parse(s)
	if !ok {
		return s
	}
	return d.StringFixed(2) + "%"
}

// Date turns YYYYMMDD into YYYY.MM.DD. Anything else is returned unchanged.
func Date(s string) string {
	if len(s) != 8 {
		return s
	}
	return s[:4] + "." + s[4:6] + "." + s[6:]
}

// DateTime renders an RFC 3339 timestamp in Seoul time as
// "2025. 03. 01. 오후 03:04:05". Unparsable input is returned unchanged.
func DateTime(s string) string {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return s
	}
	t = t.In(Seoul)
	meridiem := "오전"
	if t.Hour() >= 12 {
		meridiem = "오후"
	}
	hour := t.Hour() % 12
	if hour == 0 {
		hour = 12
	}
	return t.Format("2006. 01. 02. ") + meridiem + " " + twoDigits(hour) + t.Format(":04:05")
}

func twoDigits(n int) string {
	return string([]byte{byte('0' + n/10), byte('0' + n%10)})
}

// Won renders an integer amount as "1,234원".
func Won(amount int64) string {
	return wonFmt.Format(amount)
}

// ParseAmount reads a user-typed amount, ignoring thousands separators and
// any other non-digit characters. It fails with ErrNoAmount when no digit is
// present and with ErrAmountRange when the amount does not fit an int64.
func ParseAmount(s string) (int64, error) {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0, ErrNoAmount
	}
	d, err := decimal.NewFromString(b.String())
	if err != nil {
		return 0, ErrNoAmount
	}
	if d.GreaterThan(maxAmount) {
		return 0, ErrAmountRange
	}
	return d.IntPart(), nil
}

// Change classifies s by sign. Unparsable values are Flat.
func Change(s string) Direction {
	d, ok := parse(s)
	switch {
	case !ok:
		return Flat
	case d.IsPositive():
		return Up
	case d.IsNegative():
		return Down
	}
	return Flat
}

// Decimal parses s, treating unparsable values as zero.
func Decimal(s string) decimal.Decimal {
	d, _ := parse(s)
	return d
}

// Float is Number for a value that arrived as a JSON number.
func Float(f float64) string {
	return Number(decimal.NewFromFloat(f).String())
}

// FloatPtr is Float for a nullable value; nil renders as "-".
func FloatPtr(f *float64) string {
	if f == nil {
		return "-"
	}
	return Float(*f)
}
