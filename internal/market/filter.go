package market

import (
	"sort"
	"strings"

	"github.com/starford/finboard/internal/format"
	"github.com/starford/finboard/internal/models"
)

// All is the filter value that keeps every row.
const All = "all"

// BondIssuers returns the distinct, sorted, non-empty issuer names.
func BondIssuers(bonds []models.Bond) []string {
	return distinct(len(bonds), func(i int) string { return bonds[i].BondIsurNm })
}

// FilterBonds keeps rows issued by issuer, or all rows for "" and All.
func FilterBonds(bonds []models.Bond, issuer string) []models.Bond {
	if issuer == "" || issuer == All {
		return bonds
	}
	var out []models.Bond
	for _, b := range bonds {
		if b.BondIsurNm == issuer {
			out = append(out, b)
		}
	}
	return out
}

// FundTypes returns the distinct, sorted, non-empty fund types.
func FundTypes(funds []models.Fund) []string {
	return distinct(len(funds), func(i int) string { return funds[i].FndTp })
}

// FilterFunds keeps rows of fund type typ, or all rows for "" and All.
func FilterFunds(funds []models.Fund, typ string) []models.Fund {
	if typ == "" || typ == All {
		return funds
	}
	var out []models.Fund
	for _, f := range funds {
		if f.FndTp == typ {
			out = append(out, f)
		}
	}
	return out
}

func distinct(n int, at func(int) string) []string {
	seen := make(map[string]struct{})
	var out []string
	for i := 0; i < n; i++ {
		v := at(i)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// SearchETFs keeps rows whose index name contains term, ignoring case. A
// blank term keeps everything.
func SearchETFs(items []models.ETF, term string) []models.ETF {
	term = strings.TrimSpace(term)
	if term == "" {
		return items
	}
	needle := strings.ToLower(term)
	var out []models.ETF
	for _, e := range items {
		if strings.Contains(strings.ToLower(e.BssIdxIdxNm), needle) {
			out = append(out, e)
		}
	}
	return out
}

// SortField is an ETF column that can be sorted.
type SortField string

// Sortable ETF columns.
const (
	SortBasDt SortField = "basDt"
	SortClpr  SortField = "clpr"
	SortFltRt SortField = "fltRt"
	SortTrqu  SortField = "trqu"
	SortTrPrc SortField = "trPrc"
)

// ParseSortField maps a query value to a SortField, defaulting to basDt.
func ParseSortField(s string) SortField {
	switch f := SortField(s); f {
	case SortClpr, SortFltRt, SortTrqu, SortTrPrc:
		return f
	}
	return SortBasDt
}

// SortETFs returns a sorted copy. Numeric columns compare as numbers, with
// unparsable values counted as zero; basDt compares as text. Descending
// unless asc is set. The sort is stable.
func SortETFs(items []models.ETF, field SortField, asc bool) []models.ETF {
	out := append([]models.ETF(nil), items...)
	less := func(a, b models.ETF) int {
		if field == SortBasDt {
			return strings.Compare(a.BasDt, b.BasDt)
		}
		return format.Decimal(etfValue(a, field)).Cmp(format.Decimal(etfValue(b, field)))
	}
	sort.SliceStable(out, func(i, j int) bool {
		c := less(out[i], out[j])
		if asc {
			return c < 0
		}
		return c > 0
	})
	return out
}

func etfValue(e models.ETF, field SortField) string {
	switch field {
	case SortClpr:
		return e.Clpr
	case SortFltRt:
		return e.FltRt
	case SortTrqu:
		return e.Trqu
	case SortTrPrc:
		return e.TrPrc
	}
	return e.BasDt
}
