// Package models defines the upstream payloads finboard renders.
package models

// Bond is one row of /product/bond/{date}. Nullable upstream fields decode
// to their zero value.
type Bond struct {
	ID              int64    `json:"id"`
	BasDt           string   `json:"basDt"`
	Crno            string   `json:"crno,omitempty"`
	BondIsurNm      string   `json:"bondIsurNm,omitempty"`
	BondIssuDt      string   `json:"bondIssuDt,omitempty"`
	ScrsItmsKcd     string   `json:"scrsItmsKcd,omitempty"`
	ScrsItmsKcdNm   string   `json:"scrsItmsKcdNm,omitempty"`
	IsinCd          string   `json:"isinCd,omitempty"`
	IsinCdNm        string   `json:"isinCdNm,omitempty"`
	BondIssuFrmtNm  string   `json:"bondIssuFrmtNm,omitempty"`
	BondExprDt      string   `json:"bondExprDt,omitempty"`
	BondIssuCurCd   string   `json:"bondIssuCurCd,omitempty"`
	BondIssuCurCdNm string   `json:"bondIssuCurCdNm,omitempty"`
	BondPymtAmt     *float64 `json:"bondPymtAmt,omitempty"`
	BondIssuAmt     *float64 `json:"bondIssuAmt,omitempty"`
	BondSrfcInrt    *float64 `json:"bondSrfcInrt,omitempty"`
	IrtChngDcd      string   `json:"irtChngDcd,omitempty"`
	IrtChngDcdNm    string   `json:"irtChngDcdNm,omitempty"`
	BondIntTcd      string   `json:"bondIntTcd,omitempty"`
	BondIntTcdNm    string   `json:"bondIntTcdNm,omitempty"`

	DisplayID string `json:"displayId,omitempty"`
}

// Name is the label shown for the bond.
func (b Bond) Name() string {
	switch {
	case b.IsinCdNm != "":
		return b.IsinCdNm
	case b.BondIsurNm != "":
		return b.BondIsurNm
	}
	return "채권 정보"
}

// Fund is one row of /product/fund/{date}.
type Fund struct {
	ID        int64  `json:"id"`
	BasDt     string `json:"basDt"`
	SrtnCd    string `json:"srtnCd,omitempty"`
	FndNm     string `json:"fndNm,omitempty"`
	Ctg       string `json:"ctg,omitempty"`
	SetpDt    string `json:"setpDt,omitempty"`
	FndTp     string `json:"fndTp,omitempty"`
	PrdClsfCd string `json:"prdClsfCd,omitempty"`
	AsoStdCd  string `json:"asoStdCd,omitempty"`

	DisplayID string `json:"displayId,omitempty"`
}

// ETF is one row of /product/etf. Every value arrives as a string.
type ETF struct {
	FltRt       string `json:"fltRt"`
	Nav         string `json:"nav"`
	Mkp         string `json:"mkp"`
	Hipr        string `json:"hipr"`
	Lopr        string `json:"lopr"`
	Trqu        string `json:"trqu"`
	TrPrc       string `json:"trPrc"`
	MrktTotAmt  string `json:"mrktTotAmt"`
	NPptTotAmt  string `json:"nPptTotAmt"`
	StLstgCnt   string `json:"stLstgCnt"`
	BssIdxIdxNm string `json:"bssIdxIdxNm"`
	BssIdxClpr  string `json:"bssIdxClpr"`
	BasDt       string `json:"basDt"`
	Clpr        string `json:"clpr"`
	Vs          string `json:"vs"`

	DisplayID string `json:"id,omitempty"`
}

// ETFListing is the /product/etf envelope.
type ETFListing struct {
	Source    string `json:"source"`
	FetchedAt string `json:"fetched_at"`
	Items     []ETF  `json:"items"`
}

// Recommendation is the envelope shared by the bond, fund and ETF
// recommendation endpoints.
type Recommendation[T any] struct {
	Source          string   `json:"source"`
	FetchedAt       string   `json:"fetched_at"`
	TotalIncome     float64  `json:"total_income"`
	TotalExpense    float64  `json:"total_expense"`
	AvailableAmount float64  `json:"available_amount"`
	SurplusRatio    *float64 `json:"surplus_ratio,omitempty"`
	Reason          string   `json:"recommendation_reason"`
	Items           []T      `json:"items"`
}
