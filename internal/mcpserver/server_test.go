package mcpserver

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/finboard/internal/ecos"
	"github.com/starford/finboard/internal/market"
	"github.com/starford/finboard/internal/news"
	"github.com/starford/finboard/internal/testutil"
)

func testServer(t *testing.T) (*Server, *testutil.Upstream) {
	t.Helper()
	up := testutil.NewUpstream(t)
	api := up.Client()
	srv := New(market.NewService(api, testutil.TestStore(t)), ecos.NewService(api), news.NewService(api))
	srv.now = func() time.Time { return time.Date(2025, 3, 15, 1, 0, 0, 0, time.UTC) }
	return srv, up
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_bonds":
		result, err = srv.listBonds(ctx, req)
	case "list_funds":
		result, err = srv.listFunds(ctx, req)
	case "list_etfs":
		result, err = srv.listETFs(ctx, req)
	case "exchange_rates":
		result, err = srv.exchangeRates(ctx, req)
	case "interest_rates":
		result, err = srv.interestRates(ctx, req)
	case "search_news":
		result, err = srv.searchNews(ctx, req)
	case "render_markdown":
		result, err = srv.renderMarkdown(ctx, req)
	case "get_markdown_dialect":
		result, err = srv.getMarkdownDialect(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestListBonds_DefaultDateAndFilter(t *testing.T) {
	srv, up := testServer(t)
	up.JSON("/product/bond/20250314", http.StatusOK, []map[string]any{
		{"id": 1, "basDt": "20250314", "bondIsurNm": "기획재정부"},
		{"id": 2, "basDt": "20250314", "bondIsurNm": "삼성전자"},
	})

	r := callTool(t, srv, "list_bonds", map[string]interface{}{"issuer": "삼성전자"})
	if r.IsError {
		t.Fatalf("unexpected error: %s", resultText(r))
	}
	text := resultText(r)
	if !strings.Contains(text, "삼성전자") || strings.Contains(text, "기획재정부") {
		t.Errorf("filter not applied: %s", text)
	}
}

func TestListFunds_InvalidDate(t *testing.T) {
	srv, up := testServer(t)
	r := callTool(t, srv, "list_funds", map[string]interface{}{"date": "03-14"})
	if !r.IsError {
		t.Error("expected error for invalid date")
	}
	if up.Hits("/product/fund/03-14") != 0 {
		t.Error("invalid date reached the upstream")
	}
}

func TestListETFs_Sorted(t *testing.T) {
	srv, up := testServer(t)
	up.JSON("/product/etf", http.StatusOK, map[string]any{
		"source": "krx",
		"items": []map[string]string{
			{"bssIdxIdxNm": "A", "trqu": "10"},
			{"bssIdxIdxNm": "B", "trqu": "200"},
		},
	})
	r := callTool(t, srv, "list_etfs", map[string]interface{}{"sort": "trqu"})
	text := resultText(r)
	if strings.Index(text, `"B"`) > strings.Index(text, `"A"`) {
		t.Errorf("expected descending volume order: %s", text)
	}
}

func TestInterestRates_CurrentMonth(t *testing.T) {
	srv, up := testServer(t)
	up.JSON("/ecos/interest_rate_by_date/202503", http.StatusOK, []map[string]any{
		{"interest_type": "기준금리", "interest_rate": 2.75, "erm_date": "20250301"},
	})
	r := callTool(t, srv, "interest_rates", map[string]interface{}{})
	if !strings.Contains(resultText(r), "기준금리") {
		t.Errorf("result = %s", resultText(r))
	}
}

func TestExchangeRates_UpstreamError(t *testing.T) {
	srv, up := testServer(t)
	up.JSON("/ecos/exchange_rate_by_date/202501", http.StatusInternalServerError, map[string]string{"detail": "down"})
	r := callTool(t, srv, "exchange_rates", map[string]interface{}{"month": "202501"})
	if !r.IsError {
		t.Error("expected error result")
	}
}

func TestSearchNews_Empty(t *testing.T) {
	srv, up := testServer(t)
	up.JSON("/news_info/latest", http.StatusOK, []any{})
	r := callTool(t, srv, "search_news", map[string]interface{}{})
	if got := resultText(r); got != "no news found" {
		t.Errorf("result = %q", got)
	}
}

func TestRenderMarkdown(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "render_markdown", map[string]interface{}{"content": "# 제목\n- 항목"})
	text := resultText(r)
	if !strings.Contains(text, `"kind": "heading"`) || !strings.Contains(text, `"kind": "list"`) {
		t.Errorf("blocks = %s", text)
	}
}

func TestRenderMarkdown_RequiresContent(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "render_markdown", map[string]interface{}{})
	if !r.IsError {
		t.Error("expected error without content")
	}
}

func TestMarkdownDialect(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_markdown_dialect", map[string]interface{}{})
	if !strings.Contains(resultText(r), "**bold**") {
		t.Error("dialect text missing inline rules")
	}

	contents, err := srv.readDialectResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if len(contents) != 1 {
		t.Fatalf("contents = %d", len(contents))
	}
	if tc, ok := contents[0].(mcp.TextResourceContents); !ok || tc.URI != DialectURI {
		t.Errorf("unexpected resource contents: %#v", contents[0])
	}
}
