// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes finboard's market data tools for LLM integration via stdio
// transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/finboard/internal/ecos"
	"github.com/starford/finboard/internal/market"
	"github.com/starford/finboard/internal/markdown"
	"github.com/starford/finboard/internal/news"
)

// DialectURI is the resource holding the markdown dialect.
const DialectURI = "finboard://markdown-dialect"

// Server wraps the MCP server with finboard tools.
type Server struct {
	mcp    *server.MCPServer
	market *market.Service
	ecos   *ecos.Service
	news   *news.Service
	now    func() time.Time
}

// New creates a new MCP server with all finboard tools registered.
func New(mkt *market.Service, eco *ecos.Service, nws *news.Service) *Server {
	s := &Server{market: mkt, ecos: eco, news: nws, now: time.Now}

	s.mcp = server.NewMCPServer(
		"finboard",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_bonds",
		mcp.WithDescription("List bonds listed on a date, optionally filtered by issuer."),
		mcp.WithString("date", mcp.Description("Listing date as YYYYMMDD (defaults to yesterday, Seoul time)")),
		mcp.WithString("issuer", mcp.Description("Exact issuer name to keep")),
	), s.listBonds)

	s.mcp.AddTool(mcp.NewTool("list_funds",
		mcp.WithDescription("List funds listed on a date, optionally filtered by fund type."),
		mcp.WithString("date", mcp.Description("Listing date as YYYYMMDD (defaults to yesterday, Seoul time)")),
		mcp.WithString("type", mcp.Description("Exact fund type to keep")),
	), s.listFunds)

	s.mcp.AddTool(mcp.NewTool("list_etfs",
		mcp.WithDescription("List the latest ETF quotes, optionally searched by index name and sorted."),
		mcp.WithString("query", mcp.Description("Case-insensitive index name search")),
		mcp.WithString("sort", mcp.Description("Sort column"), mcp.Enum("basDt", "clpr", "fltRt", "trqu", "trPrc")),
		mcp.WithString("order", mcp.Description("Sort order"), mcp.Enum("asc", "desc")),
	), s.listETFs)

	s.mcp.AddTool(mcp.NewTool("exchange_rates",
		mcp.WithDescription("Exchange rates (KRW per DOLLAR, YEN, EURO) recorded during a month."),
		mcp.WithString("month", mcp.Description("Month as YYYYMM (defaults to the current month)")),
	), s.exchangeRates)

	s.mcp.AddTool(mcp.NewTool("interest_rates",
		mcp.WithDescription("Interest rates recorded during a month."),
		mcp.WithString("month", mcp.Description("Month as YYYYMM (defaults to the current month)")),
	), s.interestRates)

	s.mcp.AddTool(mcp.NewTool("search_news",
		mcp.WithDescription("Search finance news. An empty query returns the latest articles."),
		mcp.WithString("query", mcp.Description("Search query, e.g. 환율 or 금리")),
	), s.searchNews)

	s.mcp.AddTool(mcp.NewTool("render_markdown",
		mcp.WithDescription("Parse text in finboard's markdown dialect and return its blocks. "+
			"Read the dialect first via get_markdown_dialect or the "+DialectURI+" resource."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Markdown text")),
	), s.renderMarkdown)

	s.mcp.AddTool(mcp.NewTool("get_markdown_dialect",
		mcp.WithDescription("Returns the markdown dialect finboard renders."),
	), s.getMarkdownDialect)

	s.mcp.AddResource(
		mcp.NewResource(DialectURI, "Markdown Dialect",
			mcp.WithResourceDescription("The markdown subset finboard renders for guides and reports."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readDialectResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listingDate(req mcp.CallToolRequest) string {
	if d := req.GetString("date", ""); d != "" {
		return d
	}
	return market.Yesterday(s.now())
}

func (s *Server) month(req mcp.CallToolRequest) string {
	if m := req.GetString("month", ""); m != "" {
		return m
	}
	return ecos.CurrentMonth(s.now())
}

func (s *Server) listBonds(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	bonds, err := s.market.Bonds(ctx, s.listingDate(req))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(market.FilterBonds(bonds, req.GetString("issuer", market.All)))
}

func (s *Server) listFunds(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	funds, err := s.market.Funds(ctx, s.listingDate(req))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(market.FilterFunds(funds, req.GetString("type", market.All)))
}

func (s *Server) listETFs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	listing, err := s.market.ETFs(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	items := market.SearchETFs(listing.Items, req.GetString("query", ""))
	items = market.SortETFs(items, market.ParseSortField(req.GetString("sort", "")), req.GetString("order", "desc") == "asc")
	listing.Items = items
	return jsonResult(listing)
}

func (s *Server) exchangeRates(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.rates(ctx, ecos.TabExchangeRate, s.month(req))
}

func (s *Server) interestRates(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.rates(ctx, ecos.TabInterestRate, s.month(req))
}

func (s *Server) rates(ctx context.Context, tab ecos.Tab, month string) (*mcp.CallToolResult, error) {
	points, err := s.ecos.Rates(ctx, tab, month)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(points)
}

func (s *Server) searchNews(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := s.news.Search(ctx, req.GetString("query", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(items) == 0 {
		return mcp.NewToolResultText("no news found"), nil
	}
	return jsonResult(items)
}

func (s *Server) renderMarkdown(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(markdown.Parse(content))
}

func (s *Server) getMarkdownDialect(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(MarkdownDialect), nil
}

func (s *Server) readDialectResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      DialectURI,
			MIMEType: "text/markdown",
			Text:     MarkdownDialect,
		},
	}, nil
}
