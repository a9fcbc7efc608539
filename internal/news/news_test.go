package news

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/starford/finboard/internal/models"
	"github.com/starford/finboard/internal/testutil"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatal(err)
	}
	return v
}

func TestNormalize_Shapes(t *testing.T) {
	want := []models.NewsItem{{Title: "금리 동결", Link: "https://news.example/1"}}
	for _, body := range []string{
		`[{"title":"금리 동결","link":"https://news.example/1"}]`,
		`{"items":[{"title":"금리 동결","link":"https://news.example/1"}]}`,
		`{"news":[{"title":"금리 동결","link":"https://news.example/1"}],"total":1}`,
	} {
		got, err := Normalize(decode(t, body))
		if err != nil {
			t.Fatalf("Normalize(%s): %v", body, err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Normalize(%s) (-want +got):\n%s", body, diff)
		}
	}
}

func TestNormalize_UnknownObject(t *testing.T) {
	got, err := Normalize(decode(t, `{"status":"ok"}`))
	if err != nil || len(got) != 0 {
		t.Fatalf("got %v, %v", got, err)
	}
}

func TestSearch_QueryParameters(t *testing.T) {
	up := testutil.NewUpstream(t)
	up.JSON("/news_info/fetch", http.StatusOK, map[string]any{"items": []any{}})
	svc := NewService(up.Client())

	if _, err := svc.Search(context.Background(), "코스피"); err != nil {
		t.Fatalf("Search: %v", err)
	}
	q := up.Last("/news_info/fetch").URL.Query()
	if q.Get("query") != "코스피" || q.Get("display") != "100" || q.Get("require_content") != "true" {
		t.Errorf("query = %v", q)
	}
}

func TestSearch_BlankFallsBackToLatest(t *testing.T) {
	up := testutil.NewUpstream(t)
	up.JSON("/news_info/latest", http.StatusOK, []map[string]string{{"title": "최신"}})
	svc := NewService(up.Client())

	items, err := svc.Search(context.Background(), "  ")
	if err != nil || len(items) != 1 || items[0].Title != "최신" {
		t.Fatalf("items = %v, %v", items, err)
	}
	if q := up.Last("/news_info/latest").URL.Query(); q.Get("limit") != "10" || q.Get("display_per_query") != "20" {
		t.Errorf("latest query = %v", q)
	}
}
