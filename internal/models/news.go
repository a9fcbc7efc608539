package models

// NewsItem is one article from the news service.
type NewsItem struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content,omitempty"`
	PublishedAt string `json:"published_at"`
	Link        string `json:"link"`
}
