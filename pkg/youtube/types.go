// Package youtube provides a minimal client for the YouTube Data API v3
// video search endpoint.
package youtube

// Video is one search candidate, in upstream relevance order.
type Video struct {
	ID           string `json:"videoId"`
	Title        string `json:"title"`
	ChannelTitle string `json:"channelTitle"`
	PublishedAt  string `json:"publishedAt"` // RFC 3339, passed through verbatim
}

// searchResponse is the search.list response.
type searchResponse struct {
	Items []searchItem `json:"items"`
}

type searchItem struct {
	ID struct {
		Kind    string `json:"kind"`
		VideoID string `json:"videoId"`
	} `json:"id"`
	Snippet struct {
		Title        string `json:"title"`
		ChannelTitle string `json:"channelTitle"`
		PublishedAt  string `json:"publishedAt"`
	} `json:"snippet"`
}
