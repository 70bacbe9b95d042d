// Package google implements the search and language-analysis services on
// top of the Google Custom Search and Cloud Natural Language REST APIs.
package google

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/serplens/serplens"
)

// Compile-time interface verification.
var (
	_ serplens.SearchService   = (*Client)(nil)
	_ serplens.LanguageService = (*Client)(nil)
)

// Default API endpoints.
const (
	DefaultSearchBaseURL   = "https://www.googleapis.com/customsearch/v1"
	DefaultLanguageBaseURL = "https://language.googleapis.com/v1"
)

// searchResultCount is the number of results requested per search. The
// Custom Search API caps a single page at 10.
const searchResultCount = 10

// Client calls the Google Custom Search and Natural Language APIs with a
// shared API key.
type Client struct {
	apiKey         string
	searchEngineID string

	httpClient      *http.Client
	searchBaseURL   string
	languageBaseURL string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for API calls.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithSearchBaseURL overrides the Custom Search endpoint, primarily for
// testing.
func WithSearchBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.searchBaseURL = baseURL
	}
}

// WithLanguageBaseURL overrides the Natural Language endpoint, primarily
// for testing.
func WithLanguageBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.languageBaseURL = baseURL
	}
}

// NewClient creates a Client. Both credentials are required.
func NewClient(apiKey, searchEngineID string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, serplens.Errorf(serplens.EINVALID, "Google API key required")
	}
	if searchEngineID == "" {
		return nil, serplens.Errorf(serplens.EINVALID, "Google Custom Search engine ID required")
	}

	c := &Client{
		apiKey:          apiKey,
		searchEngineID:  searchEngineID,
		httpClient:      http.DefaultClient,
		searchBaseURL:   DefaultSearchBaseURL,
		languageBaseURL: DefaultLanguageBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type searchResponse struct {
	Items []serplens.SearchResult `json:"items"`
	Error *apiError               `json:"error"`
}

// Search queries the Custom Search API, returning up to 10 results in rank
// order. Results are restricted by country and interface language.
func (c *Client) Search(ctx context.Context, req serplens.SearchRequest) ([]serplens.SearchResult, error) {
	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("cx", c.searchEngineID)
	params.Set("q", req.Keyword)
	params.Set("cr", "country"+req.Country)
	params.Set("hl", req.Language)
	params.Set("num", fmt.Sprint(searchResultCount))
	params.Set("safe", "off")
	params.Set("fields", "items(title,link,snippet,displayLink)")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.searchBaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, serplens.Errorf(serplens.EUNAVAILABLE, "failed to fetch search results: %v", err)
	}
	defer resp.Body.Close()

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, serplens.Errorf(serplens.EUNAVAILABLE, "failed to decode search response: %v", err)
	}
	if body.Error != nil {
		return nil, serplens.Errorf(serplens.EUNAVAILABLE, "Google Search API error: %s", body.Error.Message)
	}

	return body.Items, nil
}

type languageDocument struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

type languageRequest struct {
	Document     languageDocument `json:"document"`
	EncodingType string           `json:"encodingType"`
}

type entityMention struct {
	Text struct {
		Content string `json:"content"`
	} `json:"text"`
	Type string `json:"type"`
}

type entityResponse struct {
	Entities []struct {
		Name     string            `json:"name"`
		Type     string            `json:"type"`
		Salience float64           `json:"salience"`
		Mentions []entityMention   `json:"mentions"`
		Metadata map[string]string `json:"metadata"`
	} `json:"entities"`
	Error *apiError `json:"error"`
}

type sentimentResponse struct {
	DocumentSentiment *struct {
		Score     float64 `json:"score"`
		Magnitude float64 `json:"magnitude"`
	} `json:"documentSentiment"`
	Error *apiError `json:"error"`
}

// Entities extracts named entities from text via the Natural Language API.
// Input beyond the API limit is truncated.
func (c *Client) Entities(ctx context.Context, text string) ([]serplens.Entity, error) {
	var body entityResponse
	if err := c.analyze(ctx, "analyzeEntities", text, &body); err != nil {
		return nil, err
	}
	if body.Error != nil {
		return nil, serplens.Errorf(serplens.EUNAVAILABLE, "Google Natural Language API error: %s", body.Error.Message)
	}

	entities := make([]serplens.Entity, 0, len(body.Entities))
	for _, e := range body.Entities {
		entities = append(entities, serplens.Entity{
			Name:             e.Name,
			Type:             e.Type,
			Salience:         e.Salience,
			Mentions:         len(e.Mentions),
			KnowledgeGraphID: e.Metadata["mid"],
		})
	}
	return entities, nil
}

// Sentiment measures document-level sentiment of text via the Natural
// Language API. Input beyond the API limit is truncated.
func (c *Client) Sentiment(ctx context.Context, text string) (*serplens.Sentiment, error) {
	var body sentimentResponse
	if err := c.analyze(ctx, "analyzeSentiment", text, &body); err != nil {
		return nil, err
	}
	if body.Error != nil {
		return nil, serplens.Errorf(serplens.EUNAVAILABLE, "Google Natural Language API error: %s", body.Error.Message)
	}
	if body.DocumentSentiment == nil {
		return nil, serplens.Errorf(serplens.EUNAVAILABLE, "no sentiment data returned from API")
	}

	return &serplens.Sentiment{
		Score:     body.DocumentSentiment.Score,
		Magnitude: body.DocumentSentiment.Magnitude,
		Label:     serplens.SentimentLabelForScore(body.DocumentSentiment.Score),
	}, nil
}

// analyze posts a plain-text document to one of the Natural Language
// methods and decodes the response into out.
func (c *Client) analyze(ctx context.Context, method, text string, out any) error {
	payload, err := json.Marshal(languageRequest{
		Document: languageDocument{
			Type:    "PLAIN_TEXT",
			Content: serplens.TruncateForLanguage(text),
		},
		EncodingType: "UTF8",
	})
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/documents:%s?key=%s", c.languageBaseURL, method, url.QueryEscape(c.apiKey))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return serplens.Errorf(serplens.EUNAVAILABLE, "failed to call %s: %v", method, err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return serplens.Errorf(serplens.EUNAVAILABLE, "failed to decode %s response: %v", method, err)
	}
	return nil
}
