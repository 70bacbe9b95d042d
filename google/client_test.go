package google_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/serplens/serplens"
	"github.com/serplens/serplens/google"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	t.Parallel()

	t.Run("requires api key", func(t *testing.T) {
		t.Parallel()

		_, err := google.NewClient("", "cse-id")
		assert.Equal(t, serplens.EINVALID, serplens.ErrorCode(err))
	})

	t.Run("requires search engine id", func(t *testing.T) {
		t.Parallel()

		_, err := google.NewClient("api-key", "")
		assert.Equal(t, serplens.EINVALID, serplens.ErrorCode(err))
	})
}

func TestClient_Search(t *testing.T) {
	t.Parallel()

	t.Run("returns ranked results", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			assert.Equal(t, "api-key", q.Get("key"))
			assert.Equal(t, "cse-id", q.Get("cx"))
			assert.Equal(t, "best espresso machine", q.Get("q"))
			assert.Equal(t, "countryUS", q.Get("cr"))
			assert.Equal(t, "en", q.Get("hl"))
			assert.Equal(t, "10", q.Get("num"))

			json.NewEncoder(w).Encode(map[string]any{
				"items": []map[string]string{
					{"title": "First", "link": "https://a.example.com", "snippet": "s1", "displayLink": "a.example.com"},
					{"title": "Second", "link": "https://b.example.com", "snippet": "s2", "displayLink": "b.example.com"},
				},
			})
		}))
		defer srv.Close()

		c, err := google.NewClient("api-key", "cse-id", google.WithSearchBaseURL(srv.URL))
		require.NoError(t, err)

		results, err := c.Search(context.Background(), serplens.SearchRequest{
			Keyword:  "best espresso machine",
			Country:  "US",
			Language: "en",
		})
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "First", results[0].Title)
		assert.Equal(t, "https://b.example.com", results[1].Link)
	})

	t.Run("empty item list is not an error", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		c, err := google.NewClient("api-key", "cse-id", google.WithSearchBaseURL(srv.URL))
		require.NoError(t, err)

		results, err := c.Search(context.Background(), serplens.SearchRequest{Keyword: "zxqvw"})
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("api error object", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"error": {"code": 403, "message": "Daily Limit Exceeded"}}`))
		}))
		defer srv.Close()

		c, err := google.NewClient("api-key", "cse-id", google.WithSearchBaseURL(srv.URL))
		require.NoError(t, err)

		_, err = c.Search(context.Background(), serplens.SearchRequest{Keyword: "espresso"})
		assert.Equal(t, serplens.EUNAVAILABLE, serplens.ErrorCode(err))
		assert.Contains(t, serplens.ErrorMessage(err), "Daily Limit Exceeded")
	})

	t.Run("unreachable endpoint", func(t *testing.T) {
		t.Parallel()

		c, err := google.NewClient("api-key", "cse-id", google.WithSearchBaseURL("http://127.0.0.1:1"))
		require.NoError(t, err)

		_, err = c.Search(context.Background(), serplens.SearchRequest{Keyword: "espresso"})
		assert.Equal(t, serplens.EUNAVAILABLE, serplens.ErrorCode(err))
	})
}

func TestClient_Entities(t *testing.T) {
	t.Parallel()

	t.Run("maps entities with mention counts", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/documents:analyzeEntities", r.URL.Path)
			assert.Equal(t, "api-key", r.URL.Query().Get("key"))

			var req struct {
				Document struct {
					Type    string `json:"type"`
					Content string `json:"content"`
				} `json:"document"`
				EncodingType string `json:"encodingType"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "PLAIN_TEXT", req.Document.Type)
			assert.Equal(t, "espresso machines grind beans", req.Document.Content)
			assert.Equal(t, "UTF8", req.EncodingType)

			w.Write([]byte(`{
				"entities": [
					{
						"name": "espresso machine",
						"type": "CONSUMER_GOOD",
						"salience": 0.81,
						"mentions": [{"text": {"content": "espresso machines"}, "type": "COMMON"}],
						"metadata": {"mid": "/m/02jz2b"}
					},
					{"name": "beans", "type": "OTHER", "salience": 0.19}
				]
			}`))
		}))
		defer srv.Close()

		c, err := google.NewClient("api-key", "cse-id", google.WithLanguageBaseURL(srv.URL))
		require.NoError(t, err)

		entities, err := c.Entities(context.Background(), "espresso machines grind beans")
		require.NoError(t, err)
		require.Len(t, entities, 2)
		assert.Equal(t, serplens.Entity{
			Name:             "espresso machine",
			Type:             "CONSUMER_GOOD",
			Salience:         0.81,
			Mentions:         1,
			KnowledgeGraphID: "/m/02jz2b",
		}, entities[0])
		assert.Equal(t, 0, entities[1].Mentions)
		assert.Empty(t, entities[1].KnowledgeGraphID)
	})

	t.Run("truncates oversized input", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				Document struct {
					Content string `json:"content"`
				} `json:"document"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Len(t, req.Document.Content, serplens.MaxLanguageInputLen)
			w.Write([]byte(`{"entities": []}`))
		}))
		defer srv.Close()

		c, err := google.NewClient("api-key", "cse-id", google.WithLanguageBaseURL(srv.URL))
		require.NoError(t, err)

		huge := make([]byte, serplens.MaxLanguageInputLen+100)
		for i := range huge {
			huge[i] = 'a'
		}
		_, err = c.Entities(context.Background(), string(huge))
		require.NoError(t, err)
	})

	t.Run("api error object", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error": {"code": 400, "message": "The language is not supported"}}`))
		}))
		defer srv.Close()

		c, err := google.NewClient("api-key", "cse-id", google.WithLanguageBaseURL(srv.URL))
		require.NoError(t, err)

		_, err = c.Entities(context.Background(), "text")
		assert.Equal(t, serplens.EUNAVAILABLE, serplens.ErrorCode(err))
		assert.Contains(t, serplens.ErrorMessage(err), "language is not supported")
	})
}

func TestClient_Sentiment(t *testing.T) {
	t.Parallel()

	t.Run("derives label from score", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/documents:analyzeSentiment", r.URL.Path)
			w.Write([]byte(`{"documentSentiment": {"score": 0.45, "magnitude": 2.1}}`))
		}))
		defer srv.Close()

		c, err := google.NewClient("api-key", "cse-id", google.WithLanguageBaseURL(srv.URL))
		require.NoError(t, err)

		sentiment, err := c.Sentiment(context.Background(), "great coffee")
		require.NoError(t, err)
		assert.Equal(t, &serplens.Sentiment{Score: 0.45, Magnitude: 2.1, Label: serplens.SentimentPositive}, sentiment)
	})

	t.Run("missing sentiment data", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		c, err := google.NewClient("api-key", "cse-id", google.WithLanguageBaseURL(srv.URL))
		require.NoError(t, err)

		_, err = c.Sentiment(context.Background(), "text")
		assert.Equal(t, serplens.EUNAVAILABLE, serplens.ErrorCode(err))
	})
}
