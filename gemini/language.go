// Package gemini implements the language-analysis service using Google
// Gemini. It is an alternative to the Natural Language provider for
// deployments that only carry a Gemini API key.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/serplens/serplens"
	"google.golang.org/genai"
)

const model = "gemini-2.5-flash"

// Ensure Language implements serplens.LanguageService at compile time.
var _ serplens.LanguageService = (*Language)(nil)

// Language implements serplens.LanguageService using Google Gemini.
type Language struct {
	client *genai.Client
}

// NewLanguage creates a new Language service.
func NewLanguage(client *genai.Client) *Language {
	return &Language{client: client}
}

// Entities extracts named entities from text.
func (l *Language) Entities(ctx context.Context, text string) ([]serplens.Entity, error) {
	if text == "" {
		return nil, serplens.Errorf(serplens.EINVALID, "text required")
	}

	result, err := l.client.Models.GenerateContent(ctx, model,
		[]*genai.Content{{
			Parts: []*genai.Part{{Text: BuildEntitiesPrompt(text)}},
		}},
		BuildEntitiesConfig(),
	)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, serplens.Errorf(serplens.EINTERNAL, "gemini returned nil result")
	}

	return ParseEntities(result.Text())
}

// Sentiment measures document-level sentiment of text.
func (l *Language) Sentiment(ctx context.Context, text string) (*serplens.Sentiment, error) {
	if text == "" {
		return nil, serplens.Errorf(serplens.EINVALID, "text required")
	}

	result, err := l.client.Models.GenerateContent(ctx, model,
		[]*genai.Content{{
			Parts: []*genai.Part{{Text: BuildSentimentPrompt(text)}},
		}},
		BuildSentimentConfig(),
	)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, serplens.Errorf(serplens.EINTERNAL, "gemini returned nil result")
	}

	return ParseSentiment(result.Text())
}

// BuildEntitiesConfig returns the GenerateContentConfig for entity
// extraction. The response schema constrains output to an entity array.
func BuildEntitiesConfig() *genai.GenerateContentConfig {
	temp := float32(0.1)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{
				Text: "You are a named-entity extraction engine. Extract the salient entities from the provided text. Salience is the relative importance of the entity within the text, between 0 and 1, and salience values should sum to at most 1. Mentions is the number of times the entity appears.",
			}},
		},
		Temperature:      &temp,
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"name":     {Type: genai.TypeString},
					"type":     {Type: genai.TypeString, Description: "One of PERSON, LOCATION, ORGANIZATION, EVENT, WORK_OF_ART, CONSUMER_GOOD, OTHER."},
					"salience": {Type: genai.TypeNumber},
					"mentions": {Type: genai.TypeInteger},
				},
				Required: []string{"name", "type", "salience", "mentions"},
			},
		},
	}
}

// BuildSentimentConfig returns the GenerateContentConfig for sentiment
// analysis.
func BuildSentimentConfig() *genai.GenerateContentConfig {
	temp := float32(0.1)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{
				Text: "You are a sentiment analysis engine. Score the overall sentiment of the provided text between -1 (clearly negative) and 1 (clearly positive). Magnitude is the overall strength of emotion, 0 or greater, regardless of polarity.",
			}},
		},
		Temperature:      &temp,
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"score":     {Type: genai.TypeNumber},
				"magnitude": {Type: genai.TypeNumber},
			},
			Required: []string{"score", "magnitude"},
		},
	}
}

// BuildEntitiesPrompt builds the user prompt for entity extraction.
func BuildEntitiesPrompt(text string) string {
	return fmt.Sprintf("<text>\n%s\n</text>\n\nExtract the named entities.", serplens.TruncateForLanguage(text))
}

// BuildSentimentPrompt builds the user prompt for sentiment analysis.
func BuildSentimentPrompt(text string) string {
	return fmt.Sprintf("<text>\n%s\n</text>\n\nScore the sentiment.", serplens.TruncateForLanguage(text))
}

// ParseEntities decodes a model response into entities.
func ParseEntities(response string) ([]serplens.Entity, error) {
	var entities []serplens.Entity
	if err := json.Unmarshal([]byte(response), &entities); err != nil {
		return nil, serplens.Errorf(serplens.EINTERNAL, "failed to decode entity response: %v", err)
	}
	if entities == nil {
		entities = []serplens.Entity{}
	}
	return entities, nil
}

// ParseSentiment decodes a model response into a labeled sentiment.
func ParseSentiment(response string) (*serplens.Sentiment, error) {
	var body struct {
		Score     float64 `json:"score"`
		Magnitude float64 `json:"magnitude"`
	}
	if err := json.Unmarshal([]byte(response), &body); err != nil {
		return nil, serplens.Errorf(serplens.EINTERNAL, "failed to decode sentiment response: %v", err)
	}
	return &serplens.Sentiment{
		Score:     body.Score,
		Magnitude: body.Magnitude,
		Label:     serplens.SentimentLabelForScore(body.Score),
	}, nil
}
