package gemini_test

import (
	"context"
	"testing"

	"github.com/serplens/serplens"
	"github.com/serplens/serplens/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLanguage_Entities_ReturnsErrorWhenTextEmpty(t *testing.T) {
	t.Parallel()

	lang := gemini.NewLanguage(nil) // nil client ok for this test

	_, err := lang.Entities(context.Background(), "")

	require.Error(t, err)
	assert.Equal(t, serplens.EINVALID, serplens.ErrorCode(err))
	assert.Contains(t, serplens.ErrorMessage(err), "text required")
}

func TestLanguage_Sentiment_ReturnsErrorWhenTextEmpty(t *testing.T) {
	t.Parallel()

	lang := gemini.NewLanguage(nil)

	_, err := lang.Sentiment(context.Background(), "")

	require.Error(t, err)
	assert.Equal(t, serplens.EINVALID, serplens.ErrorCode(err))
}

func TestBuildEntitiesConfig_ConstrainsResponse(t *testing.T) {
	t.Parallel()

	config := gemini.BuildEntitiesConfig()

	require.NotNil(t, config.SystemInstruction)
	require.Len(t, config.SystemInstruction.Parts, 1)
	assert.Contains(t, config.SystemInstruction.Parts[0].Text, "entity extraction")
	assert.Equal(t, "application/json", config.ResponseMIMEType)
	require.NotNil(t, config.ResponseSchema)
	require.NotNil(t, config.ResponseSchema.Items)
	assert.Contains(t, config.ResponseSchema.Items.Required, "salience")
}

func TestBuildSentimentConfig_ConstrainsResponse(t *testing.T) {
	t.Parallel()

	config := gemini.BuildSentimentConfig()

	require.NotNil(t, config.SystemInstruction)
	assert.Equal(t, "application/json", config.ResponseMIMEType)
	require.NotNil(t, config.ResponseSchema)
	assert.Contains(t, config.ResponseSchema.Required, "score")
	assert.Contains(t, config.ResponseSchema.Required, "magnitude")
}

func TestBuildEntitiesPrompt_ContainsText(t *testing.T) {
	t.Parallel()

	prompt := gemini.BuildEntitiesPrompt("espresso machines are popular")

	assert.Contains(t, prompt, "<text>")
	assert.Contains(t, prompt, "espresso machines are popular")
	assert.Contains(t, prompt, "</text>")
}

func TestParseEntities(t *testing.T) {
	t.Parallel()

	t.Run("decodes entity array", func(t *testing.T) {
		t.Parallel()

		entities, err := gemini.ParseEntities(`[
			{"name": "Espresso", "type": "CONSUMER_GOOD", "salience": 0.7, "mentions": 3},
			{"name": "Italy", "type": "LOCATION", "salience": 0.3, "mentions": 1}
		]`)
		require.NoError(t, err)
		require.Len(t, entities, 2)
		assert.Equal(t, serplens.Entity{Name: "Espresso", Type: "CONSUMER_GOOD", Salience: 0.7, Mentions: 3}, entities[0])
	})

	t.Run("empty array", func(t *testing.T) {
		t.Parallel()

		entities, err := gemini.ParseEntities(`[]`)
		require.NoError(t, err)
		assert.NotNil(t, entities)
		assert.Empty(t, entities)
	})

	t.Run("malformed response", func(t *testing.T) {
		t.Parallel()

		_, err := gemini.ParseEntities(`not json`)
		assert.Equal(t, serplens.EINTERNAL, serplens.ErrorCode(err))
	})
}

func TestParseSentiment(t *testing.T) {
	t.Parallel()

	t.Run("labels positive scores", func(t *testing.T) {
		t.Parallel()

		sentiment, err := gemini.ParseSentiment(`{"score": 0.6, "magnitude": 1.4}`)
		require.NoError(t, err)
		assert.Equal(t, &serplens.Sentiment{Score: 0.6, Magnitude: 1.4, Label: serplens.SentimentPositive}, sentiment)
	})

	t.Run("labels scores near zero neutral", func(t *testing.T) {
		t.Parallel()

		sentiment, err := gemini.ParseSentiment(`{"score": -0.05, "magnitude": 0.2}`)
		require.NoError(t, err)
		assert.Equal(t, serplens.SentimentNeutral, sentiment.Label)
	})

	t.Run("malformed response", func(t *testing.T) {
		t.Parallel()

		_, err := gemini.ParseSentiment(`not json`)
		assert.Equal(t, serplens.EINTERNAL, serplens.ErrorCode(err))
	})
}
