package serplens

// CompetitorResult represents one scraped and analyzed competing page
// within an Analysis. Results are created once per successfully scraped
// competitor and never updated.
type CompetitorResult struct {
	ID         int64 `json:"id"`
	AnalysisID int64 `json:"analysisId"`

	// Rank is the 1-based position in the original search results.
	// Pages that failed to scrape leave holes; ranks are never renumbered.
	Rank int `json:"rank"`

	URL             string `json:"url"`
	Domain          string `json:"domain"`
	Title           string `json:"title"`
	MetaDescription string `json:"metaDescription"`

	// Content is the cleaned main-body text; FullContent is the raw
	// serialized markup as fetched.
	Content     string `json:"content"`
	FullContent string `json:"fullContent"`
	ContentHash string `json:"contentHash"`
	WordCount   int    `json:"wordCount"`

	Entities       []Entity         `json:"entities"`
	Sentiment      *float64         `json:"sentiment"`
	Headings       []Heading        `json:"headings"`
	Images         []Image          `json:"images"`
	Links          LinkCounts       `json:"links"`
	StructuredData []map[string]any `json:"structuredData"`
	StyledElements StyledElements   `json:"styledElements"`
}

// Validate returns an error if the result contains invalid fields.
func (r *CompetitorResult) Validate() error {
	if r.AnalysisID == 0 {
		return Errorf(EINVALID, "competitor result analysis ID required")
	}
	if r.Rank < 1 {
		return Errorf(EINVALID, "competitor result rank must be positive")
	}
	if r.URL == "" {
		return Errorf(EINVALID, "competitor result URL required")
	}
	return nil
}

// Entity is a named entity extracted from page content by a language
// provider. Salience is the provider-assigned relative importance (0-1).
type Entity struct {
	Name             string  `json:"name"`
	Type             string  `json:"type"`
	Salience         float64 `json:"salience"`
	Mentions         int     `json:"mentions"`
	KnowledgeGraphID string  `json:"knowledgeGraphId,omitempty"`
}

// SentimentLabel classifies a sentiment score.
type SentimentLabel string

// Sentiment label values.
const (
	SentimentPositive SentimentLabel = "positive"
	SentimentNeutral  SentimentLabel = "neutral"
	SentimentNegative SentimentLabel = "negative"
)

// SentimentLabelForScore derives the label from a score. Scores strictly
// above 0.1 are positive, strictly below -0.1 negative, all else neutral.
func SentimentLabelForScore(score float64) SentimentLabel {
	switch {
	case score > 0.1:
		return SentimentPositive
	case score < -0.1:
		return SentimentNegative
	}
	return SentimentNeutral
}

// Sentiment is a document-level sentiment measurement.
type Sentiment struct {
	Score     float64        `json:"score"`     // -1..1
	Magnitude float64        `json:"magnitude"` // >= 0
	Label     SentimentLabel `json:"label"`
}

// Heading is one heading element in document order.
type Heading struct {
	Level int    `json:"level"` // 1-6
	Text  string `json:"text"`
}

// Image is one image element with a resolvable source.
type Image struct {
	Src string `json:"src"`
	Alt string `json:"alt"`
}

// LinkCounts classifies a page's hyperlinks.
type LinkCounts struct {
	Internal int `json:"internal"`
	External int `json:"external"`
}

// StyledText is the cleaned text of one emphasis/strong/italic element.
type StyledText struct {
	Tag  string `json:"tag"`
	Text string `json:"text"`
}

// StyledElements groups styled-text spans by markup kind.
type StyledElements struct {
	Emphasis []StyledText `json:"emphasis"`
	Strong   []StyledText `json:"strong"`
	Italic   []StyledText `json:"italic"`
}
