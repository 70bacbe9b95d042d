package serplens

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// commonEntityShare is the minimum fraction of pages an entity must appear
// on to count as common.
const commonEntityShare = 0.3

// Summary holds cross-page statistics over a set of competitor results.
type Summary struct {
	AvgWordCount   int      `json:"avgWordCount"`
	AvgTitleLength int      `json:"avgTitleLength"`
	CommonEntities []Entity `json:"commonEntities"`
	AvgSentiment   float64  `json:"avgSentiment"`
	TotalPages     int      `json:"totalPages"`
}

// Summarize computes cross-page statistics for a set of competitors.
//
// AvgWordCount averages only competitors with a positive word count;
// AvgTitleLength averages over all competitors, counting missing titles as
// zero length. CommonEntities groups entities case-insensitively by name,
// keeps those present on at least ceil(0.3*n) pages, and returns the top 10
// by mean salience. AvgSentiment is the mean of non-null scores rounded to
// two decimals.
func Summarize(competitors []*CompetitorResult) Summary {
	s := Summary{
		CommonEntities: []Entity{},
		TotalPages:     len(competitors),
	}

	var wordSum, wordN int
	var titleSum int
	var sentimentSum float64
	var sentimentN int

	type entityGroup struct {
		entityType    string
		count         int
		totalSalience float64
	}
	groups := make(map[string]*entityGroup)

	for _, c := range competitors {
		if c.WordCount > 0 {
			wordSum += c.WordCount
			wordN++
		}
		titleSum += len(c.Title)
		if c.Sentiment != nil {
			sentimentSum += *c.Sentiment
			sentimentN++
		}
		for _, e := range c.Entities {
			key := strings.ToLower(e.Name)
			g, ok := groups[key]
			if !ok {
				g = &entityGroup{entityType: e.Type}
				groups[key] = g
			}
			g.count++
			g.totalSalience += e.Salience
		}
	}

	if wordN > 0 {
		s.AvgWordCount = int(math.Round(float64(wordSum) / float64(wordN)))
	}
	if len(competitors) > 0 {
		s.AvgTitleLength = int(math.Round(float64(titleSum) / float64(len(competitors))))
	}
	if sentimentN > 0 {
		avg := sentimentSum / float64(sentimentN)
		s.AvgSentiment = math.Round(avg*100) / 100
	}

	threshold := int(math.Ceil(float64(len(competitors)) * commonEntityShare))
	for name, g := range groups {
		if g.count < threshold {
			continue
		}
		s.CommonEntities = append(s.CommonEntities, Entity{
			Name:     name,
			Type:     g.entityType,
			Salience: g.totalSalience / float64(g.count),
			Mentions: g.count,
		})
	}
	sort.Slice(s.CommonEntities, func(i, j int) bool {
		a, b := s.CommonEntities[i], s.CommonEntities[j]
		if a.Salience != b.Salience {
			return a.Salience > b.Salience
		}
		return a.Name < b.Name
	})
	if len(s.CommonEntities) > 10 {
		s.CommonEntities = s.CommonEntities[:10]
	}

	return s
}

// Recommend derives ordered, human-readable recommendations from a set of
// competitors. Each recommendation is conditional on the corresponding
// summary statistic.
func Recommend(competitors []*CompetitorResult, keyword string) []string {
	recommendations := []string{}
	summary := Summarize(competitors)

	if summary.AvgWordCount > 0 {
		recommendations = append(recommendations, fmt.Sprintf(
			"Target content length around %d words to match top-ranking competitors.",
			summary.AvgWordCount))
	}

	if summary.AvgTitleLength > 0 {
		if summary.AvgTitleLength < 50 || summary.AvgTitleLength > 60 {
			recommendations = append(recommendations, fmt.Sprintf(
				"Optimize title length to 50-60 characters. Current competitor average is %d characters.",
				summary.AvgTitleLength))
		} else {
			recommendations = append(recommendations, fmt.Sprintf(
				"Maintain title length around %d characters for optimal performance.",
				summary.AvgTitleLength))
		}
	}

	if len(summary.CommonEntities) > 0 {
		top := summary.CommonEntities
		if len(top) > 5 {
			top = top[:5]
		}
		names := make([]string, len(top))
		for i, e := range top {
			names[i] = e.Name
		}
		recommendations = append(recommendations, fmt.Sprintf(
			"Include high-value entities in your content: %s. These appear frequently in top-ranking pages.",
			strings.Join(names, ", ")))
	}

	if summary.AvgSentiment > 0.1 {
		recommendations = append(recommendations, fmt.Sprintf(
			"Maintain positive content tone. Top competitors show consistently positive sentiment (avg: %.2f).",
			summary.AvgSentiment))
	} else if summary.AvgSentiment < -0.1 {
		recommendations = append(recommendations,
			"Consider adopting a more positive content tone to match successful competitors.")
	}

	var structured int
	for _, c := range competitors {
		if len(c.StructuredData) > 0 {
			structured++
		}
	}
	if float64(structured) > float64(len(competitors))*0.5 {
		recommendations = append(recommendations, fmt.Sprintf(
			"Implement structured data markup. %d out of %d top competitors use structured data.",
			structured, len(competitors)))
	}

	return recommendations
}
