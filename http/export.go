package http

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/serplens/serplens"
)

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	projection, ok := s.findProjection(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("seo-analysis-%d.csv", projection.ID)))
	WriteCSV(w, projection)
}

// WriteCSV writes the competitor table of a projection in CSV form.
func WriteCSV(w io.Writer, projection *serplens.AnalysisProjection) error {
	cw := csv.NewWriter(w)
	cw.Write([]string{
		"Rank", "Domain", "URL", "Title", "Meta Description",
		"Word Count", "Title Length", "Sentiment Score", "Entity Count",
	})
	for _, c := range projection.Competitors {
		sentiment := 0.0
		if c.Sentiment != nil {
			sentiment = *c.Sentiment
		}
		cw.Write([]string{
			strconv.Itoa(c.Rank),
			c.Domain,
			c.URL,
			c.Title,
			c.MetaDescription,
			strconv.Itoa(c.WordCount),
			strconv.Itoa(len(c.Title)),
			strconv.FormatFloat(sentiment, 'g', -1, 64),
			strconv.Itoa(len(c.Entities)),
		})
	}
	cw.Flush()
	return cw.Error()
}

func (s *Server) handleExportJSON(w http.ResponseWriter, r *http.Request) {
	projection, ok := s.findProjection(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("seo-analysis-%d.json", projection.ID)))
	json.NewEncoder(w).Encode(projection)
}

func (s *Server) handleExportHTML(w http.ResponseWriter, r *http.Request) {
	projection, ok := s.findProjection(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/html")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("seo-analysis-report-%d.html", projection.ID)))
	if err := RenderReport(w, projection); err != nil {
		s.logger().Error("failed to render report", "id", projection.ID, "error", err)
	}
}

// RenderReport writes the self-contained HTML report for a projection.
func RenderReport(w io.Writer, projection *serplens.AnalysisProjection) error {
	return reportTemplate.Execute(w, reportData{
		AnalysisProjection: projection,
		Date:               time.Now().Format("2006-01-02"),
	})
}

// FullContentExport is the complete-content download, including the raw
// markup of every competitor page.
type FullContentExport struct {
	Keyword     string              `json:"keyword"`
	AnalysisID  int64               `json:"analysisId"`
	Country     string              `json:"country"`
	Language    string              `json:"language"`
	CreatedAt   string              `json:"createdAt"`
	Competitors []FullContentRecord `json:"competitors"`
}

// FullContentRecord is one competitor entry in the full-content export.
type FullContentRecord struct {
	Rank            int                      `json:"rank"`
	Domain          string                   `json:"domain"`
	URL             string                   `json:"url"`
	Title           string                   `json:"title"`
	MetaDescription string                   `json:"metaDescription"`
	Content         string                   `json:"content"`
	FullContent     string                   `json:"fullContent"`
	WordCount       int                      `json:"wordCount"`
	Headings        []serplens.Heading       `json:"headings"`
	StyledElements  serplens.StyledElements  `json:"styledElements"`
	Entities        []serplens.Entity        `json:"entities"`
	Images          []serplens.Image         `json:"images"`
	Links           serplens.LinkCounts      `json:"links"`
	StructuredData  []map[string]any         `json:"structuredData"`
}

func (s *Server) handleExportFullContent(w http.ResponseWriter, r *http.Request) {
	projection, ok := s.findProjection(w, r)
	if !ok {
		return
	}

	export := NewFullContentExport(projection)
	filename := fmt.Sprintf("full-content-%s-%d.json", strings.ReplaceAll(projection.Keyword, " ", "-"), projection.ID)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	json.NewEncoder(w).Encode(export)
}

// NewFullContentExport assembles the complete-content download document,
// including the raw markup of every competitor page.
func NewFullContentExport(projection *serplens.AnalysisProjection) *FullContentExport {
	export := &FullContentExport{
		Keyword:    projection.Keyword,
		AnalysisID: projection.ID,
		Country:    projection.Country,
		Language:   projection.Language,
		CreatedAt:  projection.CreatedAt,
	}
	for _, c := range projection.Competitors {
		export.Competitors = append(export.Competitors, FullContentRecord{
			Rank:            c.Rank,
			Domain:          c.Domain,
			URL:             c.URL,
			Title:           c.Title,
			MetaDescription: c.MetaDescription,
			Content:         c.Content,
			FullContent:     c.FullContent,
			WordCount:       c.WordCount,
			Headings:        c.Headings,
			StyledElements:  c.StyledElements,
			Entities:        c.Entities,
			Images:          c.Images,
			Links:           c.Links,
			StructuredData:  c.StructuredData,
		})
	}
	return export
}

type reportData struct {
	*serplens.AnalysisProjection
	Date string
}

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>SEO Competitor Analysis Report - {{.Keyword}}</title>
<style>
body { font-family: -apple-system, 'Segoe UI', Roboto, Arial, sans-serif; line-height: 1.6; color: #333; background: #f8fafc; padding: 20px; }
.container { max-width: 1200px; margin: 0 auto; background: white; border-radius: 12px; overflow: hidden; }
.header { background: #667eea; color: white; padding: 40px; text-align: center; }
.summary { display: grid; grid-template-columns: repeat(auto-fit, minmax(200px, 1fr)); gap: 20px; padding: 30px; background: #f8fafc; }
.summary-card { background: white; padding: 25px; border-radius: 8px; text-align: center; }
.summary-card .value { font-size: 2rem; font-weight: bold; }
.content { padding: 30px; }
.competitor { border: 1px solid #e2e8f0; border-radius: 8px; margin-bottom: 20px; padding: 20px; }
.rank { display: inline-block; background: #667eea; color: white; width: 24px; height: 24px; border-radius: 50%; text-align: center; line-height: 24px; font-weight: bold; margin-right: 10px; }
.domain { color: #718096; font-size: 0.9rem; }
.heading-tag { background: #667eea; color: white; padding: 2px 8px; border-radius: 4px; font-size: 0.7rem; font-weight: bold; margin-right: 8px; }
.entity { display: inline-block; background: #e6fffa; color: #234e52; padding: 4px 12px; border-radius: 20px; font-size: 0.8rem; margin: 2px; }
.recommendation { background: white; padding: 15px; border-radius: 6px; margin-bottom: 10px; border-left: 4px solid #667eea; }
.footer { text-align: center; padding: 30px; color: #718096; background: #f7fafc; }
</style>
</head>
<body>
<div class="container">
<div class="header">
<h1>SEO Competitor Analysis Report</h1>
<p>Keyword: "{{.Keyword}}" | Country: {{.Country}} | Language: {{.Language}}</p>
<p>Generated on {{.Date}}</p>
</div>
<div class="summary">
<div class="summary-card"><h3>Average Word Count</h3><div class="value">{{.Summary.AvgWordCount}}</div></div>
<div class="summary-card"><h3>Average Title Length</h3><div class="value">{{.Summary.AvgTitleLength}}</div></div>
<div class="summary-card"><h3>Common Entities</h3><div class="value">{{len .Summary.CommonEntities}}</div></div>
<div class="summary-card"><h3>Pages Analyzed</h3><div class="value">{{.Summary.TotalPages}}</div></div>
</div>
<div class="content">
<h2>Top 10 Competitor Analysis</h2>
{{range .Competitors}}
<div class="competitor">
<span class="rank">{{.Rank}}</span>
<strong>{{if .Title}}{{.Title}}{{else}}No title found{{end}}</strong>
<div class="domain">{{.Domain}}</div>
<p>{{.WordCount}} words | title length {{len .Title}} | {{len .Entities}} entities | {{len .Headings}} headings</p>
<p><strong>Meta Description:</strong> {{if .MetaDescription}}{{.MetaDescription}}{{else}}No meta description found{{end}}</p>
{{if .Headings}}<div>{{range .Headings}}<div><span class="heading-tag">H{{.Level}}</span>{{.Text}}</div>{{end}}</div>{{end}}
{{if .Entities}}<div>{{range .Entities}}<span class="entity">{{.Name}}</span>{{end}}</div>{{end}}
</div>
{{end}}
{{if .Summary.CommonEntities}}
<h2>Most Common Entities</h2>
<div>{{range .Summary.CommonEntities}}<span class="entity">{{.Name}} ({{printf "%.2f" .Salience}})</span>{{end}}</div>
{{end}}
{{if .Recommendations}}
<h3>SEO Recommendations</h3>
{{range .Recommendations}}<div class="recommendation">{{.}}</div>{{end}}
{{end}}
</div>
<div class="footer">
<p>Analysis ID: {{.ID}} | Generated on {{.Date}}</p>
</div>
</div>
</body>
</html>`))
