// Package serplens analyzes the competitive landscape for a search keyword.
// It fetches the top-ranking pages for a query, extracts on-page signals
// (content length, headings, entities, sentiment, structured data), and
// aggregates them into a statistical summary with actionable
// recommendations.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, goquery/, google/).
package serplens
