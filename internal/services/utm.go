// filepath: internal/services/utm.go
package services

import (
	"net/url"
	"strings"

	"adreel/internal/models"
)

// UTMParams holds the attribution tags appended to a tracked link.
type UTMParams struct {
	Source   string
	Medium   string
	Campaign string
	Content  string
	Term     string
}

// BuildUTMURL appends the non-empty params to base's query in a fixed order.
// Any fragment stays at the end. A base that does not parse is extended as plain text.
func BuildUTMURL(base string, p UTMParams) string {
	pairs := [][2]string{
		{"utm_source", p.Source},
		{"utm_medium", p.Medium},
		{"utm_campaign", p.Campaign},
		{"utm_content", p.Content},
		{"utm_term", p.Term},
	}

	var parts []string
	for _, kv := range pairs {
		if kv[1] == "" {
			continue
		}
		parts = append(parts, kv[0]+"="+url.QueryEscape(kv[1]))
	}
	if len(parts) == 0 {
		return base
	}
	tags := strings.Join(parts, "&")

	u, err := url.Parse(base)
	if err != nil {
		if _, query, ok := strings.Cut(base, "?"); ok {
			return base[:len(base)-len(query)] + joinQuery(query, tags)
		}
		return base + "?" + tags
	}
	u.RawQuery = joinQuery(u.RawQuery, tags)
	u.ForceQuery = false
	return u.String()
}

func joinQuery(query, tags string) string {
	if query == "" || strings.HasSuffix(query, "&") {
		return query + tags
	}
	return query + "&" + tags
}

// PickWinner returns the variant with the highest ROAS. Ties go to the later variant.
func PickWinner(variants []models.Variant) (models.Variant, bool) {
	if len(variants) == 0 {
		return models.Variant{}, false
	}
	best := 0
	for i := 1; i < len(variants); i++ {
		if variants[i].ROAS >= variants[best].ROAS {
			best = i
		}
	}
	return variants[best], true
}

func markWinners(experiments []models.Experiment) {
	for i := range experiments {
		if w, ok := PickWinner(experiments[i].Variants); ok {
			experiments[i].WinnerVariantID = w.ID
		}
	}
}
