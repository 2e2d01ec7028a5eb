package kb

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/mgomes/weavesearch/internal/result"
)

type queryResponse struct {
	MatchingResults int           `json:"matching_results"`
	Results         []queryResult `json:"results"`
}

type queryResult struct {
	ID                string `json:"id"`
	Text              string `json:"text"`
	HTML              string `json:"html"`
	ExtractedMetadata struct {
		Filename string `json:"filename"`
		Title    string `json:"title"`
	} `json:"extracted_metadata"`
}

// Parse converts a raw query response into a mapping from document name to
// content. A nil response (the retrieval failure sentinel) is an error.
// Results are ranked, so on a duplicate name the first one is kept.
func Parse(raw json.RawMessage) (result.Mapping, error) {
	if raw == nil || string(raw) == "null" {
		return nil, ErrNoResponse
	}

	var resp queryResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	m := make(result.Mapping, len(resp.Results))
	for _, r := range resp.Results {
		key := resultKey(r)
		if key == "" {
			continue
		}
		if _, seen := m[key]; seen {
			continue
		}

		body, err := resultBody(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read body of %s: %w", key, err)
		}
		m[key] = body
	}

	return m, nil
}

func resultKey(r queryResult) string {
	switch {
	case r.ExtractedMetadata.Filename != "":
		return r.ExtractedMetadata.Filename
	case r.ExtractedMetadata.Title != "":
		return r.ExtractedMetadata.Title
	default:
		return r.ID
	}
}

func resultBody(r queryResult) (string, error) {
	if r.Text != "" || r.HTML == "" {
		return r.Text, nil
	}
	return htmlText(r.HTML)
}

// htmlText flattens an HTML fragment into paragraphs of plain text.
func htmlText(fragment string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", err
	}
	doc.Find("script, style").Remove()

	var blocks []string
	doc.Find("h1, h2, h3, h4, h5, h6, p, li, pre").Each(func(_ int, s *goquery.Selection) {
		if s.ParentsFiltered("p, li, pre").Length() > 0 {
			return
		}
		if text := strings.TrimSpace(s.Text()); text != "" {
			blocks = append(blocks, text)
		}
	})

	if len(blocks) == 0 {
		return strings.TrimSpace(doc.Text()), nil
	}
	return strings.Join(blocks, "\n\n"), nil
}
