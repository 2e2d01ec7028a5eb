package cohere

import (
	"context"
	"fmt"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
)

type Client struct {
	client      *cohereclient.Client
	rerankModel string
}

type RerankResult struct {
	Index int
	Score float64
}

func NewClient(apiKey, rerankModel string) *Client {
	client := cohereclient.NewClient(cohereclient.WithToken(apiKey))
	return &Client{
		client:      client,
		rerankModel: rerankModel,
	}
}

func (c *Client) Rerank(ctx context.Context, query string, documents []string, topN int) ([]RerankResult, error) {
	if len(documents) == 0 {
		return nil, nil
	}

	resp, err := c.client.V2.Rerank(ctx, &cohere.V2RerankRequest{
		Model:     c.rerankModel,
		Query:     query,
		Documents: documents,
		TopN:      &topN,
	})
	if err != nil {
		return nil, fmt.Errorf("rerank request failed: %w", err)
	}

	results := make([]RerankResult, len(resp.Results))
	for i, r := range resp.Results {
		results[i] = RerankResult{
			Index: r.Index,
			Score: r.RelevanceScore,
		}
	}

	return results, nil
}

// Rank orders documents by relevance to query and returns their indexes,
// most relevant first. Every index appears exactly once.
func (c *Client) Rank(ctx context.Context, query string, documents []string) ([]int, error) {
	results, err := c.Rerank(ctx, query, documents, len(documents))
	if err != nil {
		return nil, err
	}
	return completeOrder(results, len(documents)), nil
}

// completeOrder turns rerank results into a full permutation: indexes the
// service skipped or repeated are appended in their original order.
func completeOrder(results []RerankResult, n int) []int {
	order := make([]int, 0, n)
	seen := make([]bool, n)
	for _, r := range results {
		if r.Index < 0 || r.Index >= n || seen[r.Index] {
			continue
		}
		seen[r.Index] = true
		order = append(order, r.Index)
	}
	for i := 0; i < n; i++ {
		if !seen[i] {
			order = append(order, i)
		}
	}
	return order
}
