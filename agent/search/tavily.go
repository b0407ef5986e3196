// Package search binds the Tavily client to the lookup contract consumed by
// the research skill.
package search

import (
	"context"
	"fmt"

	contractx "github.com/avamind/ava-core/agent/contract"
	tavilyx "github.com/avamind/ava-core/pkg/tavily"
)

// TavilyBackend adapts the Tavily REST client to the SearchClient contract.
type TavilyBackend struct {
	client *tavilyx.Client
}

func NewTavilyBackend(client *tavilyx.Client) *TavilyBackend {
	return &TavilyBackend{client: client}
}

var _ contractx.SearchClient = (*TavilyBackend)(nil)

func (b *TavilyBackend) Search(ctx context.Context, query string) (contractx.SearchAnswer, error) {
	result, err := b.client.Search(ctx, query)
	if err != nil {
		return contractx.SearchAnswer{}, fmt.Errorf("%w: %v", contractx.ErrSearchUnavailable, err)
	}
	return contractx.SearchAnswer{Answer: result.Answer, SourceURL: result.SourceURL}, nil
}
