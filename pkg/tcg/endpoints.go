package tcg

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	// DefaultBaseURL is the card database site
	DefaultBaseURL = "https://llofficial-cardgame.com/"

	// CardListEndpoint is the page listing all expansions
	CardListEndpoint = "cardlist/"

	// CardSearchEndpoint returns one page of card search results for an expansion
	CardSearchEndpoint = "cardlist/cardsearch_ex"

	// CardDetailEndpoint serves one card's detail page (POST with cardno form data)
	CardDetailEndpoint = "cardlist/detail/"
)

// Endpoints builds request URLs relative to a configurable base
type Endpoints struct {
	base string
}

// NewEndpoints creates an endpoint builder. An empty base falls back to
// the default site.
func NewEndpoints(base string) *Endpoints {
	if base == "" {
		base = DefaultBaseURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return &Endpoints{base: base}
}

// BaseURL returns the configured base URL
func (e *Endpoints) BaseURL() string {
	return e.base
}

// CardListURL returns the URL of the expansion list page
func (e *Endpoints) CardListURL() string {
	return e.base + CardListEndpoint
}

// CardSearchURL returns the URL for one page of an expansion's card search
func (e *Endpoints) CardSearchURL(expansion string, page int) string {
	params := url.Values{}
	params.Set("expansion", expansion)
	params.Set("page", fmt.Sprintf("%d", page))
	return fmt.Sprintf("%s%s?%s", e.base, CardSearchEndpoint, params.Encode())
}

// CardDetailURL returns the URL of the card detail endpoint
func (e *Endpoints) CardDetailURL() string {
	return e.base + CardDetailEndpoint
}

// Resolve makes a possibly-relative href absolute against the base URL
func (e *Endpoints) Resolve(href string) string {
	base, err := url.Parse(e.base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
