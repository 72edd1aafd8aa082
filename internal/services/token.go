package services

import (
	"context"
	"net/http"
	"sync"

	"golang.org/x/oauth2"
)

// TokenCallback receives tokens issued or refreshed by an adapter so they can be persisted.
type TokenCallback func(token *oauth2.Token)

// refreshableTokenSource wraps an [oauth2.TokenSource] and reports every new access token.
type refreshableTokenSource struct {
	source   oauth2.TokenSource
	callback TokenCallback

	mu   sync.Mutex
	last string
}

func (s *refreshableTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.source.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	changed := token.AccessToken != s.last
	s.last = token.AccessToken
	s.mu.Unlock()

	if changed && s.callback != nil {
		s.callback(token)
	}
	return token, nil
}

// newTokenSource returns a refreshing source for token. Refresh requests go through httpClient,
// and callback only fires once the access token differs from the one given.
func newTokenSource(config *oauth2.Config, token *oauth2.Token, callback TokenCallback, httpClient *http.Client) oauth2.TokenSource {
	ctx := context.Background()
	if httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
	}
	return &refreshableTokenSource{
		source:   config.TokenSource(ctx, token),
		callback: callback,
		last:     token.AccessToken,
	}
}
