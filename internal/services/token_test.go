package services

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/oauth2"
)

func TestRefreshableTokenSource(t *testing.T) {
	t.Run("calls callback on first token fetch", func(t *testing.T) {
		var captured *oauth2.Token
		source := &refreshableTokenSource{
			source:   &mockTokenSource{token: &oauth2.Token{AccessToken: "test_token"}},
			callback: func(token *oauth2.Token) { captured = token },
		}

		token, err := source.Token()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if captured == nil || captured.AccessToken != "test_token" {
			t.Errorf("expected captured token 'test_token', got %v", captured)
		}
		if token.AccessToken != "test_token" {
			t.Errorf("expected returned token 'test_token', got %s", token.AccessToken)
		}
	})

	t.Run("calls callback when token changes", func(t *testing.T) {
		var captured []string
		mock := &mockTokenSource{token: &oauth2.Token{AccessToken: "token1"}}
		source := &refreshableTokenSource{
			source:   mock,
			callback: func(token *oauth2.Token) { captured = append(captured, token.AccessToken) },
		}

		_, _ = source.Token()
		mock.token = &oauth2.Token{AccessToken: "token2"}
		_, _ = source.Token()
		_, _ = source.Token()

		if len(captured) != 2 || captured[0] != "token1" || captured[1] != "token2" {
			t.Errorf("expected [token1 token2], got %v", captured)
		}
	})

	t.Run("skips the token it was created with", func(t *testing.T) {
		calls := 0
		config := &oauth2.Config{}
		source := newTokenSource(config, &oauth2.Token{AccessToken: "stored"}, func(*oauth2.Token) { calls++ }, nil)

		token, err := source.Token()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if token.AccessToken != "stored" {
			t.Errorf("expected stored token, got %s", token.AccessToken)
		}
		if calls != 0 {
			t.Errorf("expected no callback for the stored token, got %d", calls)
		}
	})

	t.Run("handles nil callback", func(t *testing.T) {
		source := &refreshableTokenSource{source: &mockTokenSource{token: &oauth2.Token{AccessToken: "test_token"}}}

		token, err := source.Token()
		if err != nil {
			t.Fatalf("expected no error with nil callback, got %v", err)
		}
		if token.AccessToken != "test_token" {
			t.Error("expected token to be returned despite nil callback")
		}
	})

	t.Run("propagates source errors", func(t *testing.T) {
		source := &refreshableTokenSource{
			source:   &mockTokenSource{err: errors.New("token source error")},
			callback: func(*oauth2.Token) { t.Error("callback should not be called on error") },
		}

		token, err := source.Token()
		if err == nil || !strings.Contains(err.Error(), "token source error") {
			t.Errorf("expected source error, got %v", err)
		}
		if token != nil {
			t.Error("expected nil token on error")
		}
	})
}

// mockTokenSource implements [oauth2.TokenSource] for testing
type mockTokenSource struct {
	token *oauth2.Token
	err   error
}

func (m *mockTokenSource) Token() (*oauth2.Token, error) {
	return m.token, m.err
}
