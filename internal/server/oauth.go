package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunesync/internal/models"
	"github.com/desertthunder/tunesync/internal/shared"
	"golang.org/x/oauth2"
)

// Exchanger trades an authorization code for a token. Platform adapters implement it.
type Exchanger interface {
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
}

// OAuthResult contains the result of an OAuth authorization flow.
type OAuthResult struct {
	Platform models.Platform
	Token    *oauth2.Token
	Err      error
}

// OAuthHandler handles the authorization code callback for one platform.
//
// It validates the state parameter, exchanges the code and sends exactly one result.
// Later callbacks are rejected.
type OAuthHandler struct {
	platform  models.Platform
	exchanger Exchanger
	state     string

	resultChan chan OAuthResult
	once       sync.Once
	mu         sync.Mutex
	handled    bool
}

// NewOAuthHandler creates a handler for platform. state should be unguessable.
func NewOAuthHandler(platform models.Platform, exchanger Exchanger, state string) *OAuthHandler {
	return &OAuthHandler{
		platform:   platform,
		exchanger:  exchanger,
		state:      state,
		resultChan: make(chan OAuthResult, 1),
	}
}

// CallbackPath returns the callback path for platform.
func CallbackPath(platform models.Platform) string {
	return "/callback/" + platform.String()
}

// Routes returns the HTTP routes this handler serves.
func (h *OAuthHandler) Routes() []string {
	return []string{CallbackPath(h.platform)}
}

var successPage = template.Must(template.New("success").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>tunesync</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #1DB954; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>{{.}} connected</h1>
        <p>You can close this window and return to the terminal.</p>
    </div>
</body>
</html>
`))

// ServeHTTP handles the OAuth callback request.
func (h *OAuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.handled {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.handled = true
	h.mu.Unlock()

	query := r.URL.Query()

	if query.Get("state") != h.state {
		h.Send(OAuthResult{Err: fmt.Errorf("%w: invalid state parameter", shared.ErrAuthFailed)})
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	code := query.Get("code")
	if code == "" {
		err := fmt.Errorf("%w: %s %s", shared.ErrAuthFailed, query.Get("error"), query.Get("error_description"))
		h.Send(OAuthResult{Err: err})
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	token, err := h.exchanger.Exchange(r.Context(), code)
	if err != nil {
		h.Send(OAuthResult{Err: err})
		http.Error(w, "Token exchange failed", http.StatusInternalServerError)
		return
	}

	h.Send(OAuthResult{Token: token})

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	successPage.Execute(w, h.platform.Title())
}

// Send delivers the result; only the first call has an effect.
func (h *OAuthHandler) Send(result OAuthResult) {
	h.once.Do(func() {
		result.Platform = h.platform
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns a channel that receives exactly one result and is then closed.
func (h *OAuthHandler) Result() <-chan OAuthResult {
	return h.resultChan
}

// CallbackServer serves an [OAuthHandler] on a local listener until the flow completes.
type CallbackServer struct {
	handler *OAuthHandler
	ln      net.Listener
	srv     *http.Server
	errs    chan error
	logger  *log.Logger
}

// StartCallbackServer listens on addr and serves handler in the background.
// Use "127.0.0.1:0" to pick a free port.
func StartCallbackServer(addr string, handler *OAuthHandler, logger *log.Logger) (*CallbackServer, error) {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	router := NewBasicRouter()
	router.Use(Logging(logger))
	router.Handler(handler)

	s := &CallbackServer{
		handler: handler,
		ln:      ln,
		srv:     &http.Server{Handler: router, ReadHeaderTimeout: 10 * time.Second},
		errs:    make(chan error, 1),
		logger:  logger,
	}

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.errs <- err
		}
	}()

	logger.Info("started OAuth callback server", "addr", ln.Addr().String(), "path", CallbackPath(handler.platform))
	return s, nil
}

// Addr returns the address the server listens on.
func (s *CallbackServer) Addr() string {
	return s.ln.Addr().String()
}

// Wait blocks until a callback result arrives, the server fails or ctx is done, then shuts the server down.
func (s *CallbackServer) Wait(ctx context.Context) (*oauth2.Token, error) {
	defer s.shutdown()

	select {
	case result := <-s.handler.Result():
		if result.Err != nil {
			return nil, result.Err
		}
		if result.Token == nil {
			return nil, fmt.Errorf("%w: no token received", shared.ErrAuthFailed)
		}
		return result.Token, nil
	case err := <-s.errs:
		return nil, fmt.Errorf("callback server error: %w", err)
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: authorization was not completed in time", shared.ErrTimeout)
		}
		return nil, ctx.Err()
	}
}

func (s *CallbackServer) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		s.logger.Warn("error shutting down callback server", "error", err)
	}
}
