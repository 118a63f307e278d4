package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/sheets/v4"
)

// AuthFlow obtains an OAuth2 refresh token for the Sheets API through the
// browser. The token it returns goes into sheets.refresh_token.
type AuthFlow struct {
	ClientID     string
	ClientSecret string
	// Addr is the local callback listener, "localhost:8085" by default.
	Addr     string
	Endpoint oauth2.Endpoint
	Timeout  time.Duration
	Logger   *slog.Logger
}

const callbackPage = `<html><body><h1>%s</h1><p>%s</p></body></html>`

// Run starts the callback listener, hands the consent URL to prompt and
// waits for the redirect.
func (f *AuthFlow) Run(ctx context.Context, prompt func(authURL string)) (*oauth2.Token, error) {
	if f.ClientID == "" || f.ClientSecret == "" {
		return nil, fmt.Errorf("client id and secret are required")
	}
	addr := f.Addr
	if addr == "" {
		addr = "localhost:8085"
	}
	endpoint := f.Endpoint
	if endpoint.AuthURL == "" {
		endpoint = google.Endpoint
	}
	timeout := f.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	logger := f.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to start callback listener: %w", err)
	}

	oauthConfig := &oauth2.Config{
		ClientID:     f.ClientID,
		ClientSecret: f.ClientSecret,
		Endpoint:     endpoint,
		RedirectURL:  "http://" + ln.Addr().String() + "/callback",
		Scopes:       []string{sheets.SpreadsheetsScope},
	}
	state := uuid.NewString()

	codeChan := make(chan string, 1)
	errorChan := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = fmt.Fprintf(w, callbackPage, "Falha na autenticação", "Estado inválido.")
			return
		}
		code := q.Get("code")
		if code == "" {
			select {
			case errorChan <- fmt.Errorf("no authorization code received"):
			default:
			}
			w.WriteHeader(http.StatusBadRequest)
			_, _ = fmt.Fprintf(w, callbackPage, "Falha na autenticação", "Nenhum código recebido.")
			return
		}
		select {
		case codeChan <- code:
		default:
		}
		_, _ = fmt.Fprintf(w, callbackPage, "Autenticado", "Pode fechar esta janela.")
	})

	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errorChan <- fmt.Errorf("callback server failed: %w", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("error shutting down callback server", "error", err)
		}
	}()

	prompt(oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce))

	var code string
	select {
	case code = <-codeChan:
		logger.Info("received authorization code")
	case err := <-errorChan:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(timeout):
		return nil, fmt.Errorf("authentication timeout: no response within %s", timeout)
	}

	token, err := oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	return token, nil
}
