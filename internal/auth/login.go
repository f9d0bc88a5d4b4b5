// internal/auth/login.go
package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/law-makers/catalogsync/internal/engine"
	"github.com/law-makers/catalogsync/internal/session"
)

const (
	// NonceField is the id of the hidden anti-forgery input on the login form
	NonceField = "woocommerce-login-nonce"
	// LoginReferer is the fixed _wp_http_referer form value
	LoginReferer = "/account/?action=login"
)

// Credentials for the source shop
type Credentials struct {
	Login    string
	Password string
}

// Authenticate performs the login handshake on loginURL, leaving the
// authenticated cookies in sess.
func Authenticate(ctx context.Context, sess *session.Session, loginURL string, creds Credentials) error {
	if creds.Login == "" || creds.Password == "" {
		return engine.NewEngineError(engine.ErrCodeInvalidCredentials, "login and password are required", nil)
	}

	log.Debug().Str("url", loginURL).Msg("Fetching login page")

	doc, err := sess.GetDocument(ctx, loginURL)
	if err != nil {
		return fmt.Errorf("failed to load login page: %w", err)
	}

	nonce, ok := doc.Find("input#" + NonceField).Attr("value")
	if !ok || strings.TrimSpace(nonce) == "" {
		return engine.NewEngineError(engine.ErrCodeAuthPageFormat, "login nonce field not found", nil).
			WithDetail("url", loginURL)
	}

	form := url.Values{
		"username":         {creds.Login},
		"password":         {creds.Password},
		NonceField:         {nonce},
		"_wp_http_referer": {LoginReferer},
		"login":            {"Log in"},
	}

	resp, err := sess.PostForm(ctx, loginURL, form, map[string]string{"Referer": loginURL})
	if err != nil {
		return fmt.Errorf("failed to submit login form: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return engine.NewEngineError(engine.ErrCodeInvalidCredentials, "login rejected", nil).
			WithDetail("status", resp.StatusCode)
	}

	log.Info().Str("login", creds.Login).Msg("Successful authorization")
	return nil
}
