package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/tablerohq/tablero/internal/models"
)

// AuthClient wraps the authentication endpoints. Login is the one call that
// runs without a bearer token.
type AuthClient struct {
	c *Client
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is the credential pair a successful login yields.
type LoginResult struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Login exchanges credentials for a token and the signed-in user.
func (ac *AuthClient) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	body := loginRequest{Email: email, Password: password}
	raw, err := ac.c.doRaw(ctx, http.MethodPost, "/auth/login", body, "login failed", false)
	if err != nil {
		return nil, err
	}

	var result LoginResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("%w: login response: %v", ErrMalformedResponse, err)
	}
	if result.Token == "" {
		return nil, fmt.Errorf("%w: login response missing token", ErrMalformedResponse)
	}
	return &result, nil
}
