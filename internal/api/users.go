package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tablerohq/tablero/internal/models"
)

// UserClient wraps the /users resource and the account endpoints under
// /auth.
type UserClient struct {
	c *Client
}

// userList is the one accepted envelope for GET /users. The original client
// sometimes treated the endpoint as a bare array and sometimes as {data};
// here the envelope is the contract and anything else fails fast.
type userList struct {
	Data []models.User `json:"data"`
}

// List fetches all users.
func (uc *UserClient) List(ctx context.Context) ([]models.User, error) {
	var list userList
	if err := uc.c.do(ctx, http.MethodGet, "/users", nil, &list, "failed to fetch users"); err != nil {
		return nil, err
	}
	if list.Data == nil {
		return nil, fmt.Errorf("%w: users response missing data envelope", ErrMalformedResponse)
	}
	return list.Data, nil
}

// Get fetches a single user.
func (uc *UserClient) Get(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := uc.c.do(ctx, http.MethodGet, "/users/"+id, nil, &u, "failed to fetch user"); err != nil {
		return nil, err
	}
	return &u, nil
}

// Register creates an account and returns the server-assigned user.
func (uc *UserClient) Register(ctx context.Context, draft models.UserDraft) (*models.User, error) {
	var u models.User
	if err := uc.c.do(ctx, http.MethodPost, "/auth/register", draft, &u, "failed to register user"); err != nil {
		return nil, err
	}
	return &u, nil
}

// Update applies a partial update and returns the updated user.
func (uc *UserClient) Update(ctx context.Context, id string, patch models.UserPatch) (*models.User, error) {
	var u models.User
	if err := uc.c.do(ctx, http.MethodPut, "/users/"+id, patch, &u, "failed to update user"); err != nil {
		return nil, err
	}
	return &u, nil
}

// Delete removes a user.
func (uc *UserClient) Delete(ctx context.Context, id string) error {
	return uc.c.do(ctx, http.MethodDelete, "/users/"+id, nil, nil, "failed to delete user")
}

type changePasswordRequest struct {
	Current string `json:"current_password"`
	New     string `json:"new_password"`
}

// ChangePassword rotates the caller's password.
func (uc *UserClient) ChangePassword(ctx context.Context, current, next string) error {
	body := changePasswordRequest{Current: current, New: next}
	return uc.c.do(ctx, http.MethodPost, "/auth/change-password", body, nil, "failed to change password")
}
