package api

import (
	"context"
	"fmt"

	"dru/internal/session"
)

// TokenResponse is the login reply.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// RegisterResponse is the registration reply.
type RegisterResponse struct {
	Message string `json:"message"`
	UserID  int64  `json:"user_id"`
	Email   string `json:"email"`
}

// AuthService groups the authentication endpoints and owns token
// persistence on successful login.
type AuthService struct {
	client  *Client
	session *session.Session
}

func NewAuthService(client *Client, sess *session.Session) *AuthService {
	return &AuthService{client: client, session: sess}
}

// Login exchanges credentials for a bearer token and persists it.
func (s *AuthService) Login(ctx context.Context, email, password string) error {
	body := map[string]string{"email": email, "password": password}
	var resp TokenResponse
	if err := s.client.Post(ctx, "/auth/login", body, &resp); err != nil {
		return err
	}
	if err := s.session.SetToken(resp.AccessToken); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	return nil
}

// Register creates a new account. It does not log the user in.
func (s *AuthService) Register(ctx context.Context, email, password, fullName string) (RegisterResponse, error) {
	body := map[string]string{
		"email":     email,
		"password":  password,
		"full_name": fullName,
	}
	var resp RegisterResponse
	if err := s.client.Post(ctx, "/auth/register", body, &resp); err != nil {
		return RegisterResponse{}, err
	}
	return resp, nil
}

// Logout clears the persisted token.
func (s *AuthService) Logout() error {
	return s.session.Clear()
}
