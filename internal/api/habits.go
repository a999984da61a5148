package api

import "context"

// HabitsService exposes the static habit-building content.
type HabitsService struct {
	client *Client
}

func NewHabitsService(client *Client) *HabitsService {
	return &HabitsService{client: client}
}

// WelcomeMessage fetches the habits welcome text.
func (s *HabitsService) WelcomeMessage(ctx context.Context) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	if err := s.client.Get(ctx, "/habits/", nil, nil, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}
