package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"frontdesk/internal/platform/config"
)

var (
	// ErrProfileNotFound means the provider has no record for the external id.
	ErrProfileNotFound = errors.New("identity provider has no such user")

	// ErrProfileUnavailable means the identity was accepted but the provider
	// could not return its profile record.
	ErrProfileUnavailable = errors.New("identity provider did not return a profile")
)

// ProfileAPI fetches provider-side user records.
type ProfileAPI interface {
	Profile(ctx context.Context, externalID string) (*Profile, error)
}

// Client talks to the identity provider's backend API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(cfg config.IdentityConfig) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.ProviderBaseURL, "/"),
		apiKey:     cfg.ProviderAPIKey,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
	}
}

func (c *Client) Profile(ctx context.Context, externalID string) (*Profile, error) {
	url := fmt.Sprintf("%s/v1/users/%s", c.baseURL, externalID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProfileUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, externalID)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrProfileUnavailable, resp.StatusCode)
	}

	var body struct {
		ID           string  `json:"id"`
		FirstName    *string `json:"first_name"`
		LastName     *string `json:"last_name"`
		PrimaryEmail string  `json:"primary_email_address"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProfileUnavailable, err)
	}

	return &Profile{
		ExternalID: body.ID,
		FirstName:  body.FirstName,
		LastName:   body.LastName,
		Email:      body.PrimaryEmail,
	}, nil
}
