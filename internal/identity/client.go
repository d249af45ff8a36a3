package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"sales_visits_backend/platform/config"
	"sales_visits_backend/platform/logger"

	"github.com/go-resty/resty/v2"
)

const serviceName = "identity"

// Client is the HTTP client for the identity service.
type Client struct {
	http     *resty.Client
	failOpen bool
	log      *logger.Logger
}

// NewClient creates a new identity service client.
func NewClient(cfg config.IdentityConfig, log *logger.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.GetAuthServiceURL()).
		SetTimeout(cfg.GetIdentityTimeout()).
		SetHeader("Accept", "application/json")

	return &Client{
		http:     httpClient,
		failOpen: cfg.GetIdentityFailOpen(),
		log:      log,
	}
}

// Exists implements Directory.
func (c *Client) Exists(ctx context.Context, userID string) bool {
	found, err := c.lookup(ctx, userID)
	return c.resolve(found, err)
}

// FetchDetail implements Directory.
func (c *Client) FetchDetail(ctx context.Context, userID string) (Record, bool) {
	record, err := c.detail(ctx, userID)
	if err != nil || record == nil {
		return nil, false
	}
	return record, true
}

// FindUserIDsByName implements Directory.
func (c *Client) FindUserIDsByName(ctx context.Context, name, role string) []string {
	var body struct {
		Data struct {
			Users []struct {
				ID string `json:"id"`
			} `json:"users"`
		} `json:"data"`
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"name": name, "role": role}).
		Get("/auth/user")
	if err != nil {
		c.log.WithContext(ctx).ExternalCall(serviceName, "find_by_name", 0, err)
		return []string{}
	}
	if resp.StatusCode() != http.StatusOK {
		c.log.WithContext(ctx).ExternalCall(serviceName, "find_by_name", resp.StatusCode(), nil)
		return []string{}
	}
	// The identity service does not always label its JSON, so decode by hand.
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		c.log.WithContext(ctx).Warn("identity search decode failed", "name", name, "error", err)
		return []string{}
	}

	ids := make([]string, 0, len(body.Data.Users))
	for _, user := range body.Data.Users {
		if user.ID != "" {
			ids = append(ids, user.ID)
		}
	}
	return ids
}

// lookup returns an error only for transport failures; any non-200 status is
// reported as not found.
func (c *Client) lookup(ctx context.Context, userID string) (bool, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", userID).
		Get("/auth/user/{id}")
	if err != nil {
		c.log.WithContext(ctx).ExternalCall(serviceName, "exists", 0, err)
		return false, fmt.Errorf("identity lookup %s: %w", userID, err)
	}
	c.log.WithContext(ctx).ExternalCall(serviceName, "exists", resp.StatusCode(), nil)
	return resp.StatusCode() == http.StatusOK, nil
}

// detail returns (nil, nil) when the user is unknown or the body is unusable.
func (c *Client) detail(ctx context.Context, userID string) (Record, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", userID).
		Get("/auth/user/{id}")
	if err != nil {
		c.log.WithContext(ctx).ExternalCall(serviceName, "detail", 0, err)
		return nil, fmt.Errorf("identity detail %s: %w", userID, err)
	}
	if resp.StatusCode() != http.StatusOK {
		c.log.WithContext(ctx).ExternalCall(serviceName, "detail", resp.StatusCode(), nil)
		return nil, nil
	}

	var body map[string]interface{}
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		c.log.WithContext(ctx).Warn("identity detail decode failed", "user_id", userID, "error", err)
		return nil, nil
	}
	return unwrapData(body), nil
}

// resolve applies the failure policy to a lookup outcome.
func (c *Client) resolve(found bool, err error) bool {
	if err != nil {
		return c.failOpen
	}
	return found
}

// unwrapData strips an optional {"data": {...}} envelope.
func unwrapData(body map[string]interface{}) Record {
	if inner, ok := body["data"].(map[string]interface{}); ok {
		return Record(inner)
	}
	return Record(body)
}
