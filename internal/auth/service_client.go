package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"sharecast/internal/domain"
)

// ServiceClient talks to the platform's REST data API and auth admin API
// with the service-role key. Requests made through it execute under
// elevated rights and are not subject to row-level restrictions, which is
// exactly why it is only handed to the privileged-bypass provider, the
// procedure write path, and the seeder - never to request handlers.
type ServiceClient struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
}

// NewServiceClient creates a privileged data/admin API client. The bounded
// client timeout doubles as the fail-closed latency limit for bypass reads.
func NewServiceClient(baseURL, serviceKey string) *ServiceClient {
	return &ServiceClient{
		baseURL:    baseURL,
		serviceKey: serviceKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// restError is the error body the data API returns.
type restError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
}

// CallProcedure invokes a stored procedure on the data API under the
// service role. A nil args map sends an empty argument object.
func (c *ServiceClient) CallProcedure(ctx context.Context, name string, args map[string]interface{}, out interface{}) error {
	if args == nil {
		args = map[string]interface{}{}
	}

	payload, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("marshal procedure args: %w", err)
	}

	endpoint := fmt.Sprintf("%s/rest/v1/rpc/%s", c.baseURL, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create procedure request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call procedure %s: %w", name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read procedure response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.asDomainError(name, resp.StatusCode, body)
	}

	if out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decode procedure %s response: %w", name, err)
		}
	}

	return nil
}

// SelectRows queries a table on the data API under the service role and
// decodes the result array into out.
func (c *ServiceClient) SelectRows(ctx context.Context, table string, query url.Values, out interface{}) error {
	endpoint := fmt.Sprintf("%s/rest/v1/%s?%s", c.baseURL, table, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create select request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("select %s: %w", table, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read select response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return c.asDomainError(table, resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode select %s response: %w", table, err)
	}

	return nil
}

// asDomainError maps data API error responses onto domain sentinels so
// callers can treat a duplicate-key rejection as "already exists".
func (c *ServiceClient) asDomainError(target string, status int, body []byte) error {
	var restErr restError
	if err := json.Unmarshal(body, &restErr); err == nil {
		// 23505 = unique_violation
		if restErr.Code == "23505" {
			return fmt.Errorf("%s: %s: %w", target, restErr.Message, domain.ErrConflict)
		}
	}
	if status == http.StatusConflict {
		return fmt.Errorf("%s: %w", target, domain.ErrConflict)
	}
	if status == http.StatusNotFound {
		return fmt.Errorf("%s: %w", target, domain.ErrNotFound)
	}
	return fmt.Errorf("%s failed with status %d: %s", target, status, string(body))
}

func (c *ServiceClient) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("apikey", c.serviceKey)
}

// ---- auth admin API (user provisioning, used by cmd/seed) ----

// CreateUserRequest is the payload for creating a new auth user
type CreateUserRequest struct {
	Email        string                 `json:"email"`
	Password     string                 `json:"password"`
	EmailConfirm bool                   `json:"email_confirm"`
	UserMetadata map[string]interface{} `json:"user_metadata,omitempty"`
}

// CreateUserResponse is the response from creating a user
type CreateUserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// ListUsersResponse is the response from listing users
type ListUsersResponse struct {
	Users []CreateUserResponse `json:"users"`
}

// CreateUser creates a new auth user with the specified email and password.
// The user is auto-confirmed (no email verification). Returns the user's id.
func (c *ServiceClient) CreateUser(ctx context.Context, email, password string) (string, error) {
	endpoint := fmt.Sprintf("%s/auth/v1/admin/users", c.baseURL)

	payload := CreateUserRequest{
		Email:        email,
		Password:     password,
		EmailConfirm: true,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal create request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to create user: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("create user failed with status %d: %s", resp.StatusCode, string(body))
	}

	var createResp CreateUserResponse
	if err := json.Unmarshal(body, &createResp); err != nil {
		return "", fmt.Errorf("failed to decode create response: %w", err)
	}

	return createResp.ID, nil
}

// DeleteUserByEmail finds an auth user by email and deletes them.
// Idempotent - returns nil if the user doesn't exist.
func (c *ServiceClient) DeleteUserByEmail(ctx context.Context, email string) error {
	userID, err := c.findUserIDByEmail(ctx, email)
	if err != nil {
		// User not found is OK (idempotent)
		return nil
	}

	endpoint := fmt.Sprintf("%s/auth/v1/admin/users/%s", c.baseURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create delete request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("delete user failed with status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

// findUserIDByEmail searches for an auth user by email and returns their id.
func (c *ServiceClient) findUserIDByEmail(ctx context.Context, email string) (string, error) {
	endpoint := fmt.Sprintf("%s/auth/v1/admin/users", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create list request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to list users: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("list users failed with status %d: %s", resp.StatusCode, string(body))
	}

	var listResp ListUsersResponse
	if err := json.NewDecoder(resp.Body).Decode(&listResp); err != nil {
		return "", fmt.Errorf("failed to decode list response: %w", err)
	}

	for _, user := range listResp.Users {
		if user.Email == email {
			return user.ID, nil
		}
	}

	return "", fmt.Errorf("user not found")
}
