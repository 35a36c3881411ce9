// Package supabase implements the remote auth client against a Supabase
// (GoTrue-compatible) REST surface. Public operations use the anonymous key;
// admin operations (delete, user lookup) require the service-role key.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/sovaehr/authapi/internal/apperror"
	"github.com/sovaehr/authapi/internal/domain"
	"github.com/sovaehr/authapi/internal/middleware/metrics"
	"github.com/sovaehr/authapi/internal/service"
)

// originMarker tags accounts created through this service so they can be
// distinguished from accounts created elsewhere.
const originMarker = "sovaehr-authapi"

// Client talks to the remote identity provider. It is constructed once at
// startup and safe for concurrent use; the embedded http.Client pools
// connections across requests.
type Client struct {
	httpClient *http.Client
	baseURL    string
	anonKey    string
	serviceKey string
}

var _ service.AuthService = (*Client)(nil)

// New builds a client for the provider at baseURL. No explicit timeout is
// set on the HTTP client; callers control cancellation through ctx.
func New(baseURL, anonKey, serviceKey string) *Client {
	return &Client{
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		anonKey:    anonKey,
		serviceKey: serviceKey,
	}
}

// SignIn exchanges credentials for an access token via the password grant.
func (c *Client) SignIn(ctx context.Context, email domain.Email, password domain.Password) (string, error) {
	body := map[string]string{
		"email":    email.Expose(),
		"password": password.Expose(),
	}

	resp, err := c.do(ctx, "signin", http.MethodPost, "/auth/v1/token?grant_type=password", c.anonKey, "", body)
	if err != nil {
		return "", apperror.SignIn(fmt.Sprintf("failed to send request: %v", err))
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", apperror.SignIn(extractMessage(raw, fmt.Sprintf("sign-in failed with status %d", resp.StatusCode)))
	}

	var parsed struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", apperror.SignIn(fmt.Sprintf("failed to parse response: %v", err))
	}
	if parsed.AccessToken == "" {
		return "", apperror.SignIn("no access token in response")
	}

	return parsed.AccessToken, nil
}

// SignUp registers a new account. redirectTo, when non-empty, is where the
// provider sends the user after email confirmation.
func (c *Client) SignUp(ctx context.Context, email domain.Email, password domain.Password, redirectTo string) error {
	path := "/auth/v1/signup"
	if redirectTo != "" {
		path += "?redirect_to=" + url.QueryEscape(redirectTo)
	}

	body := map[string]any{
		"email":    email.Expose(),
		"password": password.Expose(),
		"data":     map[string]string{"origin": originMarker},
	}

	resp, err := c.do(ctx, "signup", http.MethodPost, path, c.anonKey, "", body)
	if err != nil {
		return apperror.SignUp(fmt.Sprintf("failed to send request: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return nil
	}

	raw, _ := io.ReadAll(resp.Body)
	msg := extractMessage(raw, fmt.Sprintf("sign-up failed with status %d", resp.StatusCode))

	if isEmailInUse(resp.StatusCode, raw, msg) {
		return apperror.EmailAlreadyInUse()
	}
	if resp.StatusCode == http.StatusBadRequest {
		return apperror.SignUp(msg)
	}
	return apperror.SignUp(fmt.Sprintf("status %d: %s", resp.StatusCode, msg))
}

// isEmailInUse decides whether a failed signup means the address is taken.
// The provider reports this inconsistently across versions: via status,
// via error_code, or only via the human message.
func isEmailInUse(status int, raw []byte, msg string) bool {
	if status == http.StatusConflict || status == http.StatusUnprocessableEntity {
		return true
	}

	var parsed struct {
		ErrorCode string `json:"error_code"`
	}
	if err := json.Unmarshal(raw, &parsed); err == nil {
		switch parsed.ErrorCode {
		case "user_already_exists", "email_exists":
			return true
		}
	}

	return strings.EqualFold(msg, "User already registered") ||
		strings.EqualFold(msg, "Email already in use")
}

// SignOut revokes the caller's session at the provider.
func (c *Client) SignOut(ctx context.Context, token string) error {
	resp, err := c.do(ctx, "signout", http.MethodPost, "/auth/v1/logout", c.anonKey, token, nil)
	if err != nil {
		return apperror.SignOut(fmt.Sprintf("failed to send request: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		return apperror.SignOut(extractMessage(raw, fmt.Sprintf("sign-out failed with status %d", resp.StatusCode)))
	}
	return nil
}

// DeleteUser removes an account. Requires the service-role key; the
// anonymous key must never reach this endpoint.
func (c *Client) DeleteUser(ctx context.Context, userID string) error {
	path := "/auth/v1/admin/users/" + url.PathEscape(userID)

	resp, err := c.do(ctx, "delete_user", http.MethodDelete, path, c.serviceKey, c.serviceKey, nil)
	if err != nil {
		return apperror.DeleteUser(fmt.Sprintf("failed to send request: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		return apperror.DeleteUser(extractMessage(raw, fmt.Sprintf("delete failed with status %d", resp.StatusCode)))
	}
	return nil
}

type adminUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// RetrieveUserID looks an account up by email on the admin listing endpoint.
// The remote filter can match loosely, so results are narrowed client-side
// by exact (case-insensitive) email equality.
func (c *Client) RetrieveUserID(ctx context.Context, email domain.Email) (string, error) {
	path := "/auth/v1/admin/users?email=" + url.QueryEscape(email.Expose())

	resp, err := c.do(ctx, "retrieve_user_id", http.MethodGet, path, c.serviceKey, c.serviceKey, nil)
	if err != nil {
		return "", apperror.RetrieveUserID(fmt.Sprintf("failed to send request: %v", err))
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", apperror.RetrieveUserID(extractMessage(raw, fmt.Sprintf("lookup failed with status %d", resp.StatusCode)))
	}

	users, err := parseUserList(raw)
	if err != nil {
		return "", apperror.RetrieveUserID(fmt.Sprintf("failed to parse response: %v", err))
	}

	if len(users) == 0 {
		return "", apperror.UserNotFound()
	}

	match := users[0]
	if len(users) > 1 {
		found := false
		for _, u := range users {
			if strings.EqualFold(u.Email, email.Expose()) {
				match = u
				found = true
				break
			}
		}
		if !found {
			return "", apperror.UserNotFound()
		}
	}

	if match.ID == "" {
		return "", apperror.RetrieveUserID("no id field in matched user")
	}
	return match.ID, nil
}

// parseUserList accepts either a bare array or an object wrapping a "users"
// array; the provider has shipped both shapes.
func parseUserList(raw []byte) ([]adminUser, error) {
	var bare []adminUser
	if err := json.Unmarshal(raw, &bare); err == nil {
		return bare, nil
	}

	var wrapped struct {
		Users []adminUser `json:"users"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Users, nil
}

// do issues a single request. apiKey goes into the provider's apikey header;
// bearer, when non-empty, into Authorization.
func (c *Client) do(ctx context.Context, operation, method, path, apiKey, bearer string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("apikey", apiKey)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)

	status := 0
	if err == nil {
		status = resp.StatusCode
	}
	metrics.ObserveProviderCall(operation, status, time.Since(start))

	return resp, err
}

// extractMessage pulls a human-readable message out of a provider error
// body, trying the known field names in priority order. A body that isn't
// valid JSON is tolerated and yields the fallback.
func extractMessage(raw []byte, fallback string) string {
	var parsed map[string]any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fallback
	}

	for _, key := range []string{"msg", "message", "error_description", "error"} {
		if v, ok := parsed[key].(string); ok {
			return v
		}
	}
	return fallback
}
