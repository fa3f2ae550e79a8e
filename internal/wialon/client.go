package wialon

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"geocerca/internal/model"
)

const (
	// sessionLifetime keeps the SID slightly below the remote idle timeout.
	sessionLifetime = 240 * time.Second

	unitsFlags     = 1025 // base props + last position
	resourcesFlags = 1
	zoneDataFlags  = 0x1F
)

// authErrorCodes are the remote error codes that mean the session expired or
// the credentials were rejected; a call is retried once after re-login.
var authErrorCodes = map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true, 8: true}

// Client talks to the Wialon remote API. It caches the session id obtained
// from token/login and transparently re-authenticates when the remote reports
// an expired session.
type Client struct {
	baseURL string
	token   string
	http    *http.Client

	mu        sync.Mutex
	sid       string
	sidIssued time.Time
}

// NewClient builds a client for the given API base URL and access token.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// apiError is the remote error envelope.
type apiError struct {
	Error  int    `json:"error"`
	Reason string `json:"reason"`
}

// sessionID returns a cached SID, logging in with the token when the cached
// one is missing or stale.
func (c *Client) sessionID(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sid != "" && time.Since(c.sidIssued) < sessionLifetime {
		return c.sid, nil
	}

	if c.token == "" {
		return "", fmt.Errorf("wialon token is not configured")
	}

	params, _ := json.Marshal(map[string]string{"token": c.token})
	body, err := c.get(ctx, url.Values{
		"svc":    {"token/login"},
		"params": {string(params)},
	})
	if err != nil {
		return "", fmt.Errorf("token/login request failed: %w", err)
	}

	var login struct {
		EID string `json:"eid"`
		SID string `json:"sid"`
		apiError
	}
	if err := json.Unmarshal(body, &login); err != nil {
		return "", fmt.Errorf("token/login returned malformed response: %w", err)
	}
	if login.Error != 0 && login.EID == "" && login.SID == "" {
		return "", fmt.Errorf("token/login failed with error %d", login.Error)
	}

	sid := login.EID
	if sid == "" {
		sid = login.SID
	}
	if sid == "" {
		// Some deployments hand out the SID directly in place of a token.
		sid = c.token
	}

	c.sid = sid
	c.sidIssued = time.Now()
	return sid, nil
}

func (c *Client) invalidateSession() {
	c.mu.Lock()
	c.sid = ""
	c.mu.Unlock()
}

// Call performs one remote service call and returns the raw response body.
// On an auth error the session is discarded and the call retried once.
func (c *Client) Call(ctx context.Context, svc string, params interface{}) (json.RawMessage, error) {
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("marshal params for %s: %w", svc, err)
	}

	body, code, err := c.callOnce(ctx, svc, string(paramsJSON))
	if err != nil {
		return nil, err
	}
	if code != 0 {
		if !authErrorCodes[code] {
			return nil, fmt.Errorf("error %d in %s", code, svc)
		}
		c.invalidateSession()
		body, code, err = c.callOnce(ctx, svc, string(paramsJSON))
		if err != nil {
			return nil, err
		}
		if code != 0 {
			return nil, fmt.Errorf("error %d in %s", code, svc)
		}
	}
	return body, nil
}

// callOnce performs the HTTP round trip and extracts a remote error code when
// the response carries one. Arrays and non-object bodies never carry errors.
func (c *Client) callOnce(ctx context.Context, svc, paramsJSON string) (json.RawMessage, int, error) {
	sid, err := c.sessionID(ctx)
	if err != nil {
		return nil, 0, err
	}

	body, err := c.get(ctx, url.Values{
		"svc":    {svc},
		"params": {paramsJSON},
		"sid":    {sid},
	})
	if err != nil {
		return nil, 0, fmt.Errorf("%s request failed: %w", svc, err)
	}

	if len(body) > 0 && body[0] == '{' {
		var apiErr apiError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != 0 {
			return body, apiErr.Error, nil
		}
	}
	return body, 0, nil
}

func (c *Client) get(ctx context.Context, query url.Values) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// Units fetches the unit roster with last-known positions.
func (c *Client) Units(ctx context.Context) ([]model.Unit, error) {
	body, err := c.Call(ctx, "core/search_items", searchSpec("avl_unit", unitsFlags))
	if err != nil {
		return nil, err
	}
	return decodeUnits(body)
}

// Resources fetches the resource list.
func (c *Client) Resources(ctx context.Context) ([]model.Resource, error) {
	body, err := c.Call(ctx, "core/search_items", searchSpec("avl_resource", resourcesFlags))
	if err != nil {
		return nil, err
	}
	return decodeResources(body)
}

// Geofences fetches and decodes the geofences of one resource.
func (c *Client) Geofences(ctx context.Context, resourceID int64) ([]*model.Geofence, error) {
	body, err := c.Call(ctx, "resource/get_zone_data", map[string]interface{}{
		"itemId": resourceID,
		"flags":  zoneDataFlags,
	})
	if err != nil {
		return nil, err
	}
	return DecodeZones(body)
}

func searchSpec(itemsType string, flags int) map[string]interface{} {
	return map[string]interface{}{
		"spec": map[string]interface{}{
			"itemsType":     itemsType,
			"propName":      "sys_name",
			"propValueMask": "*",
			"sortType":      "sys_name",
		},
		"force": 1,
		"flags": flags,
		"from":  0,
		"to":    0,
	}
}
