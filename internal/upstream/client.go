// Package upstream talks to the hosted Stellar Burgers API: REST for the
// catalog and orders, websockets for the live feeds.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/franciscosanchezn/stellar-burgers-api/internal/models"
	"github.com/franciscosanchezn/stellar-burgers-api/internal/orders"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "upstream")

// ErrUnauthorized is returned when the API rejects the access token
var ErrUnauthorized = errors.New("upstream rejected the access token")

// Error is a non-success answer from the API
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upstream: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("upstream: %d %s", e.StatusCode, e.Message)
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.http.Timeout = d }
}

// Client implements the catalog source and the order submitter, finder and
// lister against the REST API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for baseURL, e.g.
// "https://norma.nomoreparties.space/api".
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Ingredients fetches the catalog
func (c *Client) Ingredients(ctx context.Context) ([]models.Ingredient, error) {
	var resp struct {
		envelope
		Data []models.Ingredient `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/ingredients", "", nil, &resp); err != nil {
		return nil, err
	}
	for i := range resp.Data {
		resp.Data[i].Position = i
	}
	return resp.Data, nil
}

// Submit places an order on behalf of the token's owner
func (c *Client) Submit(ctx context.Context, token string, ingredientIDs []string) (models.Order, error) {
	body := struct {
		Ingredients []string `json:"ingredients"`
	}{Ingredients: ingredientIDs}

	var resp struct {
		envelope
		Name  string    `json:"name"`
		Order wireOrder `json:"order"`
	}
	if err := c.do(ctx, http.MethodPost, "/orders", token, body, &resp); err != nil {
		return models.Order{}, err
	}

	order := resp.Order.model()
	if order.Number <= 0 {
		return models.Order{}, fmt.Errorf("upstream: order response carries no number")
	}
	if order.Name == "" {
		order.Name = resp.Name
	}
	if order.Status == "" {
		order.Status = models.OrderCreated
	}
	if len(order.Ingredients) == 0 {
		order.Ingredients = append([]string(nil), ingredientIDs...)
	}
	return order, nil
}

// OrderByNumber fetches one order. A number the API does not know yields
// orders.ErrNotFound.
func (c *Client) OrderByNumber(ctx context.Context, number int) (models.Order, error) {
	var resp struct {
		envelope
		Orders []wireOrder `json:"orders"`
	}
	err := c.do(ctx, http.MethodGet, "/orders/"+strconv.Itoa(number), "", nil, &resp)
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return models.Order{}, fmt.Errorf("%w: %d", orders.ErrNotFound, number)
	}
	if err != nil {
		return models.Order{}, err
	}
	if len(resp.Orders) == 0 {
		return models.Order{}, fmt.Errorf("%w: %d", orders.ErrNotFound, number)
	}
	return resp.Orders[0].model(), nil
}

// OwnOrders lists the orders of the token's owner
func (c *Client) OwnOrders(ctx context.Context, token string) ([]models.Order, error) {
	var resp struct {
		envelope
		Orders []wireOrder `json:"orders"`
	}
	if err := c.do(ctx, http.MethodGet, "/orders", token, nil, &resp); err != nil {
		return nil, err
	}
	out := make([]models.Order, 0, len(resp.Orders))
	for _, o := range resp.Orders {
		out = append(out, o.model())
	}
	return out, nil
}

// do sends a request and decodes a success envelope into out. out must
// embed envelope.
func (c *Client) do(ctx context.Context, method, path, token string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("upstream: marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("upstream: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", BearerToken(token))
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("upstream: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("upstream: read response: %w", err)
	}

	log.WithFields(logrus.Fields{
		"method":   method,
		"path":     path,
		"status":   resp.StatusCode,
		"duration": time.Since(started),
	}).Debug("Upstream request")

	var env envelope
	_ = json.Unmarshal(raw, &env)

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: %s", ErrUnauthorized, env.Message)
	}
	if resp.StatusCode >= 300 {
		return &Error{StatusCode: resp.StatusCode, Message: env.Message}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("upstream: decode response: %w", err)
	}
	if !env.Success {
		return &Error{StatusCode: resp.StatusCode, Message: env.Message}
	}
	return nil
}

// BearerToken adds the "Bearer " scheme when token lacks it
func BearerToken(token string) string {
	if strings.HasPrefix(token, "Bearer ") {
		return token
	}
	return "Bearer " + token
}

// RawToken strips the "Bearer " scheme, as the websocket API expects
func RawToken(token string) string {
	return strings.TrimPrefix(token, "Bearer ")
}
