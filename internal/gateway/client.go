// Package gateway is the single chokepoint for outbound calls to the
// recommendation backend. It translates transport failures and non-2xx
// envelopes into the typed error taxonomy; callers never see raw transport
// errors.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"bundle-wizard/pkg/api"
	"bundle-wizard/pkg/errors"
	"bundle-wizard/pkg/platform"
)

// Client talks to the recommendation backend over HTTP+JSON.
type Client struct {
	baseURL string
	http    *platform.HTTPClient
	logger  *slog.Logger
}

// New creates a gateway client for the given base URL.
func New(cfg *platform.Config) *Client {
	return &Client{
		baseURL: cfg.APIBaseURL,
		http:    platform.NewHTTPClient(cfg.HealthRetries, cfg.HTTPTimeout),
		logger:  slog.Default(),
	}
}

// Health reports backend liveness. The only operation that retries, the
// platform client's retry budget exists for it.
func (c *Client) Health(ctx context.Context) (*api.HealthResponse, error) {
	resp, err := c.http.GetJSON(ctx, c.baseURL+"/health")
	if err != nil {
		return nil, errors.NewNetworkError("health check failed", err)
	}
	var out api.HealthResponse
	if err := decode(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetCoverage fetches coverage for an address. Unknown addresses come back
// as an APIError with a not-found code.
func (c *Client) GetCoverage(ctx context.Context, addressID string) (*api.CoverageInfo, error) {
	u := fmt.Sprintf("%s/api/coverage/%s", c.baseURL, url.PathEscape(addressID))
	resp, err := c.getOnce(ctx, u)
	if err != nil {
		return nil, errors.NewNetworkError("coverage request failed", err)
	}
	var out api.CoverageInfo
	if err := decode(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetInstallSlots fetches the bookable install slots for (address, tech).
func (c *Client) GetInstallSlots(ctx context.Context, addressID, tech string) (*api.InstallSlotsResponse, error) {
	u := fmt.Sprintf("%s/api/install-slots/%s?tech=%s",
		c.baseURL, url.PathEscape(addressID), url.QueryEscape(tech))
	resp, err := c.getOnce(ctx, u)
	if err != nil {
		return nil, errors.NewNetworkError("install slots request failed", err)
	}
	var out api.InstallSlotsResponse
	if err := decode(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetRecommendations posts the household profile and returns the top
// candidates, best first. Candidates violating the pricing invariants are
// dropped here, at the boundary; a response where every candidate violates
// them is a contract error.
func (c *Client) GetRecommendations(ctx context.Context, req *api.RecommendationRequest) (*api.RecommendationResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal recommendation request: %w", err)
	}
	resp, err := c.http.PostJSON(ctx, c.baseURL+"/api/recommendation", body)
	if err != nil {
		return nil, errors.NewNetworkError("recommendation request failed", err)
	}
	var out api.RecommendationResponse
	if err := decode(resp, &out); err != nil {
		return nil, err
	}

	if len(out.Top3) > api.MaxCandidates {
		out.Top3 = out.Top3[:api.MaxCandidates]
	}
	kept := out.Top3[:0]
	for i := range out.Top3 {
		cand := out.Top3[i]
		if err := cand.Validate(); err != nil {
			c.logger.Warn("dropping candidate violating pricing contract",
				"combo", cand.ComboLabel, "error", err)
			continue
		}
		kept = append(kept, cand)
	}
	if len(kept) == 0 && len(out.Top3) > 0 {
		return nil, errors.NewContractError("every recommendation candidate violates the pricing contract")
	}
	out.Top3 = kept
	return &out, nil
}

// Checkout submits an order. One shot: no retry on this path, a duplicate
// submission could double-order.
func (c *Client) Checkout(ctx context.Context, req *api.CheckoutRequest) (*api.CheckoutResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal checkout request: %w", err)
	}
	resp, err := c.http.PostJSON(ctx, c.baseURL+"/api/checkout", body)
	if err != nil {
		return nil, errors.NewNetworkError("checkout request failed", err)
	}
	var out api.CheckoutResponse
	if err := decode(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// getOnce issues a GET without the retry budget; coverage and slots are
// cached upstream and a failed fetch just surfaces as a retryable error state.
func (c *Client) getOnce(ctx context.Context, u string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return c.http.Client.Do(req)
}

// decode reads a response body. 2xx decodes into out; anything else parses
// the error envelope, falling back to a synthesized network error when the
// body is not the envelope.
func decode(resp *http.Response, out any) error {
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.NewNetworkError("reading response body failed", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if err := json.Unmarshal(raw, out); err != nil {
			return errors.NewNetworkError("decoding response body failed", err)
		}
		return nil
	}

	var envelope api.ErrorResponse
	if err := json.Unmarshal(raw, &envelope); err != nil || envelope.Error.Code == "" {
		return errors.NewNetworkError(
			fmt.Sprintf("network error: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode)), nil)
	}
	return errors.NewAPIError(resp.StatusCode, envelope.Error.Code, envelope.Error.Message, envelope.Error.Details)
}
