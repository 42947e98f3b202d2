package providers

import (
	"context"
	"log/slog"
	"time"

	"origen/pkg/platform/circuit"
)

// HTTPSanctionsClient screens names against one restricted-party list.
// Separate instances are constructed for the domestic and international
// lists; they share nothing but the wire shape.
type HTTPSanctionsClient struct {
	api  httpAPI
	list string
}

// NewDomesticSanctionsClient screens against the domestic restricted list.
func NewDomesticSanctionsClient(baseURL, apiKey string, timeout time.Duration) *HTTPSanctionsClient {
	return &HTTPSanctionsClient{
		api:  newHTTPAPI("domestic-sanctions", baseURL, apiKey, timeout),
		list: "domestic",
	}
}

// NewInternationalSanctionsClient screens against consolidated international
// lists (OFAC, UN, EU).
func NewInternationalSanctionsClient(baseURL, apiKey string, timeout time.Duration) *HTTPSanctionsClient {
	return &HTTPSanctionsClient{
		api:  newHTTPAPI("international-sanctions", baseURL, apiKey, timeout),
		list: "international",
	}
}

type sanctionsRequest struct {
	FullName   string  `json:"full_name"`
	NationalID string  `json:"national_id,omitempty"`
	List       string  `json:"list"`
	Threshold  float64 `json:"threshold"`
}

type sanctionsResponse struct {
	Found   bool `json:"found"`
	Matches []struct {
		Name       string  `json:"name"`
		List       string  `json:"list"`
		Similarity float64 `json:"similarity"`
	} `json:"matches"`
}

func (c *HTTPSanctionsClient) Screen(ctx context.Context, fullName, nationalID string, threshold float64) (SanctionsResult, error) {
	if fullName == "" {
		return SanctionsResult{}, NewProviderError(ErrorMissingInput, c.api.providerID,
			"full name is required", nil)
	}

	req := sanctionsRequest{
		FullName:   fullName,
		NationalID: nationalID,
		List:       c.list,
		Threshold:  threshold,
	}

	var resp sanctionsResponse
	if err := c.api.postJSON(ctx, "/v1/screening/search", req, &resp); err != nil {
		if IsUnavailable(err) {
			return SanctionsResult{Unavailable: true}, nil
		}
		return SanctionsResult{}, err
	}

	result := SanctionsResult{Found: resp.Found}
	for _, m := range resp.Matches {
		result.Matches = append(result.Matches, SanctionsMatch{
			Name:       m.Name,
			List:       m.List,
			Similarity: m.Similarity,
		})
	}
	return result, nil
}

// BreakeredSanctionsClient wraps a SanctionsClient with a circuit breaker.
// When the breaker is open the screening service is not called at all and the
// result is reported unavailable, which the orchestrator fails open on.
type BreakeredSanctionsClient struct {
	inner   SanctionsClient
	breaker *circuit.Breaker
	logger  *slog.Logger
}

func NewBreakeredSanctionsClient(inner SanctionsClient, breaker *circuit.Breaker, logger *slog.Logger) *BreakeredSanctionsClient {
	return &BreakeredSanctionsClient{inner: inner, breaker: breaker, logger: logger}
}

func (c *BreakeredSanctionsClient) Screen(ctx context.Context, fullName, nationalID string, threshold float64) (SanctionsResult, error) {
	if c.breaker.IsOpen() {
		return SanctionsResult{Unavailable: true}, nil
	}

	result, err := c.inner.Screen(ctx, fullName, nationalID, threshold)
	switch {
	case err != nil && IsUnavailable(err):
		c.recordFailure(ctx)
		return SanctionsResult{Unavailable: true}, nil
	case err != nil:
		return SanctionsResult{}, err
	case result.Unavailable:
		c.recordFailure(ctx)
		return result, nil
	}

	if _, change := c.breaker.RecordSuccess(); change.Closed {
		c.logger.InfoContext(ctx, "screening breaker closed", "breaker", c.breaker.Name())
	}
	return result, nil
}

func (c *BreakeredSanctionsClient) recordFailure(ctx context.Context) {
	if _, change := c.breaker.RecordFailure(); change.Opened {
		c.logger.WarnContext(ctx, "screening breaker opened", "breaker", c.breaker.Name())
	}
}
