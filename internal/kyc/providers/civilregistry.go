package providers

import (
	"context"
	"time"
)

// HTTPCivilRegistryClient validates an extracted CURP against the civil
// registry. A missing ID fails immediately without a network call.
type HTTPCivilRegistryClient struct {
	api httpAPI
}

func NewHTTPCivilRegistryClient(baseURL, apiKey string, timeout time.Duration) *HTTPCivilRegistryClient {
	return &HTTPCivilRegistryClient{api: newHTTPAPI("civil-registry", baseURL, apiKey, timeout)}
}

type civilRegistryRequest struct {
	CURP        string `json:"curp"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
}

type civilRegistryResponse struct {
	Valid        bool   `json:"valid"`
	ErrorMessage string `json:"error_message,omitempty"`
}

func (c *HTTPCivilRegistryClient) ValidateID(ctx context.Context, nationalID, dateOfBirth string) (RegistryResult, error) {
	if nationalID == "" {
		return RegistryResult{}, NewProviderError(ErrorMissingInput, c.api.providerID,
			"national id is required", nil)
	}

	var resp civilRegistryResponse
	req := civilRegistryRequest{CURP: nationalID, DateOfBirth: dateOfBirth}
	if err := c.api.postJSON(ctx, "/v1/curp/validate", req, &resp); err != nil {
		return RegistryResult{}, err
	}

	return RegistryResult{OK: resp.Valid, Message: resp.ErrorMessage}, nil
}
