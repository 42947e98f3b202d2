package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"time"
)

// httpAPI is the shared plumbing for provider adapters that speak HTTP.
// Every adapter owns one; the client-level timeout is the adapter's timeout
// policy, so a hung provider becomes a normalized timeout error instead of
// stalling the orchestrator.
type httpAPI struct {
	providerID string
	baseURL    string
	apiKey     string
	http       *http.Client
}

func newHTTPAPI(providerID, baseURL, apiKey string, timeout time.Duration) httpAPI {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return httpAPI{
		providerID: providerID,
		baseURL:    baseURL,
		apiKey:     apiKey,
		http:       &http.Client{Timeout: timeout},
	}
}

// postJSON sends a JSON body and decodes the JSON response into out.
func (a httpAPI) postJSON(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return NewProviderError(ErrorInternal, a.providerID, "encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return NewProviderError(ErrorInternal, a.providerID, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", a.apiKey)

	return a.do(req, out)
}

// multipartFile is one image part of a multipart upload.
type multipartFile struct {
	field string
	name  string
	data  []byte
}

// postMultipart uploads images as multipart form data and decodes the JSON
// response into out.
func (a httpAPI) postMultipart(ctx context.Context, path string, files []multipartFile, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range files {
		fw, err := w.CreateFormFile(f.field, f.name)
		if err != nil {
			return NewProviderError(ErrorInternal, a.providerID, "build multipart body", err)
		}
		if _, err := fw.Write(f.data); err != nil {
			return NewProviderError(ErrorInternal, a.providerID, "build multipart body", err)
		}
	}
	if err := w.Close(); err != nil {
		return NewProviderError(ErrorInternal, a.providerID, "build multipart body", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, &buf)
	if err != nil {
		return NewProviderError(ErrorInternal, a.providerID, "build request", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("apikey", a.apiKey)

	return a.do(req, out)
}

func (a httpAPI) do(req *http.Request, out any) error {
	resp, err := a.http.Do(req)
	if err != nil {
		return a.translateTransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return NewProviderError(ErrorBadData, a.providerID, "read response", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return NewProviderError(ErrorAuthentication, a.providerID, "rejected credentials", nil)
	case resp.StatusCode >= 500:
		return NewProviderError(ErrorProviderOutage, a.providerID,
			fmt.Sprintf("provider returned %d", resp.StatusCode), nil)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return NewProviderError(ErrorBadData, a.providerID,
			fmt.Sprintf("provider returned %d: %s", resp.StatusCode, string(body)), nil)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return NewProviderError(ErrorBadData, a.providerID, "malformed response", err)
	}
	return nil
}

func (a httpAPI) translateTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
		return NewProviderError(ErrorTimeout, a.providerID, "provider timed out", err)
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NewProviderError(ErrorTimeout, a.providerID, "provider timed out", err)
	}
	return NewProviderError(ErrorProviderOutage, a.providerID, "provider unreachable", err)
}
