package providers

import (
	"context"
	"strconv"
	"time"
)

// HTTPFaceMatchClient compares a live selfie against the document portrait.
// The adapter reports the raw score; pass/fail against the threshold is the
// orchestrator's decision.
type HTTPFaceMatchClient struct {
	api httpAPI
}

func NewHTTPFaceMatchClient(baseURL, apiKey string, timeout time.Duration) *HTTPFaceMatchClient {
	return &HTTPFaceMatchClient{api: newHTTPAPI("face-match", baseURL, apiKey, timeout)}
}

type faceMatchResponse struct {
	Confidence   float64 `json:"confidence"`
	IsSamePerson string  `json:"is_same_person"` // provider serializes booleans as "true"/"false"
	ErrorMessage string  `json:"error_message,omitempty"`
}

func (c *HTTPFaceMatchClient) Match(ctx context.Context, selfie, documentPhoto Image) (FaceMatchResult, error) {
	if selfie.IsEmpty() {
		return FaceMatchResult{}, NewProviderError(ErrorMissingInput, c.api.providerID,
			"selfie image is required", nil)
	}
	if documentPhoto.IsEmpty() {
		return FaceMatchResult{}, NewProviderError(ErrorMissingInput, c.api.providerID,
			"document photo is required", nil)
	}

	files := []multipartFile{
		{field: "selfie", name: selfie.Name, data: selfie.Data},
		{field: "document", name: documentPhoto.Name, data: documentPhoto.Data},
	}

	var resp faceMatchResponse
	if err := c.api.postMultipart(ctx, "/v1/face/verify", files, &resp); err != nil {
		return FaceMatchResult{}, err
	}

	match, _ := strconv.ParseBool(resp.IsSamePerson)
	return FaceMatchResult{
		OK:      true,
		Score:   resp.Confidence,
		Match:   match,
		Message: resp.ErrorMessage,
	}, nil
}
