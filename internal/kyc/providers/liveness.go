package providers

import (
	"context"
	"strconv"
	"time"
)

// HTTPLivenessClient checks physical presence from one or more frames.
// Liveness never fails hard: a missing capture or provider problem degrades
// to Passed=false so the applicant is asked to recapture instead of seeing
// an error screen.
type HTTPLivenessClient struct {
	api httpAPI
}

func NewHTTPLivenessClient(baseURL, apiKey string, timeout time.Duration) *HTTPLivenessClient {
	return &HTTPLivenessClient{api: newHTTPAPI("liveness", baseURL, apiKey, timeout)}
}

type livenessResponse struct {
	Passed bool    `json:"passed"`
	Score  float64 `json:"score"`
}

func (c *HTTPLivenessClient) Check(ctx context.Context, frames []Image) (LivenessResult, error) {
	files := make([]multipartFile, 0, len(frames))
	for i, frame := range frames {
		if frame.IsEmpty() {
			continue
		}
		files = append(files, multipartFile{field: "frame" + strconv.Itoa(i), name: frame.Name, data: frame.Data})
	}
	if len(files) == 0 {
		return LivenessResult{Passed: false}, nil
	}

	var resp livenessResponse
	if err := c.api.postMultipart(ctx, "/v1/liveness/check", files, &resp); err != nil {
		return LivenessResult{Passed: false}, nil
	}
	return LivenessResult{Passed: resp.Passed, Score: resp.Score}, nil
}
