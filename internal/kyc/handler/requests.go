package handler

import (
	"strings"

	id "origen/pkg/domain"
	dErrors "origen/pkg/domain-errors"
)

// StartSessionRequest is the HTTP request body for POST /kyc/sessions.
type StartSessionRequest struct {
	ProductID string `json:"product_id"`

	parsedProductID id.ProductID
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *StartSessionRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	r.ProductID = strings.TrimSpace(r.ProductID)
	if r.ProductID == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "product_id is required")
	}

	productID, err := id.ParseProductID(r.ProductID)
	if err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "product_id must be a valid UUID")
	}
	r.parsedProductID = productID
	return nil
}

// ParsedProductID returns the validated product ID.
func (r *StartSessionRequest) ParsedProductID() id.ProductID {
	return r.parsedProductID
}
