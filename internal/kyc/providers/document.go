package providers

import (
	"context"
	"time"
)

// HTTPDocumentClient performs document OCR plus the nominal-list lookup the
// provider bundles into the same response. Endpoint shape follows the
// /id-card-extraction contract: multipart upload, apikey header, JSON out.
type HTTPDocumentClient struct {
	api httpAPI
}

func NewHTTPDocumentClient(baseURL, apiKey string, timeout time.Duration) *HTTPDocumentClient {
	return &HTTPDocumentClient{api: newHTTPAPI("document-ocr", baseURL, apiKey, timeout)}
}

type documentResponse struct {
	Valid            bool   `json:"valid"`
	NominalListValid bool   `json:"nominal_list_valid"`
	ErrorMessage     string `json:"error_message,omitempty"`
	Fields           struct {
		FirstName       string `json:"first_name"`
		PaternalSurname string `json:"paternal_surname"`
		MaternalSurname string `json:"maternal_surname"`
		CURP            string `json:"curp"`
		DateOfBirth     string `json:"date_of_birth"`
		Sex             string `json:"sex"`
		PhotoCrop       []byte `json:"photo_crop"`
		Address         struct {
			Street         string `json:"street"`
			ExteriorNumber string `json:"exterior_number"`
			InteriorNumber string `json:"interior_number"`
			Neighborhood   string `json:"neighborhood"`
			PostalCode     string `json:"postal_code"`
			Municipality   string `json:"municipality"`
			State          string `json:"state"`
		} `json:"address"`
	} `json:"fields"`
}

// Validate extracts identity fields from the document images. The front image
// is required and its absence fails before any network call. The back image
// is optional; when present it improves nominal-list confidence.
func (c *HTTPDocumentClient) Validate(ctx context.Context, front, back Image) (DocumentResult, error) {
	if front.IsEmpty() {
		return DocumentResult{}, NewProviderError(ErrorMissingInput, c.api.providerID,
			"front document image is required", nil)
	}

	files := []multipartFile{{field: "front", name: front.Name, data: front.Data}}
	if !back.IsEmpty() {
		files = append(files, multipartFile{field: "back", name: back.Name, data: back.Data})
	}

	var resp documentResponse
	if err := c.api.postMultipart(ctx, "/v1/document/extract", files, &resp); err != nil {
		return DocumentResult{}, err
	}

	result := DocumentResult{
		OK:               resp.Valid,
		NominalListValid: resp.NominalListValid,
		Message:          resp.ErrorMessage,
	}
	result.Fields = IdentityFields{
		FirstName:       resp.Fields.FirstName,
		PaternalSurname: resp.Fields.PaternalSurname,
		MaternalSurname: resp.Fields.MaternalSurname,
		CURP:            resp.Fields.CURP,
		DateOfBirth:     resp.Fields.DateOfBirth,
		Sex:             resp.Fields.Sex,
		PhotoCrop:       resp.Fields.PhotoCrop,
		Address: Address{
			Street:         resp.Fields.Address.Street,
			ExteriorNumber: resp.Fields.Address.ExteriorNumber,
			InteriorNumber: resp.Fields.Address.InteriorNumber,
			Neighborhood:   resp.Fields.Address.Neighborhood,
			PostalCode:     resp.Fields.Address.PostalCode,
			Municipality:   resp.Fields.Address.Municipality,
			State:          resp.Fields.Address.State,
		},
	}
	return result, nil
}
