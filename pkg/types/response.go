package types

import "github.com/sarisari/backoffice/pkg/pagination"

// Envelope is the JSON body shared by every API response.
type Envelope struct {
	Success    bool             `json:"success"`
	Message    string           `json:"message"`
	Data       any              `json:"data,omitempty"`
	Pagination *pagination.Info `json:"pagination,omitempty"`
	Code       string           `json:"code,omitempty"`
	Details    any              `json:"details,omitempty"`
}
