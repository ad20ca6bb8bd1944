package api

import (
	"github.com/starford/odl/internal/catalog"
	"github.com/starford/odl/internal/index"
)

// UploadResponse is returned after a program is stored.
type UploadResponse struct {
	Path string `json:"path" example:"uploads/0b7c1f9e-6f0e-4e53-9d2b-5a1e3f1d2c4b.yaml" validate:"required"`
}

// ProgramDetail is the full program response type (aliased from the domain layer).
type ProgramDetail = catalog.ProgramDetail

// EstimateResult is the program time estimate (aliased from the domain layer).
type EstimateResult = catalog.EstimateResult

// ProgramItem is one indexed program in a list response.
type ProgramItem = index.ProgramRow

// ProgramListResponse wraps program listings.
type ProgramListResponse struct {
	Programs []ProgramItem `json:"programs" validate:"required"`
	Total    int           `json:"total" example:"3" validate:"required"`
}

// SearchResult is a single search hit in the API response.
type SearchResult = index.SearchResult

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results" validate:"required"`
}

// ReferrersResponse lists the definitions that use a named one.
type ReferrersResponse struct {
	Name      string   `json:"name" example:"NGC 1068" validate:"required"`
	Referrers []string `json:"referrers" validate:"required"`
}
