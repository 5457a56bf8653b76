package server

import "github.com/sig-0/tcventanilla/storage/types"

type RatesResponse struct {
	Results []*types.ExchangeRate `json:"results"`
}

type SourcesResponse struct {
	Results []types.Source `json:"results"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
