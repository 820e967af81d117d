package dto

import (
	"time"

	"github.com/SscSPs/valutatrade_hub/internal/core/domain"
)

// ListRatesParams defines query parameters of GET /rates.
type ListRatesParams struct {
	Currency string `form:"currency" binding:"omitempty,currency_code"`
	Top      int    `form:"top" binding:"omitempty,min=1"`
	Base     string `form:"base" binding:"omitempty,currency_code"`
}

// ToFilter converts the query parameters to a domain filter.
func (p ListRatesParams) ToFilter() domain.RateListFilter {
	return domain.RateListFilter{Currency: p.Currency, Top: p.Top, Base: p.Base}
}

// RateResponse is one cached rate.
type RateResponse struct {
	Pair      string    `json:"pair"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Rate      float64   `json:"rate"`
	UpdatedAt time.Time `json:"updatedAt"`
	Source    string    `json:"source"`
}

// ListRatesResponse wraps a cache listing.
type ListRatesResponse struct {
	Rates       []RateResponse `json:"rates"`
	LastRefresh *time.Time     `json:"lastRefresh"`
}

// ToListRatesResponse converts a domain.RateListing to ListRatesResponse DTO
func ToListRatesResponse(listing *domain.RateListing) ListRatesResponse {
	rates := make([]RateResponse, len(listing.Entries))
	for i, e := range listing.Entries {
		rates[i] = RateResponse{
			Pair:      e.Pair.Key(),
			From:      e.Pair.From,
			To:        e.Pair.To,
			Rate:      e.Rate,
			UpdatedAt: e.UpdatedAt,
			Source:    e.Source,
		}
	}
	return ListRatesResponse{Rates: rates, LastRefresh: listing.LastRefresh}
}

// RateQuoteResponse is the body of GET /rates/:from/:to.
type RateQuoteResponse struct {
	From        string     `json:"from"`
	To          string     `json:"to"`
	Rate        float64    `json:"rate"`
	ReverseRate float64    `json:"reverseRate"`
	UpdatedAt   *time.Time `json:"updatedAt"`
	Source      string     `json:"source"`
}

// ToRateQuoteResponse converts a domain.RateQuote to RateQuoteResponse DTO
func ToRateQuoteResponse(q *domain.RateQuote) RateQuoteResponse {
	return RateQuoteResponse{
		From:        q.Pair.From,
		To:          q.Pair.To,
		Rate:        q.Rate,
		ReverseRate: q.ReverseRate,
		UpdatedAt:   q.UpdatedAt,
		Source:      q.Source,
	}
}

// UpdateRatesRequest is the optional body of POST /rates/update.
type UpdateRatesRequest struct {
	Source string `json:"source" binding:"omitempty,oneof=all coingecko exchangerate"`
}

// UpdateRatesResponse reports an update run; Errors lists failed providers.
type UpdateRatesResponse struct {
	TotalRates  int       `json:"totalRates"`
	LastRefresh time.Time `json:"lastRefresh"`
	Errors      []string  `json:"errors"`
}

// ToUpdateRatesResponse converts a domain.UpdateResult to UpdateRatesResponse DTO
func ToUpdateRatesResponse(r *domain.UpdateResult) UpdateRatesResponse {
	errs := r.Errors
	if errs == nil {
		errs = []string{}
	}
	return UpdateRatesResponse{TotalRates: r.TotalRates, LastRefresh: r.LastRefresh, Errors: errs}
}
