package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/backflowdir/discovery/models"
	"github.com/backflowdir/discovery/paging"
	"github.com/backflowdir/discovery/web"
)

type searchResponse struct {
	Resolved     bool           `json:"resolved"`
	RateLimited  bool           `json:"rate_limited,omitempty"`
	Location     *locationItem  `json:"location,omitempty"`
	Page         pageInfo       `json:"page"`
	Listings     []listingItem  `json:"listings"`
	NearbyCities []locationItem `json:"nearby_cities,omitempty"`
	ContentIDs   []string       `json:"content_ids,omitempty"`
}

type pageInfo struct {
	Page     int  `json:"page"`
	PageSize int  `json:"page_size"`
	Total    int  `json:"total"`
	HasMore  bool `json:"has_more"`
}

type locationItem struct {
	Name      string  `json:"name"`
	Slug      string  `json:"slug"`
	StateCode string  `json:"state_code"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type listingItem struct {
	ID            string   `json:"id"`
	Slug          string   `json:"slug"`
	Name          string   `json:"name"`
	Phone         string   `json:"phone,omitempty"`
	Website       string   `json:"website,omitempty"`
	City          string   `json:"city"`
	StateCode     string   `json:"state_code"`
	Rating        *float64 `json:"rating,omitempty"`
	ReviewCount   int      `json:"review_count"`
	Tier          string   `json:"tier"`
	Tags          []string `json:"tags,omitempty"`
	DistanceMiles float64  `json:"distance_miles"`
	Promoted      bool     `json:"promoted"`
}

// Search serves one discovery page for a location path segment like
// "tampa-fl". Redirects and not-found come straight from the pagination
// outcome; an unresolvable location still renders a degraded page.
func (h *SearchHandlers) Search(w http.ResponseWriter, r *http.Request) {
	location := mux.Vars(r)["location"]
	if location == "" {
		renderJSON(w, http.StatusUnprocessableEntity, models.APIError{Code: http.StatusUnprocessableEntity, Message: "missing location"})
		return
	}

	result, err := h.Deps.Search.Search(r.Context(), web.SearchRequest{
		Location: location,
		ClientID: clientIP(r),
		BasePath: r.URL.Path,
		Query:    r.URL.Query(),
	})
	if err != nil {
		h.Deps.Logger.Error("search failed", zap.String("location", location), zap.Error(err))
		renderJSON(w, http.StatusInternalServerError, models.APIError{Code: http.StatusInternalServerError, Message: http.StatusText(http.StatusInternalServerError)})

		return
	}

	switch result.Page.State {
	case paging.StateRedirect:
		http.Redirect(w, r, result.Page.RedirectURL, http.StatusMovedPermanently)
		return
	case paging.StateNotFound:
		renderJSON(w, http.StatusNotFound, models.APIError{Code: http.StatusNotFound, Message: http.StatusText(http.StatusNotFound)})
		return
	}

	renderJSON(w, http.StatusOK, toSearchResponse(result))
}

// Health reports process liveness and database reachability.
func (h *SearchHandlers) Health(w http.ResponseWriter, r *http.Request) {
	if h.Deps.DB != nil {
		if err := h.Deps.DB.PingContext(r.Context()); err != nil {
			renderJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
	}

	renderJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func toSearchResponse(result web.SearchResult) searchResponse {
	resp := searchResponse{
		Resolved:    result.Resolution.Resolved,
		RateLimited: result.Resolution.RateLimited,
		Page: pageInfo{
			Page:     result.Page.Page,
			PageSize: result.Page.PageSize,
			Total:    result.Page.Total,
			HasMore:  result.Page.HasMore,
		},
		Listings:   make([]listingItem, 0, len(result.Listings)),
		ContentIDs: result.ContentIDs,
	}

	if result.Resolution.Resolved {
		loc := result.Resolution.Location
		resp.Location = &locationItem{
			Name:      loc.Name,
			Slug:      loc.Slug,
			StateCode: loc.StateCode,
			Latitude:  loc.Latitude,
			Longitude: loc.Longitude,
		}
	}

	for _, c := range result.Listings {
		resp.Listings = append(resp.Listings, listingItem{
			ID:            c.ID,
			Slug:          c.Slug,
			Name:          c.Name,
			Phone:         c.Phone,
			Website:       c.Website,
			City:          c.City,
			StateCode:     c.StateCode,
			Rating:        c.Rating,
			ReviewCount:   c.ReviewCount,
			Tier:          c.Tier,
			Tags:          c.Tags,
			DistanceMiles: c.DistanceMiles,
			Promoted:      c.Promoted,
		})
	}

	for _, city := range result.NearbyCities {
		resp.NearbyCities = append(resp.NearbyCities, locationItem{
			Name:      city.Name,
			Slug:      city.Slug,
			StateCode: city.StateCode,
			Latitude:  city.Latitude,
			Longitude: city.Longitude,
		})
	}

	return resp
}
