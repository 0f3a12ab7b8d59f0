package models

import "time"

// Subscription tiers. Only premium and pro qualify for location promotion.
const (
	TierNone    = "none"
	TierStarter = "starter"
	TierPremium = "premium"
	TierPro     = "pro"
)

// Subscription statuses as stored by the billing collaborator.
const (
	SubscriptionActive   = "active"
	SubscriptionInactive = "inactive"
	SubscriptionPastDue  = "past_due"
	SubscriptionCanceled = "canceled"
)

// Listing is a provider record as read from the providers table. Override
// columns (owner-edited name, phone, website) are resolved by the store, so
// the fields here always carry the effective values.
type Listing struct {
	ID            string // Google place ID, the stable primary key
	Slug          string
	Name          string
	Phone         string
	Website       string
	City          string
	CitySlug      string
	StateCode     string
	PostalCode    string
	Latitude      *float64
	Longitude     *float64
	Rating        *float64 // 0-5, nil when the listing has no reviews yet
	ReviewCount   int
	QualityScore  float64 // composite relevance score from ingestion
	Tier          string  // ingestion tier label, e.g. "standard", "verified"
	Verified      bool
	PromotionRank int // manually curated tie-break, higher ranks first
	Tags          []string
}

// HasCoordinates reports whether the listing can participate in proximity
// search at all.
func (l *Listing) HasCoordinates() bool {
	return l.Latitude != nil && l.Longitude != nil
}

// HasAllTags reports whether the listing's tag set is a superset of want.
func (l *Listing) HasAllTags(want []string) bool {
	if len(want) == 0 {
		return true
	}
	set := make(map[string]struct{}, len(l.Tags))
	for _, t := range l.Tags {
		set[t] = struct{}{}
	}
	for _, t := range want {
		if _, ok := set[t]; !ok {
			return false
		}
	}
	return true
}

// Candidate is a listing retrieved by proximity search together with its
// per-query computed attributes. Promoted is never persisted: it depends on
// the query center and must be recomputed for every request.
type Candidate struct {
	Listing
	DistanceMiles float64
	Promoted      bool
}

// Subscription associates a listing with a paid tier. Read-only here; the
// billing collaborator owns the lifecycle.
type Subscription struct {
	ListingID string
	Tier      string
	Status    string
	ExpiresAt time.Time
}

// QualifiesForPromotion reports whether the subscription alone satisfies the
// tier and status conjuncts. Distance and ownership are checked separately.
func (s *Subscription) QualifiesForPromotion() bool {
	return s.Status == SubscriptionActive && (s.Tier == TierPremium || s.Tier == TierPro)
}

// Ownership associates a listing with a verified controlling party.
type Ownership struct {
	ListingID  string
	Verified   bool
	VerifiedAt time.Time
}

// Location is a resolved query center. Ephemeral: built per request,
// discarded after rendering.
type Location struct {
	Name      string
	Slug      string
	StateCode string
	Latitude  float64
	Longitude float64
	RawInput  string
	Source    string // which resolver tier produced it
}

// City is a locality row from the cities table.
type City struct {
	Name          string
	Slug          string
	StateCode     string
	Latitude      float64
	Longitude     float64
	ProviderCount int
}

// APIError is the JSON error envelope returned by every API endpoint.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
