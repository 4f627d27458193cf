package domain

import (
	"time"
)

// EventType represents the type of marketplace provenance event
type EventType string

const (
	EventTypeCreated      EventType = "created"
	EventTypeSold         EventType = "sold"
	EventTypeCancelled    EventType = "cancelled"
	EventTypeBidEntered   EventType = "bid_entered"
	EventTypeBidWithdrawn EventType = "bid_withdrawn"
	EventTypeTransferred  EventType = "transferred"
	EventTypeOfferEntered EventType = "offer_entered"
	EventTypeApproved     EventType = "approved"
)

// Trait represents a single descriptive attribute of an asset
type Trait struct {
	TraitType string      `json:"trait_type"`
	Value     interface{} `json:"value"`
}

// Asset represents one token as discovered from the marketplace listing endpoint.
// Immutable once discovered.
type Asset struct {
	ContractAddress  string  `json:"asset_contract_address"`
	TokenID          string  `json:"token_id"`
	Name             string  `json:"name"`
	Description      string  `json:"description"`
	ImageURL         string  `json:"image_url"`
	ImageOriginalURL string  `json:"image_original_url,omitempty"`
	Traits           []Trait `json:"traits"`
	CollectionSlug   string  `json:"collection_slug"`
}

// OwnershipRecord represents one historical owner of an asset.
// CreatedAt is the timestamp the ownership began.
type OwnershipRecord struct {
	OwnerAddress string    `json:"owner_address"`
	Quantity     string    `json:"quantity"`
	CreatedAt    time.Time `json:"created_at"`
}

// AccountRef is a weak reference to a marketplace account involved in an event
type AccountRef struct {
	Address string `json:"address"`
}

// PriceInfo carries the sale price details of a trade event
type PriceInfo struct {
	Amount        string `json:"amount,omitempty"`
	PaymentSymbol string `json:"payment_symbol,omitempty"`
}

// ProvenanceEvent represents one trade or transfer event in an asset's history.
// The asset back-reference returned by the marketplace is stripped before
// persistence; it is never an ownership edge.
type ProvenanceEvent struct {
	EventType   EventType   `json:"event_type"`
	CreatedAt   time.Time   `json:"created_date"`
	FromAccount *AccountRef `json:"from_account,omitempty"`
	ToAccount   *AccountRef `json:"to_account,omitempty"`
	Price       *PriceInfo  `json:"price,omitempty"`
}

// HarvestedRecord is the on-disk record of one fully enriched asset.
// One file per original token id, never mutated after write; re-harvesting
// a token overwrites the file wholesale.
type HarvestedRecord struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	ImagePath   string            `json:"image"`
	Attributes  []Trait           `json:"attributes"`
	Owners      []OwnershipRecord `json:"owners"`
	Events      []ProvenanceEvent `json:"events"`
}

// NormalizedRecord is a HarvestedRecord renumbered into the sequential corpus.
// IDs are assigned 1..N in ascending provenance-timestamp order.
type NormalizedRecord struct {
	ID                   int     `json:"id"`
	Name                 string  `json:"name"`
	Description          string  `json:"description"`
	ImagePath            string  `json:"image"`
	OriginalCreationDate *string `json:"original_creation_date"`
	Attributes           []Trait `json:"attributes"`

	Owners []OwnershipRecord `json:"owners"`
	Events []ProvenanceEvent `json:"events"`
}

// ProvenanceTimestamp returns the earliest known event or ownership time of
// the record. Events take precedence; owners are the legacy fallback. The
// boolean is false when the record carries neither.
func (r *HarvestedRecord) ProvenanceTimestamp() (time.Time, bool) {
	if ts, ok := earliest(r.Events, func(e ProvenanceEvent) time.Time { return e.CreatedAt }); ok {
		return ts, true
	}
	return earliest(r.Owners, func(o OwnershipRecord) time.Time { return o.CreatedAt })
}

func earliest[T any](items []T, at func(T) time.Time) (time.Time, bool) {
	var min time.Time
	found := false
	for _, item := range items {
		ts := at(item)
		if ts.IsZero() {
			continue
		}
		if !found || ts.Before(min) {
			min = ts
			found = true
		}
	}
	return min, found
}
