package entity

import "encoding/json"

// ExchangeStatus is the lifecycle state of a barter proposal.
type ExchangeStatus string

const (
	ExchangePending   ExchangeStatus = "PENDING"
	ExchangeAccepted  ExchangeStatus = "ACCEPTED"
	ExchangeRejected  ExchangeStatus = "REJECTED"
	ExchangeCompleted ExchangeStatus = "COMPLETED"
)

// ExchangeRole is the position of a given user within an exchange.
type ExchangeRole string

const (
	RoleOwner     ExchangeRole = "owner"
	RoleRequester ExchangeRole = "requester"
	RoleUnknown   ExchangeRole = "unknown"
)

// Exchange is a proposed barter of one product for another between two
// users. The owner holds the desired product; the requester proposed the
// swap and offers their own.
type Exchange struct {
	ExchangeID     ID             `json:"exchangeId"`
	OwnerID        ID             `json:"ownerId"`
	RequesterID    ID             `json:"requesterId"`
	Products       []Product      `json:"products"`
	Status         ExchangeStatus `json:"status"`
	ExchangeDate   string         `json:"exchangeDate,omitempty"`
	CompletionDate string         `json:"completionDate,omitempty"`
}

// exchangeWire mirrors the two historical shapes the backend emits: the
// counter-party identities appear either as "ownerId"/"requesterId" numbers
// or under the older "owner"/"requester" keys, sometimes as embedded user
// records. Both shapes must be read and treated as one logical field.
type exchangeWire struct {
	ExchangeID     ID              `json:"exchangeId"`
	OwnerID        ID              `json:"ownerId"`
	Owner          json.RawMessage `json:"owner"`
	RequesterID    ID              `json:"requesterId"`
	Requester      json.RawMessage `json:"requester"`
	Products       []Product       `json:"products"`
	Status         ExchangeStatus  `json:"status"`
	ExchangeDate   string          `json:"exchangeDate"`
	CompletionDate string          `json:"completionDate"`
}

// UnmarshalJSON normalises the aliased owner/requester fields into the
// canonical identities before any role logic can run on the record.
func (e *Exchange) UnmarshalJSON(data []byte) error {
	var w exchangeWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*e = Exchange{
		ExchangeID:     w.ExchangeID,
		OwnerID:        firstValidID(w.OwnerID, idFromAlias(w.Owner)),
		RequesterID:    firstValidID(w.RequesterID, idFromAlias(w.Requester)),
		Products:       w.Products,
		Status:         w.Status,
		ExchangeDate:   w.ExchangeDate,
		CompletionDate: w.CompletionDate,
	}
	return nil
}

// RoleFor derives the viewer's role from the canonical identities. Users
// party to neither side, and anonymous viewers, are unknown and read-only.
func (e Exchange) RoleFor(userID ID) ExchangeRole {
	if !userID.Valid() {
		return RoleUnknown
	}
	switch userID {
	case e.OwnerID:
		return RoleOwner
	case e.RequesterID:
		return RoleRequester
	}
	return RoleUnknown
}

// Sides splits the exchange's products into what the viewer receives and
// what the viewer gives, by comparing each product's owning user against the
// role-appropriate counter-party. No stored "side" tag is assumed. Products
// with an unresolvable owning identity are excluded from both sides.
func (e Exchange) Sides(userID ID) (receive, give []Product) {
	var mine, theirs ID
	switch e.RoleFor(userID) {
	case RoleOwner:
		mine, theirs = e.OwnerID, e.RequesterID
	case RoleRequester:
		mine, theirs = e.RequesterID, e.OwnerID
	default:
		return nil, nil
	}
	for _, p := range e.Products {
		if !p.UserID.Valid() {
			continue
		}
		switch p.UserID {
		case theirs:
			receive = append(receive, p)
		case mine:
			give = append(give, p)
		}
	}
	return receive, give
}

// ExchangeProposal carries the four identities needed to open a barter.
type ExchangeProposal struct {
	OwnerID            ID `json:"ownerId"`
	RequesterID        ID `json:"requesterId"`
	OwnerProductID     ID `json:"ownerProductId"`
	RequesterProductID ID `json:"requesterProductId"`
}

func firstValidID(ids ...ID) ID {
	for _, id := range ids {
		if id.Valid() {
			return id
		}
	}
	return 0
}

// idFromAlias reads a legacy alias value: either a bare numeric identity or
// an embedded user record carrying a "userId" field.
func idFromAlias(raw json.RawMessage) ID {
	if len(raw) == 0 {
		return 0
	}
	var id ID
	if err := json.Unmarshal(raw, &id); err == nil && id.Valid() {
		return id
	}
	var embedded struct {
		UserID ID `json:"userId"`
	}
	if err := json.Unmarshal(raw, &embedded); err == nil {
		return embedded.UserID
	}
	return 0
}
