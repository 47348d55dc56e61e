package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// OfacSanctionedAddress is one digital-currency address from the SDN list.
// The full set is replaced on every ingestion run.
type OfacSanctionedAddress struct {
	ID           uuid.UUID `json:"id"`
	Address      string    `json:"address"`
	AddressLower string    `json:"addressLower"`
	AddressType  string    `json:"addressType"`
	SDNName      string    `json:"sdnName"`
	SDNID        string    `json:"sdnId"`
	Source       string    `json:"source"`
	LastSeenAt   time.Time `json:"lastSeenAt"`
}

// OfacUpdateLog is the append-only history of ingestion runs.
type OfacUpdateLog struct {
	ID             uuid.UUID   `json:"id"`
	TotalAddresses int         `json:"totalAddresses"`
	NewAddresses   int         `json:"newAddresses"`
	Removed        int         `json:"removed"`
	Success        bool        `json:"success"`
	Error          null.String `json:"error,omitempty"`
	CreatedAt      time.Time   `json:"createdAt"`
}

// OfacCheckResult is the screening answer for one address.
type OfacCheckResult struct {
	IsSanctioned   bool                    `json:"isSanctioned"`
	MatchedEntries []OfacSanctionedAddress `json:"matchedEntries"`
	CheckedAt      time.Time               `json:"checkedAt"`
}

// OfacStatus summarizes the current list and the last ingestion run.
type OfacStatus struct {
	LastUpdate        *time.Time     `json:"lastUpdate,omitempty"`
	TotalAddresses    int            `json:"totalAddresses"`
	LastUpdateSuccess bool           `json:"lastUpdateSuccess"`
	AddressTypes      map[string]int `json:"addressTypes"`
}
