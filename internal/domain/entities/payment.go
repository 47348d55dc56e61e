package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// PaymentStatus represents payment status
type PaymentStatus string

const (
	PaymentStatusPending              PaymentStatus = "pending"
	PaymentStatusAwaitingConfirmation PaymentStatus = "awaiting_confirmation"
	PaymentStatusConfirmed            PaymentStatus = "confirmed"
	PaymentStatusExpired              PaymentStatus = "expired"
	PaymentStatusFailed               PaymentStatus = "failed"
	PaymentStatusCancelled            PaymentStatus = "cancelled"
)

// IsTerminal reports whether no further transition is legal.
func (s PaymentStatus) IsTerminal() bool {
	switch s {
	case PaymentStatusConfirmed, PaymentStatusExpired, PaymentStatusFailed, PaymentStatusCancelled:
		return true
	}
	return false
}

// PaymentExpiry is the window a payer has to settle on chain.
const PaymentExpiry = 30 * time.Minute

// Payment is a single purchase attempt. The sender address is stored only
// as an AES-GCM envelope plus a deterministic HMAC for indexed lookup.
type Payment struct {
	ID                     uuid.UUID     `json:"id"`
	TenantID               string        `json:"tenantId"`
	ExternalUserID         string        `json:"externalUserId"`
	PlanID                 uuid.UUID     `json:"planId"`
	Amount                 string        `json:"amount"`
	Token                  Token         `json:"token"`
	Network                Network       `json:"network"`
	SenderAddressEncrypted string        `json:"-"`
	SenderAddressHMAC      string        `json:"-"`
	ReceiverAddress        string        `json:"receiverAddress"`
	Status                 PaymentStatus `json:"status"`
	TxHash                 null.String   `json:"txHash,omitempty"`
	Confirmations          int           `json:"confirmations"`
	TxConfirmedAt          *time.Time    `json:"txConfirmedAt,omitempty"`
	ErrorMessage           null.String   `json:"errorMessage,omitempty"`
	RetryCount             int           `json:"retryCount"`
	ExpiresAt              time.Time     `json:"expiresAt"`
	CreatedAt              time.Time     `json:"createdAt"`
	UpdatedAt              time.Time     `json:"updatedAt"`
}

// InitiatePaymentInput is the payment creation payload.
type InitiatePaymentInput struct {
	ExternalUserID string `json:"externalUserId" binding:"required"`
	PlanID         string `json:"planId" binding:"required"`
	Network        string `json:"network" binding:"required"`
	Token          string `json:"token" binding:"required"`
	SenderAddress  string `json:"senderAddress" binding:"required"`
}

// Placement tells the payer where and how much to send.
type Placement struct {
	PaymentID       uuid.UUID `json:"paymentId"`
	ReceiverAddress string    `json:"receiverAddress"`
	Amount          string    `json:"amount"`
	Token           Token     `json:"token"`
	Network         Network   `json:"network"`
	ExpiresAt       time.Time `json:"expiresAt"`
	ExpiresIn       int       `json:"expiresIn"`
	QRCodeData      string    `json:"qrCodeData"`
	Instructions    []string  `json:"instructions"`
}

// PaymentStatusView is the polling view of a payment.
type PaymentStatusView struct {
	PaymentID     uuid.UUID     `json:"paymentId"`
	Status        PaymentStatus `json:"status"`
	Amount        string        `json:"amount"`
	Token         Token         `json:"token"`
	Network       Network       `json:"network"`
	ExpiresIn     *int          `json:"expiresIn,omitempty"`
	TxHash        string        `json:"txHash,omitempty"`
	ExplorerURL   string        `json:"explorerUrl,omitempty"`
	Confirmations int           `json:"confirmations,omitempty"`
	ErrorMessage  string        `json:"errorMessage,omitempty"`
}
