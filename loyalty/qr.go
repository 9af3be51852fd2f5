package loyalty

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ActionRedeemReward marks a QR payload that requests redemption instead of
// a progress scan.
const ActionRedeemReward = "redeem_reward"

// DefaultOfferID is the sentinel the legacy QR format carries in place of a
// real offer id. It resolves to the target user's current offer.
const DefaultOfferID = "default_offer"

// legacyPrefix is the old colon-delimited card format: LOYALTY:{email}:{uid}
const legacyPrefix = "LOYALTY:"

// QRPayload is the decoded content of a scanned loyalty QR code.
type QRPayload struct {
	UserID    uuid.UUID `json:"userId"`
	UserEmail string    `json:"userEmail"`
	OfferID   string    `json:"offerId"`
	Action    string    `json:"action,omitempty"`
	RewardID  string    `json:"rewardId,omitempty"`
}

// ParseQRPayload decodes a raw scanned string. Structured payloads are JSON;
// the legacy text format is still accepted and defaults the offer to the
// default_offer sentinel.
func ParseQRPayload(raw string) (*QRPayload, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("empty QR payload")
	}

	if strings.HasPrefix(raw, legacyPrefix) {
		parts := strings.Split(raw, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("malformed legacy QR payload")
		}
		userID, err := uuid.Parse(parts[2])
		if err != nil {
			return nil, fmt.Errorf("invalid user id in legacy QR payload: %w", err)
		}
		return &QRPayload{
			UserID:    userID,
			UserEmail: parts[1],
			OfferID:   DefaultOfferID,
		}, nil
	}

	var payload QRPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("invalid QR payload: %w", err)
	}
	if payload.UserID == uuid.Nil {
		return nil, fmt.Errorf("QR payload missing user id")
	}
	return &payload, nil
}
