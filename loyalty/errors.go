package loyalty

import (
	"errors"
	"fmt"
	"time"
)

// Domain errors surfaced verbatim to callers. None are retried internally;
// handlers translate them to HTTP statuses.
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrOfferNotFound = errors.New("offer not found")

	// ErrOfferInactive rejects scans that would start a new collection
	// cycle on a deactivated offer. Users already collecting are not
	// affected (grandfathering).
	ErrOfferInactive = errors.New("offer is not active")

	// ErrOfferActive rejects edits and deletes of an active offer. Offers
	// must be deactivated before they can change.
	ErrOfferActive = errors.New("offer is active and cannot be modified")

	// ErrAlreadyCompleted rejects scans against an offer whose current
	// reward is completed but unclaimed. A new cycle starts only after
	// the completed reward is redeemed.
	ErrAlreadyCompleted = errors.New("reward already completed; redeem it before collecting again")

	ErrOffersInUse    = errors.New("offer has active collectors and cannot be deleted")
	ErrRewardNotFound = errors.New("reward not found")
	ErrNotCompleted   = errors.New("reward is not completed yet")
	ErrAlreadyClaimed = errors.New("reward has already been claimed")
	ErrUnauthorized   = errors.New("not authorized for this operation")

	// ErrConcurrentModification reports a lost optimistic-concurrency race
	// on the user row. The caller may retry the scan.
	ErrConcurrentModification = errors.New("concurrent modification detected, please retry")
)

// CooldownError reports a scan rejected by the daily cooldown gate.
type CooldownError struct {
	LastScanAt     time.Time
	Remaining      time.Duration
	NextEligibleAt time.Time
}

func (e *CooldownError) Error() string {
	hours := e.Remaining.Hours()
	return fmt.Sprintf("already scanned today at %s; next scan available in %.1f hours",
		e.LastScanAt.Format("15:04"), hours)
}
