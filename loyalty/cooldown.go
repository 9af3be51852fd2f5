package loyalty

import "time"

// Cooldown describes whether a user may be scanned now and, if not, when
// they become eligible again.
type Cooldown struct {
	CanScan        bool          `json:"can_scan"`
	Remaining      time.Duration `json:"-"`
	NextEligibleAt time.Time     `json:"next_eligible_at"`
}

// DeriveCooldown applies the calendar-midnight cooldown policy: after an
// accepted scan the user is eligible again at the next local midnight, not
// on a rolling 24h window. A scan at 23:50 permits another at 00:00.
//
// The same derivation backs both the scan-acceptance gate and the countdown
// shown to users, so the two can never disagree.
func DeriveCooldown(lastScanAt *time.Time, now time.Time) Cooldown {
	if lastScanAt == nil {
		return Cooldown{CanScan: true}
	}

	last := lastScanAt.In(now.Location())
	nextMidnight := time.Date(last.Year(), last.Month(), last.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)

	if !now.Before(nextMidnight) {
		return Cooldown{CanScan: true}
	}

	return Cooldown{
		CanScan:        false,
		Remaining:      nextMidnight.Sub(now),
		NextEligibleAt: nextMidnight,
	}
}
