package policy

import (
	"fmt"
	"slices"
	"time"
)

// Decision is the outcome of evaluating a section against the current time.
type Decision struct {
	// Create is true when no existing snapshot covers the current bucket.
	Create bool
	// Target is the name of the snapshot to create. It is derived from the
	// un-offset current time, the offset only affects bucket membership.
	Target string
	// NowKey is the bucket of the offset current time.
	NowKey BucketKey
	// CoveredBy is the oldest existing snapshot in the current bucket, if any.
	CoveredBy *Snapshot
	Reason    string

	existing []Snapshot
	amount   int
}

// Evaluate decides whether a new snapshot is needed for section at now.
// existing must be sorted by ascending timestamp.
//
// Logic:
//  1. Shifts now and every existing snapshot by the section offset.
//  2. Buckets all of them with the section scheme.
//  3. Requests a snapshot only if no existing snapshot shares now's bucket.
func Evaluate(now time.Time, section Section, existing []Snapshot) Decision {
	nowKey := section.Scheme.BucketKey(AddDays(now, section.Offset))

	d := Decision{
		Target:   FormatTimestamp(now),
		NowKey:   nowKey,
		existing: existing,
		amount:   section.Amount,
	}

	idx := slices.IndexFunc(existing, func(s Snapshot) bool {
		return section.Scheme.BucketKey(AddDays(s.When, section.Offset)) == nowKey
	})

	if idx >= 0 {
		covered := existing[idx]
		d.CoveredBy = &covered
		d.Reason = fmt.Sprintf("Current %s interval already covered by %s", section.Scheme, covered.Path)
		return d
	}

	d.Create = true
	d.Reason = fmt.Sprintf("No snapshot found in current %s interval", section.Scheme)
	return d
}

// Expired returns the snapshots that must be removed to respect the section amount.
// created reports whether the snapshot requested by this decision was made.
func (d Decision) Expired(created bool) []Snapshot {
	return SelectExpired(d.existing, d.amount, created)
}

// SelectExpired returns the oldest snapshots of existing that exceed amount.
// A snapshot created during this run counts towards amount but is never selected.
func SelectExpired(existing []Snapshot, amount int, created bool) []Snapshot {
	count := len(existing)
	if created {
		count++
	}

	excess := min(count-amount, len(existing))
	if excess <= 0 {
		return nil
	}
	return slices.Clone(existing[:excess])
}
