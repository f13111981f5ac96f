package pricing

import (
	"strings"
	"time"

	"pricebook/internal/domain"
)

// Selector picks the snapshot in effect at a point in time.
type Selector struct {
	// RequireApproval=false treats every snapshot as approved.
	RequireApproval bool
}

// Select returns a copy of the latest approved snapshot that began at or before asOf,
// with its tiers narrowed to currency. Equal begin dates resolve to the highest id.
func (s Selector) Select(card *domain.PriceCard, asOf time.Time, currency string) *domain.PriceSnapshot {
	if card == nil {
		return nil
	}
	var best *domain.PriceSnapshot
	for i := range card.Snapshots {
		snap := &card.Snapshots[i]
		if s.RequireApproval && !snap.IsApproved() {
			continue
		}
		if snap.BeginDate.After(asOf) {
			continue
		}
		if best == nil || snap.BeginDate.After(best.BeginDate) ||
			(snap.BeginDate.Equal(best.BeginDate) && snap.ID > best.ID) {
			best = snap
		}
	}
	if best == nil {
		return nil
	}

	out := &domain.PriceSnapshot{
		ID:             best.ID,
		BeginDate:      best.BeginDate,
		ApprovalStatus: best.ApprovalStatus,
		Tags:           append([]string(nil), best.Tags...),
		Components:     append([]string(nil), best.Components...),
	}
	for _, t := range best.Tiers {
		if strings.EqualFold(t.Currency, currency) {
			out.Tiers = append(out.Tiers, t)
		}
	}
	return out
}
