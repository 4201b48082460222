// Package policy holds the pure validation rules gating event and
// invitation mutations. Every rule is side-effect-free and returns nil on
// pass or a domain error carrying the reason on fail, so services can
// compose rules in sequence and short-circuit on the first failure.
package policy

import (
	"strings"
	"time"

	"convoke/internal/domain"
)

const (
	// MaxCapacity bounds the capacity of a single event.
	MaxCapacity = 100
	// MaxEventsPerOwner bounds how many recent events one owner may hold.
	MaxEventsPerOwner = 5
	// RecencyCutoff is the staleness window for managed/attended views and
	// the owner quota: events that started more than this long ago roll off.
	RecencyCutoff = 48 * time.Hour
)

// FutureStart fails unless start is strictly after now.
func FutureStart(start, now time.Time) error {
	if !start.After(now) {
		return domain.NewError(domain.KindPolicyViolation, "Start date must be in the future")
	}
	return nil
}

// EndAfterStart fails unless end is strictly after start.
func EndAfterStart(start, end time.Time) error {
	if !end.After(start) {
		return domain.NewError(domain.KindPolicyViolation, "End date must be after start date")
	}
	return nil
}

// CapacityInRange fails unless 1 <= n <= MaxCapacity.
func CapacityInRange(n int) error {
	if n < 1 || n > MaxCapacity {
		return domain.Errorf(domain.KindPolicyViolation, "Capacity must be between 1 and %d people", MaxCapacity)
	}
	return nil
}

// BelowOwnerQuota fails once the owner already holds MaxEventsPerOwner
// events inside the recency window.
func BelowOwnerQuota(recentCount int) error {
	if recentCount >= MaxEventsPerOwner {
		return domain.NewError(domain.KindPolicyViolation, "You reached your event limit")
	}
	return nil
}

// CityAllowList is the allowed-location predicate. Matching is
// case-insensitive and ignores surrounding whitespace.
type CityAllowList struct {
	cities map[string]struct{}
	label  string
}

// NewCityAllowList builds an allow list from city names.
func NewCityAllowList(cities []string) *CityAllowList {
	allowed := make(map[string]struct{}, len(cities))
	var names []string
	for _, c := range cities {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		allowed[strings.ToLower(c)] = struct{}{}
		names = append(names, c)
	}
	return &CityAllowList{cities: allowed, label: strings.Join(names, ", ")}
}

// Allows reports whether city is on the list.
func (l *CityAllowList) Allows(city string) bool {
	_, ok := l.cities[strings.ToLower(strings.TrimSpace(city))]
	return ok
}

// Check fails with the allowed area named in the reason.
func (l *CityAllowList) Check(city string) error {
	if !l.Allows(city) {
		return domain.Errorf(domain.KindPolicyViolation, "Location must be within %s", l.label)
	}
	return nil
}
