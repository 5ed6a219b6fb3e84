package points

import "sort"

// Kind discriminates the three shapes a points table entry can take.
type Kind int

const (
	// KindScalar is a flat integer award.
	KindScalar Kind = iota
	// KindRingBase is a star-rating to base-points map for the ring family.
	KindRingBase
	// KindTiers is a level-banded table for the legacy family.
	KindTiers
)

// Tier is one level band of the legacy family. Five and Six are the points
// awarded at five and six star difficulty.
type Tier struct {
	Level int
	Five  int
	Six   int
}

// Value is one points table entry.
type Value struct {
	Kind     Kind
	Scalar   int
	RingBase map[string]int
	Tiers    []Tier
}

// ScalarValue builds a flat-award entry.
func ScalarValue(points int) Value {
	return Value{Kind: KindScalar, Scalar: points}
}

// RingBaseValue builds a ring-family base entry keyed by star rating.
func RingBaseValue(base map[string]int) Value {
	copied := make(map[string]int, len(base))
	for star, pts := range base {
		copied[star] = pts
	}
	return Value{Kind: KindRingBase, RingBase: copied}
}

// TierValue builds a legacy-family entry. Tiers are kept sorted descending
// by level so lookup picks the highest band at or below the requested level.
func TierValue(tiers []Tier) Value {
	copied := make([]Tier, len(tiers))
	copy(copied, tiers)
	sort.SliceStable(copied, func(i, j int) bool {
		return copied[i].Level > copied[j].Level
	})
	return Value{Kind: KindTiers, Tiers: copied}
}
