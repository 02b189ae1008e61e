// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package tiering

import (
	"fmt"
	"strconv"
	"strings"
)

// Ownership types in display order.
var OwnershipTypes = []string{
	"Private",
	"Private Sub",
	"Private Equity",
	"Public",
	"Public Sub",
	"Government",
	"Venture Capital",
	"Non-Profit",
	"Seed",
}

// EmployeeOwnershipTypes lists the ownership rows of each employee count tier.
var EmployeeOwnershipTypes = OwnershipTypes

// Countries in display order. "All others" is the catch-all rank.
var Countries = []string{
	"USA", "Canada", "UK", "Germany", "France", "Albania", "Andorra", "Armenia",
	"Austria", "Azerbaijan", "Belarus", "Belgium", "Bosnia and Herzegovina",
	"Bulgaria", "Croatia", "Cyprus", "Czech Republic (Czechia)", "Denmark",
	"Estonia", "Finland", "Georgia", "Greece", "Hungary", "Iceland", "Ireland",
	"Italy", "Kazakhstan (partly in EU)", "Kosovo", "Latvia", "Liechtenstein",
	"Lithuania", "Luxembourg", "Malta", "Moldova", "Monaco", "Montenegro",
	"Netherlands", "North Macedonia", "Norway", "Poland", "Portugal", "Romania",
	"Russia", "San Marino", "Serbia", "Slovakia", "Slovenia", "Spain", "Sweden",
	"Switzerland", "Turkey", "Ukraine", "United Kingdom", "Vatican City (Holy See)",
	"All others",
}

// Tier is a ranked bucket, 1 through TierCount.
type Tier int

// TierCount is the number of tiers every tiered section carries.
const TierCount = 3

// Tiers returns 1..TierCount in order.
func Tiers() []Tier {
	out := make([]Tier, 0, TierCount)
	for i := 1; i <= TierCount; i++ {
		out = append(out, Tier(i))
	}
	return out
}

// Key returns the JSON key of the tier ("tier_2").
func (t Tier) Key() string {
	return "tier_" + strconv.Itoa(int(t))
}

// Label returns the display label of the tier ("Tier 2").
func (t Tier) Label() string {
	return "Tier " + strconv.Itoa(int(t))
}

// Valid reports whether t is within 1..TierCount.
func (t Tier) Valid() bool {
	return t >= 1 && t <= TierCount
}

// ParseTierKey parses "tier_N" into a Tier.
func ParseTierKey(key string) (Tier, error) {
	n, ok := strings.CutPrefix(key, "tier_")
	if !ok {
		return 0, fmt.Errorf("tier key %q: missing tier_ prefix", key)
	}
	i, err := strconv.Atoi(n)
	if err != nil {
		return 0, fmt.Errorf("tier key %q: %w", key, err)
	}
	t := Tier(i)
	if !t.Valid() {
		return 0, fmt.Errorf("tier key %q: out of range", key)
	}
	return t, nil
}

// RaisedGroup is one of the total raised groups.
type RaisedGroup struct {
	Label string // display label
	Key   string // JSON key inside total_raised[tier]
}

// RaisedGroups in display order.
var RaisedGroups = []RaisedGroup{
	{Label: "Private Equity", Key: "private_equity"},
	{Label: "Others", Key: "Others"},
}

// Rank bounds. Zero is never a rank; it reads as unset.
const (
	MinRank = 1
	MaxRank = 4
)

// RankOptions are the select option values for rank controls, blank first.
var RankOptions = []string{"", "1", "2", "3", "4"}

// ValidRank reports whether r is within MinRank..MaxRank.
func ValidRank(r int) bool {
	return r >= MinRank && r <= MaxRank
}

// YearMaxLength is the input limit of year controls.
const YearMaxLength = 4
