// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package form

import "github.com/ManuGH/dealflow/internal/tiering"

// Control names. They are derived from canonical keys only.

// OwnershipName names the rank select of an ownership type.
func OwnershipName(ownership string) string {
	return "ownership[" + ownership + "]"
}

// CountryName names the rank select of a country.
func CountryName(country string) string {
	return "country[" + country + "]"
}

// EmployeeName names the max or min input of an employee count row.
func EmployeeName(t tiering.Tier, ownership, bound string) string {
	return "fte[" + t.Key() + "][" + ownership + "][" + bound + "]"
}

// FoundingYearName names the founding year input of a tier.
func FoundingYearName(t tiering.Tier) string {
	return "founding_year[" + t.Key() + "]"
}

// FundraiseYearName names the fundraise year input of a tier.
func FundraiseYearName(t tiering.Tier) string {
	return "fundraiser_year[" + t.Key() + "]"
}

// TotalRaisedName names the amount input of a total raised group and tier.
func TotalRaisedName(t tiering.Tier, groupKey string) string {
	return "total_raised[" + t.Key() + "][" + groupKey + "]"
}

const (
	boundMax = "max"
	boundMin = "min"
)
