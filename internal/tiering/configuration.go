// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package tiering

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Configuration is the tiering configuration document.
type Configuration struct {
	Country        map[string]*int              `json:"country,omitempty"`
	Ownership      map[string]*int              `json:"Ownership,omitempty"`
	FTECount       map[string]map[string]Bounds `json:"FTE_Count,omitempty"`
	FoundingYear   map[string]*Year             `json:"founding_year,omitempty"`
	FundraiserYear map[string]*Year             `json:"fundraiser_year,omitempty"`
	TotalRaised    map[string]Amounts           `json:"total_raised,omitempty"`
}

// Bounds is an employee count range. Either side may be unset.
type Bounds struct {
	Max *int `json:"max"`
	Min *int `json:"min"`
}

// Blank reports whether neither side is set.
func (b Bounds) Blank() bool {
	return b.Max == nil && b.Min == nil
}

// Amounts maps a total raised group key to its threshold. A null amount in
// JSON is dropped on decode rather than read as 0.
type Amounts map[string]int64

// UnmarshalJSON decodes an object of integers, skipping null members.
func (a *Amounts) UnmarshalJSON(data []byte) error {
	var raw map[string]*int64
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("total raised: %w", err)
	}
	if raw == nil {
		*a = nil
		return nil
	}
	out := make(Amounts, len(raw))
	for k, v := range raw {
		if v != nil {
			out[k] = *v
		}
	}
	*a = out
	return nil
}

// Year is a year threshold as typed into a 4-character input.
// It is stored as a string; numeric JSON values are accepted on decode.
type Year string

// UnmarshalJSON accepts both "2015" and 2015.
func (y *Year) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*y = Year(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("year: expected string or number, got %s", data)
	}
	*y = Year(n.String())
	return nil
}

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// YearOf returns a pointer to the year s.
func YearOf(s string) *Year {
	y := Year(s)
	return &y
}

// New returns a configuration with every section allocated and the tiered
// sections holding one empty object per tier.
func New() Configuration {
	c := Configuration{
		Country:        make(map[string]*int),
		Ownership:      make(map[string]*int),
		FTECount:       make(map[string]map[string]Bounds, TierCount),
		FoundingYear:   make(map[string]*Year, TierCount),
		FundraiserYear: make(map[string]*Year, TierCount),
		TotalRaised:    make(map[string]Amounts, TierCount),
	}
	for _, t := range Tiers() {
		c.FTECount[t.Key()] = make(map[string]Bounds)
		c.TotalRaised[t.Key()] = make(Amounts)
	}
	return c
}

// Decode parses a stored or submitted configuration document.
// Unknown top-level keys are ignored.
func Decode(data []byte) (Configuration, error) {
	var c Configuration
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return c, nil
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return Configuration{}, fmt.Errorf("decode configuration: %w", err)
	}
	return c, nil
}

// Normalize returns a copy of c in which every unset value is null:
// out-of-range ranks and blank years become nil and blank FTE pairs are dropped.
// Tiered sections only keep tier_1..tier_N keys.
func Normalize(c Configuration) Configuration {
	out := c.Clone()
	dropUnknownTiers(out.FTECount)
	dropUnknownTiers(out.TotalRaised)
	dropUnknownTiers(out.FoundingYear)
	dropUnknownTiers(out.FundraiserYear)
	for k, v := range out.Ownership {
		if v != nil && !ValidRank(*v) {
			out.Ownership[k] = nil
		}
	}
	for k, v := range out.Country {
		if v != nil && !ValidRank(*v) {
			out.Country[k] = nil
		}
	}
	for _, years := range []map[string]*Year{out.FoundingYear, out.FundraiserYear} {
		for k, v := range years {
			if v != nil && strings.TrimSpace(string(*v)) == "" {
				years[k] = nil
			}
		}
	}
	for _, pairs := range out.FTECount {
		for k, b := range pairs {
			if b.Blank() {
				delete(pairs, k)
			}
		}
	}
	return out
}

// Compact returns a copy of c without null entries and without empty maps.
// Two configurations that differ only by null versus omitted keys compact to
// the same value.
func Compact(c Configuration) Configuration {
	var out Configuration
	out.Country = compactRanks(c.Country)
	out.Ownership = compactRanks(c.Ownership)
	out.FoundingYear = compactYears(c.FoundingYear)
	out.FundraiserYear = compactYears(c.FundraiserYear)

	for tier, pairs := range c.FTECount {
		for k, b := range pairs {
			if b.Blank() {
				continue
			}
			if out.FTECount == nil {
				out.FTECount = make(map[string]map[string]Bounds)
			}
			if out.FTECount[tier] == nil {
				out.FTECount[tier] = make(map[string]Bounds)
			}
			out.FTECount[tier][k] = Bounds{Max: clonePtr(b.Max), Min: clonePtr(b.Min)}
		}
	}
	for tier, amounts := range c.TotalRaised {
		for k, v := range amounts {
			if out.TotalRaised == nil {
				out.TotalRaised = make(map[string]Amounts)
			}
			if out.TotalRaised[tier] == nil {
				out.TotalRaised[tier] = make(Amounts)
			}
			out.TotalRaised[tier][k] = v
		}
	}
	return out
}

// Equivalent reports whether a and b hold the same values, treating null and
// omitted keys as equal.
func Equivalent(a, b Configuration) bool {
	return reflect.DeepEqual(Compact(a), Compact(b))
}

// Clone returns a deep copy of c.
func (c Configuration) Clone() Configuration {
	var out Configuration
	out.Country = cloneRanks(c.Country)
	out.Ownership = cloneRanks(c.Ownership)
	out.FoundingYear = cloneYears(c.FoundingYear)
	out.FundraiserYear = cloneYears(c.FundraiserYear)
	if c.FTECount != nil {
		out.FTECount = make(map[string]map[string]Bounds, len(c.FTECount))
		for tier, pairs := range c.FTECount {
			if pairs == nil {
				out.FTECount[tier] = nil
				continue
			}
			cp := make(map[string]Bounds, len(pairs))
			for k, b := range pairs {
				cp[k] = Bounds{Max: clonePtr(b.Max), Min: clonePtr(b.Min)}
			}
			out.FTECount[tier] = cp
		}
	}
	if c.TotalRaised != nil {
		out.TotalRaised = make(map[string]Amounts, len(c.TotalRaised))
		for tier, amounts := range c.TotalRaised {
			if amounts == nil {
				out.TotalRaised[tier] = nil
				continue
			}
			cp := make(Amounts, len(amounts))
			for k, v := range amounts {
				cp[k] = v
			}
			out.TotalRaised[tier] = cp
		}
	}
	return out
}

// RankString formats a rank for a select control; unset is "".
func RankString(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func dropUnknownTiers[V any](m map[string]V) {
	for k := range m {
		if _, err := ParseTierKey(k); err != nil {
			delete(m, k)
		}
	}
}

func compactRanks(in map[string]*int) map[string]*int {
	var out map[string]*int
	for k, v := range in {
		if v == nil {
			continue
		}
		if out == nil {
			out = make(map[string]*int)
		}
		out[k] = clonePtr(v)
	}
	return out
}

func compactYears(in map[string]*Year) map[string]*Year {
	var out map[string]*Year
	for k, v := range in {
		if v == nil {
			continue
		}
		if out == nil {
			out = make(map[string]*Year)
		}
		out[k] = clonePtr(v)
	}
	return out
}

func cloneRanks(in map[string]*int) map[string]*int {
	if in == nil {
		return nil
	}
	out := make(map[string]*int, len(in))
	for k, v := range in {
		out[k] = clonePtr(v)
	}
	return out
}

func cloneYears(in map[string]*Year) map[string]*Year {
	if in == nil {
		return nil
	}
	out := make(map[string]*Year, len(in))
	for k, v := range in {
		out[k] = clonePtr(v)
	}
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
