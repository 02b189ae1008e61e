// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package form

import (
	"strconv"
	"strings"

	"github.com/ManuGH/dealflow/internal/tiering"
)

// Serialize builds a fresh configuration from the live control values.
// Every ownership type, country and year tier is present (null when blank);
// blank employee pairs and blank total raised amounts are omitted from their
// tier objects.
func Serialize(f *Form) tiering.Configuration {
	c := tiering.New()

	for _, row := range f.Sections.Ownership.Rows() {
		c.Ownership[row.Key] = parseRank(row.Controls[0].Value())
	}

	for _, row := range f.Sections.Country.Rows() {
		c.Country[row.Key] = parseRank(row.Controls[0].Value())
	}

	for _, row := range f.Sections.Founding.Rows() {
		c.FoundingYear[row.Tier.Key()] = parseYear(row.Controls[0].Value())
	}

	for _, row := range f.Sections.Fundraise.Rows() {
		c.FundraiserYear[row.Tier.Key()] = parseYear(row.Controls[0].Value())
	}

	for _, row := range f.Sections.Employee.Rows() {
		b := tiering.Bounds{
			Max: parseIntPtr(row.Controls[0].Value()),
			Min: parseIntPtr(row.Controls[1].Value()),
		}
		if b.Blank() {
			continue
		}
		c.FTECount[row.Tier.Key()][row.Key] = b
	}

	for _, row := range f.Sections.TotalRaised.Rows() {
		if v, ok := parseInt(row.Controls[0].Value()); ok {
			c.TotalRaised[row.Tier.Key()][row.Key] = v
		}
	}

	return c
}

// parseInt reads the leading integer of s, ignoring surrounding whitespace
// ("12.7" reads as 12). It reports false when s has no leading digits.
func parseInt(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	v, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseIntPtr(s string) *int {
	v, ok := parseInt(s)
	if !ok {
		return nil
	}
	return tiering.Int(int(v))
}

// parseRank treats zero and unparsable values as unset.
func parseRank(s string) *int {
	v, ok := parseInt(s)
	if !ok || v == 0 {
		return nil
	}
	return tiering.Int(int(v))
}

func parseYear(s string) *tiering.Year {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return tiering.YearOf(s)
}
