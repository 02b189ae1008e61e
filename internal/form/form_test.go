// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package form

import (
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/dealflow/internal/tiering"
)

func fullConfiguration() tiering.Configuration {
	c := tiering.New()
	for i, o := range tiering.OwnershipTypes {
		c.Ownership[o] = tiering.Int(i%4 + 1)
	}
	for i, country := range tiering.Countries {
		c.Country[country] = tiering.Int((i+2)%4 + 1)
	}
	for _, tier := range tiering.Tiers() {
		n := int(tier)
		c.FoundingYear[tier.Key()] = tiering.YearOf([]string{"", "2015", "2010", "2000"}[n])
		c.FundraiserYear[tier.Key()] = tiering.YearOf([]string{"", "2022", "2020", "2018"}[n])
		for i, o := range tiering.EmployeeOwnershipTypes {
			c.FTECount[tier.Key()][o] = tiering.Bounds{Max: tiering.Int(n*100 + i), Min: tiering.Int(n * 10)}
		}
		c.TotalRaised[tier.Key()]["private_equity"] = int64(n) * 1_000_000
		c.TotalRaised[tier.Key()]["Others"] = int64(n) * 250_000
	}
	return c
}

func TestBuild_SectionsMatchEnumerations(t *testing.T) {
	f := Build(tiering.Configuration{})

	ids := make([]string, 0, len(f.All()))
	for _, s := range f.All() {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{
		SectionOwnership, SectionEmployee, SectionFounding,
		SectionFundraise, SectionTotalRaised, SectionCountry,
	}, ids)

	rowKeys := func(s *Section) []string {
		var keys []string
		for _, r := range s.Rows() {
			keys = append(keys, r.Key)
		}
		return keys
	}

	assert.Equal(t, tiering.OwnershipTypes, rowKeys(f.Sections.Ownership))
	assert.Equal(t, tiering.Countries, rowKeys(f.Sections.Country))
	assert.Equal(t, []string{"tier_1", "tier_2", "tier_3"}, rowKeys(f.Sections.Founding))
	assert.Equal(t, []string{"tier_1", "tier_2", "tier_3"}, rowKeys(f.Sections.Fundraise))

	require.Len(t, f.Sections.Employee.Groups, tiering.TierCount)
	for i, g := range f.Sections.Employee.Groups {
		assert.Equal(t, tiering.Tier(i+1).Label(), g.Heading)
		require.Len(t, g.Rows, len(tiering.EmployeeOwnershipTypes))
		for j, r := range g.Rows {
			assert.Equal(t, tiering.EmployeeOwnershipTypes[j], r.Key)
			assert.Equal(t, tiering.Tier(i+1), r.Tier)
			assert.Len(t, r.Controls, 2)
		}
	}

	require.Len(t, f.Sections.TotalRaised.Groups, len(tiering.RaisedGroups))
	for i, g := range f.Sections.TotalRaised.Groups {
		assert.Equal(t, tiering.RaisedGroups[i].Label, g.Heading)
		require.Len(t, g.Rows, tiering.TierCount)
		for j, r := range g.Rows {
			assert.Equal(t, tiering.RaisedGroups[i].Key, r.Key)
			assert.Equal(t, tiering.Tier(j+1), r.Tier)
		}
	}

	wantControls := len(tiering.OwnershipTypes) +
		tiering.TierCount*len(tiering.EmployeeOwnershipTypes)*2 +
		tiering.TierCount*2 +
		len(tiering.RaisedGroups)*tiering.TierCount +
		len(tiering.Countries)
	assert.Len(t, f.Controls(), wantControls)
	assert.Len(t, f.Values(), wantControls, "control names must be unique")
}

func TestBuild_BlankDefaults(t *testing.T) {
	f := Build(tiering.Configuration{})
	for _, c := range f.Controls() {
		assert.Empty(t, c.Value(), c.Name)
	}
}

func TestBuild_OwnershipPrefill(t *testing.T) {
	f := Build(tiering.Configuration{Ownership: map[string]*int{"Private": tiering.Int(2)}})

	for _, row := range f.Sections.Ownership.Rows() {
		want := ""
		if row.Key == "Private" {
			want = "2"
		}
		assert.Equal(t, want, row.Controls[0].Value(), row.Key)
	}
}

func TestBuild_OutOfRangeRankLoadsBlank(t *testing.T) {
	f := Build(tiering.Configuration{Country: map[string]*int{"USA": tiering.Int(7)}})
	c, ok := f.Control(CountryName("USA"))
	require.True(t, ok)
	assert.Empty(t, c.Value())
}

func TestRoundTrip(t *testing.T) {
	want := fullConfiguration()

	got := Serialize(Build(want))

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundTrip_PartialIsEquivalent(t *testing.T) {
	saved := tiering.Configuration{
		Ownership:   map[string]*int{"Seed": tiering.Int(4)},
		FTECount:    map[string]map[string]tiering.Bounds{"tier_2": {"Public": {Min: tiering.Int(3)}}},
		TotalRaised: map[string]tiering.Amounts{"tier_3": {"Others": 42}},
	}

	got := Serialize(Build(saved))

	assert.True(t, tiering.Equivalent(saved, got))
}

func TestSerialize_BlankEmployeePairOmitted(t *testing.T) {
	f := Build(tiering.Configuration{})
	require.NoError(t, f.Edit(EmployeeName(1, "Private", "max"), "50"))
	require.NoError(t, f.Edit(EmployeeName(1, "Public", "min"), "5"))

	c := Serialize(f)

	assert.Len(t, c.FTECount["tier_1"], 2)
	assert.Equal(t, 50, *c.FTECount["tier_1"]["Private"].Max)
	assert.Nil(t, c.FTECount["tier_1"]["Private"].Min)
	assert.Nil(t, c.FTECount["tier_1"]["Public"].Max)
	assert.Equal(t, 5, *c.FTECount["tier_1"]["Public"].Min)
	assert.Empty(t, c.FTECount["tier_2"])
	assert.Empty(t, c.FTECount["tier_3"])
}

func TestSerialize_TotalRaisedSingleValue(t *testing.T) {
	f := Build(tiering.Configuration{})
	require.NoError(t, f.Edit(TotalRaisedName(2, "private_equity"), "500000"))

	c := Serialize(f)

	assert.Equal(t, map[string]tiering.Amounts{
		"tier_1": {},
		"tier_2": {"private_equity": 500000},
		"tier_3": {},
	}, c.TotalRaised)
}

func TestSerialize_BlankFormHasNoEmptyStrings(t *testing.T) {
	c := Serialize(Build(tiering.Configuration{}))

	assert.Len(t, c.Ownership, len(tiering.OwnershipTypes))
	assert.Len(t, c.Country, len(tiering.Countries))
	for k, v := range c.Ownership {
		assert.Nil(t, v, k)
	}
	for k, v := range c.FoundingYear {
		assert.Nil(t, v, k)
	}
	for k, v := range c.FundraiserYear {
		assert.Nil(t, v, k)
	}
}

func TestApply_BrowserSemantics(t *testing.T) {
	f := Build(fullConfiguration())

	values := url.Values{}
	values.Set(OwnershipName("Private"), "3")
	values.Set(OwnershipName("Public"), "9")
	values.Set(EmployeeName(1, "Seed", "max"), "abc")
	values.Set(EmployeeName(1, "Seed", "min"), " 12.7 ")
	values.Set(FoundingYearName(1), "201599")
	values.Set(FundraiseYearName(2), "20x")
	values.Set(TotalRaisedName(3, "Others"), "1e3")
	f.Apply(values)

	get := func(name string) string {
		c, ok := f.Control(name)
		require.True(t, ok, name)
		return c.Value()
	}

	assert.Equal(t, "3", get(OwnershipName("Private")))
	assert.Equal(t, "", get(OwnershipName("Public")), "value outside options")
	assert.Equal(t, "", get(OwnershipName("Seed")), "missing value clears control")
	assert.Equal(t, "", get(EmployeeName(1, "Seed", "max")))
	assert.Equal(t, "12.7", get(EmployeeName(1, "Seed", "min")))
	assert.Equal(t, "2015", get(FoundingYearName(1)), "truncated to max length")
	assert.Equal(t, "20x", get(FundraiseYearName(2)), "years pass through as typed")
	assert.Equal(t, "1e3", get(TotalRaisedName(3, "Others")))

	c := Serialize(f)
	assert.Equal(t, 3, *c.Ownership["Private"])
	assert.Nil(t, c.Ownership["Public"])
	assert.Nil(t, c.FTECount["tier_1"]["Seed"].Max)
	assert.Equal(t, 12, *c.FTECount["tier_1"]["Seed"].Min)
	assert.Equal(t, tiering.Year("20x"), *c.FundraiserYear["tier_2"])
	assert.Equal(t, int64(1), c.TotalRaised["tier_3"]["Others"])
	assert.Nil(t, c.Country["USA"])
}

func TestEdit_UnknownControl(t *testing.T) {
	f := Build(tiering.Configuration{})
	err := f.Edit("ownership[Pirate]", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ownership[Pirate]")
}

func TestParseInt(t *testing.T) {
	tests := []struct {
		in     string
		want   int64
		wantOK bool
	}{
		{"42", 42, true},
		{" 42 ", 42, true},
		{"-7", -7, true},
		{"+7", 7, true},
		{"12.9", 12, true},
		{"1e3", 1, true},
		{"", 0, false},
		{"-", 0, false},
		{"abc", 0, false},
		{".5", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseInt(tt.in)
		assert.Equal(t, tt.wantOK, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
