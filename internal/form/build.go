// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package form

import (
	"strconv"

	"github.com/ManuGH/dealflow/internal/tiering"
)

// Section identifiers, also used as HTML ids.
const (
	SectionOwnership   = "ownership"
	SectionEmployee    = "employee-count"
	SectionFounding    = "founding-year"
	SectionFundraise   = "fundraise-year"
	SectionTotalRaised = "total-raised"
	SectionCountry     = "country"
)

// Build creates the form and pre-fills every control from saved. Paths missing
// from saved leave their control blank.
func Build(saved tiering.Configuration) *Form {
	f := &Form{
		Sections: Sections{
			Ownership:   buildOwnership(saved),
			Employee:    buildEmployee(saved),
			Founding:    buildYears(SectionFounding, "Founding Year", FoundingYearName, saved.FoundingYear),
			Fundraise:   buildYears(SectionFundraise, "Fundraise Year", FundraiseYearName, saved.FundraiserYear),
			TotalRaised: buildTotalRaised(saved),
			Country:     buildCountry(saved),
		},
		byName: make(map[string]*Control),
	}
	f.ordered = []*Section{
		f.Sections.Ownership,
		f.Sections.Employee,
		f.Sections.Founding,
		f.Sections.Fundraise,
		f.Sections.TotalRaised,
		f.Sections.Country,
	}
	for _, c := range f.Controls() {
		f.byName[c.Name] = c
	}
	return f
}

func rankSelect(name string, rank *int) *Control {
	opts := make([]Option, 0, len(tiering.RankOptions))
	for _, v := range tiering.RankOptions {
		label := v
		if label == "" {
			label = "Select"
		}
		opts = append(opts, Option{Value: v, Label: label})
	}
	c := &Control{Name: name, Kind: KindSelect, Options: opts}
	c.assign(tiering.RankString(rank), false)
	return c
}

func numberInput(name, placeholder string, v *int64) *Control {
	c := &Control{Name: name, Kind: KindNumber, Placeholder: placeholder}
	if v != nil {
		c.assign(strconv.FormatInt(*v, 10), false)
	}
	return c
}

func intInput(name, placeholder string, v *int) *Control {
	if v == nil {
		return numberInput(name, placeholder, nil)
	}
	n := int64(*v)
	return numberInput(name, placeholder, &n)
}

func buildOwnership(saved tiering.Configuration) *Section {
	g := &Group{}
	for _, ownership := range tiering.OwnershipTypes {
		g.Rows = append(g.Rows, &Row{
			Key:      ownership,
			Label:    ownership,
			Controls: []*Control{rankSelect(OwnershipName(ownership), saved.Ownership[ownership])},
		})
	}
	return &Section{ID: SectionOwnership, Title: "Ownership", Groups: []*Group{g}}
}

func buildEmployee(saved tiering.Configuration) *Section {
	s := &Section{ID: SectionEmployee, Title: "Employee Count"}
	for _, tier := range tiering.Tiers() {
		g := &Group{Heading: tier.Label()}
		prev := saved.FTECount[tier.Key()]
		for _, ownership := range tiering.EmployeeOwnershipTypes {
			bounds := prev[ownership]
			g.Rows = append(g.Rows, &Row{
				Key:   ownership,
				Tier:  tier,
				Label: ownership,
				Controls: []*Control{
					intInput(EmployeeName(tier, ownership, boundMax), "Max", bounds.Max),
					intInput(EmployeeName(tier, ownership, boundMin), "Min", bounds.Min),
				},
			})
		}
		s.Groups = append(s.Groups, g)
	}
	return s
}

func buildYears(id, title string, name func(tiering.Tier) string, years map[string]*tiering.Year) *Section {
	g := &Group{}
	for _, tier := range tiering.Tiers() {
		c := &Control{Name: name(tier), Kind: KindText, Placeholder: "YYYY", MaxLength: tiering.YearMaxLength}
		if y := years[tier.Key()]; y != nil {
			c.assign(string(*y), false)
		}
		g.Rows = append(g.Rows, &Row{
			Key:      tier.Key(),
			Tier:     tier,
			Label:    tier.Label(),
			Controls: []*Control{c},
		})
	}
	return &Section{ID: id, Title: title, Groups: []*Group{g}}
}

func buildTotalRaised(saved tiering.Configuration) *Section {
	s := &Section{ID: SectionTotalRaised, Title: "Total Raised"}
	for _, group := range tiering.RaisedGroups {
		g := &Group{Heading: group.Label}
		for _, tier := range tiering.Tiers() {
			var amount *int64
			if v, ok := saved.TotalRaised[tier.Key()][group.Key]; ok {
				amount = &v
			}
			g.Rows = append(g.Rows, &Row{
				Key:      group.Key,
				Tier:     tier,
				Label:    group.Label,
				Controls: []*Control{numberInput(TotalRaisedName(tier, group.Key), "Max Amount", amount)},
			})
		}
		s.Groups = append(s.Groups, g)
	}
	return s
}

func buildCountry(saved tiering.Configuration) *Section {
	g := &Group{}
	for _, country := range tiering.Countries {
		g.Rows = append(g.Rows, &Row{
			Key:      country,
			Label:    country,
			Controls: []*Control{rankSelect(CountryName(country), saved.Country[country])},
		})
	}
	return &Section{ID: SectionCountry, Title: "Country", Groups: []*Group{g}}
}
