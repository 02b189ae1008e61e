// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package form maps a tiering configuration onto a flat set of form controls
// and back.
//
// Build materialises a Form from a saved configuration, Apply sets control
// values the way a browser holds user input, and Serialize walks the controls
// in build order to produce a fresh configuration. Every row carries its
// canonical key and tier, so serialization never reads display text back.
package form

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ManuGH/dealflow/internal/tiering"
)

// ControlKind is the kind of an input control.
type ControlKind int

const (
	KindSelect ControlKind = iota
	KindNumber
	KindText
)

// String returns the HTML element or input type for the kind.
func (k ControlKind) String() string {
	switch k {
	case KindSelect:
		return "select"
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	default:
		return fmt.Sprintf("ControlKind(%d)", int(k))
	}
}

// Option is a select option.
type Option struct {
	Value string
	Label string
}

// Control is a single form control. Its value can only change through
// methods that apply the control's own acceptance rules.
type Control struct {
	Name        string
	Kind        ControlKind
	Placeholder string
	MaxLength   int
	Options     []Option

	value string
}

// Value returns the current control value.
func (c *Control) Value() string { return c.value }

// IsSelect reports whether the control renders as a select element.
func (c *Control) IsSelect() bool { return c.Kind == KindSelect }

// InputType returns the input type attribute for non-select controls.
func (c *Control) InputType() string { return c.Kind.String() }

// validNumber matches the HTML "valid floating-point number" grammar.
var validNumber = regexp.MustCompile(`^-?(?:[0-9]+(?:\.[0-9]+)?|\.[0-9]+)(?:[eE][-+]?[0-9]+)?$`)

// assign stores v after sanitising it like a browser would. Programmatic
// assignment ignores MaxLength; user input is truncated to it.
func (c *Control) assign(v string, userInput bool) {
	switch c.Kind {
	case KindSelect:
		c.value = ""
		for _, o := range c.Options {
			if o.Value == v {
				c.value = v
				return
			}
		}
	case KindNumber:
		v = strings.TrimSpace(v)
		if !validNumber.MatchString(v) {
			v = ""
		}
		c.value = v
	default:
		if userInput && c.MaxLength > 0 && utf8.RuneCountInString(v) > c.MaxLength {
			v = string([]rune(v)[:c.MaxLength])
		}
		c.value = v
	}
}

// Input sets the control value as if typed or selected by the user.
func (c *Control) Input(v string) {
	c.assign(v, true)
}

// Row is one labelled line of a section. Key and Tier are the canonical data
// keys the row serializes to.
type Row struct {
	Key      string
	Tier     tiering.Tier // zero for untiered rows
	Label    string
	Controls []*Control
}

// Group is a headed block of rows inside a section.
type Group struct {
	Heading string
	Rows    []*Row
}

// Section is one card of the form.
type Section struct {
	ID     string
	Title  string
	Groups []*Group
}

// Rows returns all rows of the section in build order.
func (s *Section) Rows() []*Row {
	var rows []*Row
	for _, g := range s.Groups {
		rows = append(rows, g.Rows...)
	}
	return rows
}

// Controls returns all controls of the section in build order.
func (s *Section) Controls() []*Control {
	var out []*Control
	for _, r := range s.Rows() {
		out = append(out, r.Controls...)
	}
	return out
}

// Sections holds an explicit reference to each built section.
type Sections struct {
	Ownership   *Section
	Employee    *Section
	Founding    *Section
	Fundraise   *Section
	TotalRaised *Section
	Country     *Section
}

// Form is the built form model.
type Form struct {
	Sections Sections

	ordered []*Section
	byName  map[string]*Control
}

// All returns the sections in display order.
func (f *Form) All() []*Section {
	return f.ordered
}

// Controls returns every control in display order.
func (f *Form) Controls() []*Control {
	var out []*Control
	for _, s := range f.ordered {
		out = append(out, s.Controls()...)
	}
	return out
}

// Control looks up a control by name.
func (f *Form) Control(name string) (*Control, bool) {
	c, ok := f.byName[name]
	return c, ok
}

// Apply sets every control from submitted form values. Controls without a
// submitted value become blank.
func (f *Form) Apply(values url.Values) {
	for _, c := range f.Controls() {
		c.Input(values.Get(c.Name))
	}
}

// Edit sets a single control as user input.
func (f *Form) Edit(name, value string) error {
	c, ok := f.byName[name]
	if !ok {
		return fmt.Errorf("form: unknown control %q", name)
	}
	c.Input(value)
	return nil
}

// Values returns the current control values keyed by control name.
func (f *Form) Values() url.Values {
	v := make(url.Values, len(f.byName))
	for _, c := range f.Controls() {
		v.Set(c.Name, c.value)
	}
	return v
}
