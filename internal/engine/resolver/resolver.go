// Package resolver classifies application form elements and synthesizes
// answers from the applicant profile. It is pure: the wizard probes the live
// page and hands in plain data, so every rule is testable without a browser.
package resolver

import (
	"strings"

	"autoapply/pkg/utils"
)

// FieldKind is the structural class of a form element
type FieldKind string

const (
	KindRadioGroup FieldKind = "radio-group"
	KindText       FieldKind = "text"
	KindDropdown   FieldKind = "dropdown"
	KindDate       FieldKind = "date"
	KindCheckbox   FieldKind = "checkbox"
	KindFile       FieldKind = "file"
)

// Probe carries the structural facts the wizard observed about one form
// element container.
type Probe struct {
	Label       string
	RadioLabels []string
	HasSelect   bool
	SelectOpts  []string
	HasText     bool
	HasTextArea bool
	InputType   string // type attribute of the text-like input, if any
	HasDate     bool
	HasCheckbox bool
	HasFile     bool
}

// Field is one classified form element
type Field struct {
	Kind    FieldKind
	Label   string
	Options []string
	Numeric bool
}

// Classify determines the structural kind of a probed element. The first
// structural match wins, in the fixed order radio-group, free-text,
// dropdown, date, checkbox, file.
func Classify(p Probe) (Field, error) {
	label := cleanLabel(p.Label)

	switch {
	case len(p.RadioLabels) > 0:
		return Field{Kind: KindRadioGroup, Label: label, Options: p.RadioLabels}, nil
	case p.HasText || p.HasTextArea:
		numeric := p.InputType == "number" || p.InputType == "tel"
		return Field{Kind: KindText, Label: label, Numeric: numeric}, nil
	case p.HasSelect:
		return Field{Kind: KindDropdown, Label: label, Options: p.SelectOpts}, nil
	case p.HasDate:
		return Field{Kind: KindDate, Label: label}, nil
	case p.HasCheckbox:
		return Field{Kind: KindCheckbox, Label: label}, nil
	case p.HasFile:
		return Field{Kind: KindFile, Label: label}, nil
	default:
		return Field{}, utils.NewClassificationError("no structural match for element: " + label)
	}
}

// cleanLabel collapses whitespace and strips the required-field marker
func cleanLabel(label string) string {
	label = strings.TrimSpace(label)
	label = strings.TrimSuffix(label, "*")
	return strings.Join(strings.Fields(label), " ")
}

// Action says how the wizard should apply an answer to the live element
type Action int

const (
	// ActionFill clears the element and types the value
	ActionFill Action = iota
	// ActionChoose selects the option whose label equals the value
	ActionChoose
	// ActionCheck ticks a checkbox
	ActionCheck
	// ActionUpload attaches the file at the value path
	ActionUpload
	// ActionFillAndConfirm types the value and accepts the first
	// autocomplete suggestion if one appears
	ActionFillAndConfirm
)

// Answer is a synthesized response for one field
type Answer struct {
	Action Action
	Value  string
	// Rule names the rule that produced the answer, for logging
	Rule string
}
