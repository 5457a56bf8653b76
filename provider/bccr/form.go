package bccr

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// FieldRole is a logical role an HTML input plays in the query form
type FieldRole string

const (
	RoleStartDate FieldRole = "start date"
	RoleEndDate   FieldRole = "end date"
	RoleSubmit    FieldRole = "submit"
)

func (r FieldRole) String() string {
	return string(r)
}

// FieldSource marks how a field name was resolved
type FieldSource string

const (
	FieldDetected     FieldSource = "detected"
	FieldUserOverride FieldSource = "override"
)

// FieldSpec binds a logical role to a concrete input name
type FieldSpec struct {
	Role   FieldRole
	Name   string
	Source FieldSource

	// Value is the input's declared value, only meaningful for the
	// submit control (carried into the payload like a browser click)
	Value string
}

// Overrides are caller-supplied input names that bypass detection
// for their role. Empty values mean "detect"
type Overrides struct {
	StartField  string
	EndField    string
	SubmitField string
}

// Form is the fully resolved query form, ready for submission
type Form struct {
	Action string // as declared, possibly relative
	Method string // GET or POST

	Hidden url.Values // hidden inputs carried through unchanged

	Start  FieldSpec
	End    FieldSpec
	Submit *FieldSpec // nil when the page has no submit control
}

// The candidate name substrings per role, in priority order. Earlier
// entries win over later ones; within one entry, document order wins.
// Seeded with the names the BCCR consultation pages have used over time,
// with generic fallbacks last
var (
	startFieldPatterns = []string{
		"fechainicio",
		"fechainicial",
		"fechaini",
		"fechadesde",
		"inicio",
		"desde",
		"start",
		"from",
		"fecha",
	}

	endFieldPatterns = []string{
		"fechafinal",
		"fechafin",
		"fechahasta",
		"final",
		"hasta",
		"end",
		"to",
	}

	submitFieldPatterns = []string{
		"consultar",
		"buscar",
		"generar",
		"submit",
		"button1",
	}
)

const defaultSubmitValue = "Consultar"

// formInput is one input-like element, in document order
type formInput struct {
	name  string
	typ   string
	value string
	sel   *goquery.Selection
}

// DetectForm resolves the query form on the fetched page: the start and
// end date inputs, the submit control, the form's method and action, and
// every hidden field. Overrides take precedence per role, independently.
// Detection is a pure function of the document and the overrides
func DetectForm(doc *goquery.Document, overrides Overrides) (*Form, error) {
	inputs := collectInputs(doc)

	start, err := resolveField(RoleStartDate, overrides.StartField, inputs, startFieldPatterns, "")
	if err != nil {
		return nil, err
	}

	// The end-date scan never reuses the start input, even when a
	// pattern like "fecha" matches both
	end, err := resolveField(RoleEndDate, overrides.EndField, inputs, endFieldPatterns, start.Name)
	if err != nil {
		return nil, err
	}

	submit := resolveSubmit(overrides.SubmitField, inputs)

	formSel := locateFormElement(doc, inputs, start.Name)

	form := &Form{
		Action: "",
		Method: "GET",
		Hidden: collectHidden(formSel, doc),
		Start:  *start,
		End:    *end,
		Submit: submit,
	}

	if formSel != nil {
		form.Action = formSel.AttrOr("action", "")

		if m := strings.ToUpper(strings.TrimSpace(formSel.AttrOr("method", ""))); m != "" {
			form.Method = m
		}
	}

	return form, nil
}

// collectInputs gathers all input-like elements in document order
func collectInputs(doc *goquery.Document) []formInput {
	var inputs []formInput

	doc.Find("input, button").Each(func(_ int, sel *goquery.Selection) {
		name := sel.AttrOr("name", "")
		if name == "" {
			name = sel.AttrOr("id", "")
		}

		typ := strings.ToLower(sel.AttrOr("type", ""))

		if goquery.NodeName(sel) == "button" && typ == "" {
			typ = "submit" // the HTML default for button elements
		}

		inputs = append(inputs, formInput{
			name:  name,
			typ:   typ,
			value: sel.AttrOr("value", ""),
			sel:   sel,
		})
	})

	return inputs
}

// resolveField resolves a date-entry role, either from an override or by
// scanning the text-like inputs against the role's candidate patterns
func resolveField(
	role FieldRole,
	override string,
	inputs []formInput,
	patterns []string,
	taken string,
) (*FieldSpec, error) {
	if override != "" {
		return &FieldSpec{
			Role:   role,
			Name:   override,
			Source: FieldUserOverride,
		}, nil
	}

	for _, pattern := range patterns {
		for _, in := range inputs {
			if !isTextInput(in.typ) || in.name == "" || in.name == taken {
				continue
			}

			if strings.Contains(strings.ToLower(in.name), pattern) {
				return &FieldSpec{
					Role:   role,
					Name:   in.name,
					Source: FieldDetected,
				}, nil
			}
		}
	}

	return nil, &DetectionError{Role: role}
}

// resolveSubmit resolves the submit control. A name-pattern match wins,
// then the first submit-typed control in document order. The control is
// optional: pages that submit via script have none
func resolveSubmit(override string, inputs []formInput) *FieldSpec {
	if override != "" {
		return &FieldSpec{
			Role:   RoleSubmit,
			Name:   override,
			Source: FieldUserOverride,
			Value:  defaultSubmitValue,
		}
	}

	submitSpec := func(in formInput) *FieldSpec {
		value := in.value
		if value == "" {
			value = defaultSubmitValue
		}

		return &FieldSpec{
			Role:   RoleSubmit,
			Name:   in.name,
			Source: FieldDetected,
			Value:  value,
		}
	}

	for _, pattern := range submitFieldPatterns {
		for _, in := range inputs {
			if !isSubmitInput(in.typ) || in.name == "" {
				continue
			}

			if strings.Contains(strings.ToLower(in.name), pattern) {
				return submitSpec(in)
			}
		}
	}

	for _, in := range inputs {
		if isSubmitInput(in.typ) && in.name != "" {
			return submitSpec(in)
		}
	}

	return nil
}

func isTextInput(typ string) bool {
	return typ == "" || typ == "text" || typ == "date"
}

func isSubmitInput(typ string) bool {
	return typ == "submit" || typ == "button" || typ == "image"
}

// locateFormElement finds the form element enclosing the resolved start
// input, falling back to the first form on the page
func locateFormElement(
	doc *goquery.Document,
	inputs []formInput,
	startName string,
) *goquery.Selection {
	for _, in := range inputs {
		if in.name != startName {
			continue
		}

		if form := in.sel.Closest("form"); form.Length() > 0 {
			return form
		}
	}

	if form := doc.Find("form").First(); form.Length() > 0 {
		return form
	}

	return nil
}

// collectHidden captures every hidden input's name and value. ASP.NET
// pages require __VIEWSTATE and friends to round-trip unchanged
func collectHidden(formSel *goquery.Selection, doc *goquery.Document) url.Values {
	hidden := url.Values{}

	scope := doc.Selection
	if formSel != nil {
		scope = formSel
	}

	scope.Find(`input[type="hidden"]`).Each(func(_ int, sel *goquery.Selection) {
		name := sel.AttrOr("name", "")
		if name == "" {
			name = sel.AttrOr("id", "")
		}

		if name == "" {
			return
		}

		hidden.Set(name, sel.AttrOr("value", ""))
	})

	return hidden
}
