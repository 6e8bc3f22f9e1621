package checkout

import (
	"fmt"
	"strings"

	formats "github.com/angelmondragon/cinecart/pkg/checkout"
	"github.com/angelmondragon/cinecart/pkg/types"
	"go.uber.org/multierr"
)

// Field names a checkout form input.
type Field string

const (
	FieldFullName     Field = "full_name"
	FieldEmail        Field = "email"
	FieldCPF          Field = "cpf"
	FieldPhone        Field = "phone"
	FieldCEP          Field = "cep"
	FieldAddress      Field = "address"
	FieldNumber       Field = "number"
	FieldComplement   Field = "complement"
	FieldNeighborhood Field = "neighborhood"
	FieldCity         Field = "city"
	FieldState        Field = "state"
)

// Fields lists every form input in display order.
var Fields = []Field{
	FieldFullName, FieldEmail, FieldCPF, FieldPhone, FieldCEP,
	FieldAddress, FieldNumber, FieldComplement, FieldNeighborhood, FieldCity, FieldState,
}

type fieldRule struct {
	mask     func(string) string
	digits   int
	required string
	valid    func(string) bool
	invalid  string
}

var rules = map[Field]fieldRule{
	FieldFullName:     {required: "full name is required", valid: formats.ValidateFullName, invalid: "enter first and last name"},
	FieldEmail:        {mask: formats.MaskEmail, required: "email is required", valid: formats.ValidateEmail, invalid: "invalid email"},
	FieldCPF:          {mask: formats.MaskCPF, digits: 11, required: "CPF is required", valid: formats.ValidateCPF, invalid: "invalid CPF"},
	FieldPhone:        {mask: formats.MaskPhone, digits: 11, required: "mobile phone is required", valid: formats.ValidatePhone, invalid: "invalid mobile phone"},
	FieldCEP:          {mask: formats.MaskCEP, digits: 8, required: "CEP is required", valid: formats.ValidateCEP, invalid: "invalid CEP"},
	FieldAddress:      {required: "address is required"},
	FieldNumber:       {required: "number is required"},
	FieldComplement:   {},
	FieldNeighborhood: {required: "neighborhood is required"},
	FieldCity:         {required: "city is required"},
	FieldState:        {required: "state is required"},
}

// ParseField maps a wire name onto a Field.
func ParseField(name string) (Field, bool) {
	f := Field(strings.TrimSpace(name))
	_, ok := rules[f]
	return f, ok
}

// Mask applies the display mask of field to raw. Unmasked fields pass through.
func Mask(field Field, raw string) string {
	if rule, ok := rules[field]; ok && rule.mask != nil {
		return rule.mask(raw)
	}
	return raw
}

// overflows reports whether raw carries more digits than field's mask keeps.
func overflows(field Field, raw string) bool {
	rule, ok := rules[field]
	return ok && rule.digits > 0 && len(formats.Unmask(raw)) > rule.digits
}

// MaskAndCheck masks raw and validates it. Input with more digits than the
// mask keeps is invalid rather than silently truncated.
func MaskAndCheck(field Field, raw string) (string, string) {
	masked := Mask(field, raw)
	if overflows(field, raw) {
		return masked, rules[field].invalid
	}
	return masked, Check(field, masked)
}

// Check returns the error message for value, or "" when it is acceptable.
func Check(field Field, value string) string {
	rule, ok := rules[field]
	if !ok || rule.required == "" {
		return ""
	}
	if strings.TrimSpace(value) == "" {
		return rule.required
	}
	if rule.valid != nil && !rule.valid(value) {
		return rule.invalid
	}
	return ""
}

// FieldError reports one invalid form input.
type FieldError struct {
	Field   Field
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Form is the checkout form state. Errors are only meaningful for touched fields.
type Form struct {
	Values   map[Field]string `json:"values"`
	Touched  map[Field]bool   `json:"touched"`
	Errors   map[Field]string `json:"errors"`
	Overflow map[Field]bool   `json:"overflow,omitempty"` // fields whose last input was truncated by the mask
}

func NewForm() *Form {
	f := &Form{}
	f.ensure()
	return f
}

func (f *Form) ensure() {
	if f.Values == nil {
		f.Values = make(map[Field]string, len(Fields))
	}
	if f.Touched == nil {
		f.Touched = make(map[Field]bool, len(Fields))
	}
	if f.Errors == nil {
		f.Errors = make(map[Field]string)
	}
	if f.Overflow == nil {
		f.Overflow = make(map[Field]bool)
	}
}

func (f *Form) Value(field Field) string {
	return f.Values[field]
}

// Change stores the masked value and clears the field's error.
func (f *Form) Change(field Field, raw string) {
	f.ensure()
	f.Values[field] = Mask(field, raw)
	if overflows(field, raw) {
		f.Overflow[field] = true
	} else {
		delete(f.Overflow, field)
	}
	delete(f.Errors, field)
}

// Blur marks field touched and validates it.
func (f *Form) Blur(field Field) bool {
	f.ensure()
	f.Touched[field] = true
	return f.ValidateField(field)
}

// ValidateField records or clears the error for field and reports validity.
func (f *Form) ValidateField(field Field) bool {
	f.ensure()
	msg := Check(field, f.Values[field])
	if msg == "" && f.Overflow[field] {
		msg = rules[field].invalid
	}
	if msg == "" {
		delete(f.Errors, field)
		return true
	}
	f.Errors[field] = msg
	return false
}

// Validate checks every required field, marks them touched and returns the
// combined FieldErrors, or nil.
func (f *Form) Validate() error {
	f.ensure()
	var err error
	for _, field := range Fields {
		if field == FieldComplement {
			continue
		}
		f.Touched[field] = true
		if !f.ValidateField(field) {
			err = multierr.Append(err, &FieldError{Field: field, Message: f.Errors[field]})
		}
	}
	return err
}

// ApplyAddress fills the address fields from a lookup, keeping current values
// where the lookup has none.
func (f *Form) ApplyAddress(addr types.Address) {
	f.ensure()
	fill := func(field Field, value string) {
		if strings.TrimSpace(value) != "" {
			f.Values[field] = value
		}
	}
	fill(FieldAddress, addr.Street)
	fill(FieldNeighborhood, addr.Neighborhood)
	fill(FieldCity, addr.City)
	fill(FieldState, addr.State)
}

// FieldErrors flattens an error returned by Validate.
func FieldErrors(err error) map[Field]string {
	out := map[Field]string{}
	for _, e := range multierr.Errors(err) {
		if fe, ok := e.(*FieldError); ok {
			out[fe.Field] = fe.Message
		}
	}
	return out
}
