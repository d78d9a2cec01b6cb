package checkout

import (
	"regexp"
	"sort"
	"strings"
)

// Indian mobile numbers: ten digits starting with 6-9.
var mobilePattern = regexp.MustCompile(`^[6-9]\d{9}$`)

const minNameLength = 2

// ValidationError maps form fields to messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid customer details: " + strings.Join(parts, "; ")
}

// ValidateCustomer checks the checkout form fields. Values are trimmed
// before checking.
func ValidateCustomer(name, phone string) error {
	fields := map[string]string{}

	name = strings.TrimSpace(name)
	switch {
	case name == "":
		fields["name"] = "Name is required"
	case len([]rune(name)) < minNameLength:
		fields["name"] = "Name must be at least 2 characters"
	}

	phone = strings.TrimSpace(phone)
	switch {
	case phone == "":
		fields["phone"] = "Phone number is required"
	case !mobilePattern.MatchString(phone):
		fields["phone"] = "Please enter a valid 10-digit Indian mobile number"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
