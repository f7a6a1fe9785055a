package client

import "strings"

const addressDelimiter = " | "

// Address is the structured postal address submitted at checkout.
type Address struct {
	Street       string
	Number       string
	Complement   string
	Neighborhood string
	City         string
	State        string
	ZipCode      string

	// Formatted is an address already flattened by the caller. When set it
	// is stored as is.
	Formatted string
}

// Compose flattens the address into the stored free-text form:
//
//	Rua A, 12 | Apto 3 | Centro | Recife - PE | CEP: 50000-000
//
// Empty segments are omitted.
func (a Address) Compose() string {
	if f := strings.TrimSpace(a.Formatted); f != "" {
		return f
	}
	segments := []string{
		joinNonEmpty(", ", a.Street, a.Number),
		strings.TrimSpace(a.Complement),
		strings.TrimSpace(a.Neighborhood),
		joinNonEmpty(" - ", a.City, a.State),
		formatZip(a.ZipCode),
	}
	return joinNonEmpty(addressDelimiter, segments...)
}

func joinNonEmpty(sep string, parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}

// formatZip renders a Brazilian CEP as 12345-678 when it has exactly eight
// digits and keeps the submitted text otherwise.
func formatZip(zip string) string {
	zip = strings.TrimSpace(zip)
	if zip == "" {
		return ""
	}
	if digits := digitsOnly(zip); len(digits) == 8 {
		zip = digits[:5] + "-" + digits[5:]
	}
	return "CEP: " + zip
}
