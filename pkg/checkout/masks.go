package checkout

import (
	"strings"
	"unicode"
)

const (
	cpfDigits   = 11
	cepDigits   = 8
	phoneDigits = 11
)

// Unmask keeps only the ASCII digits of value.
func Unmask(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// MaskCPF formats up to 11 digits as 000.000.000-00. Separators only appear
// once the group after them has at least one digit.
func MaskCPF(value string) string {
	digits := capDigits(Unmask(value), cpfDigits)
	groups := split(digits, 3, 3, 3, 2)
	if groups[1] == "" {
		return groups[0]
	}
	var b strings.Builder
	b.WriteString(groups[0])
	b.WriteByte('.')
	b.WriteString(groups[1])
	if groups[2] != "" {
		b.WriteByte('.')
		b.WriteString(groups[2])
	}
	if groups[3] != "" {
		b.WriteByte('-')
		b.WriteString(groups[3])
	}
	return b.String()
}

// MaskCEP formats up to 8 digits as 00000-000.
func MaskCEP(value string) string {
	digits := capDigits(Unmask(value), cepDigits)
	groups := split(digits, 5, 3)
	if groups[1] == "" {
		return groups[0]
	}
	return groups[0] + "-" + groups[1]
}

// MaskPhone formats up to 11 digits as (00) 00000-0000.
func MaskPhone(value string) string {
	digits := capDigits(Unmask(value), phoneDigits)
	groups := split(digits, 2, 5, 4)
	if groups[1] == "" {
		return groups[0]
	}
	out := "(" + groups[0] + ") " + groups[1]
	if groups[2] != "" {
		out += "-" + groups[2]
	}
	return out
}

// MaskEmail lowercases the address; no structural reformatting happens.
func MaskEmail(value string) string {
	return strings.Map(unicode.ToLower, value)
}

func capDigits(digits string, limit int) string {
	if len(digits) > limit {
		return digits[:limit]
	}
	return digits
}

// split cuts digits into consecutive groups of the given sizes; trailing
// groups are empty when digits run out.
func split(digits string, sizes ...int) []string {
	groups := make([]string, len(sizes))
	rest := digits
	for i, size := range sizes {
		if len(rest) <= size {
			groups[i] = rest
			rest = ""
			continue
		}
		groups[i] = rest[:size]
		rest = rest[size:]
	}
	return groups
}
