package checkout

import (
	"regexp"
	"strings"
	"unicode"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateEmail accepts local@domain.tld with no whitespace and a single @.
// RE2's \s is ASCII only, so Unicode spaces such as NBSP are rejected first.
func ValidateEmail(email string) bool {
	if strings.ContainsFunc(email, unicode.IsSpace) {
		return false
	}
	return emailPattern.MatchString(email)
}

// ValidateCPF checks length, rejects repeated digits and recomputes both
// verification digits.
func ValidateCPF(cpf string) bool {
	digits := Unmask(cpf)
	if len(digits) != cpfDigits {
		return false
	}
	if strings.Count(digits, digits[:1]) == cpfDigits {
		return false
	}

	nums := make([]int, cpfDigits)
	for i := range digits {
		nums[i] = int(digits[i] - '0')
	}
	if checkDigit(nums[:9], 10) != nums[9] {
		return false
	}
	return checkDigit(nums[:10], 11) == nums[10]
}

// checkDigit computes a mod-11 verification digit with weights counting down
// from firstWeight to 2.
func checkDigit(nums []int, firstWeight int) int {
	sum := 0
	for i, n := range nums {
		sum += n * (firstWeight - i)
	}
	digit := 11 - sum%11
	if digit >= 10 {
		return 0
	}
	return digit
}

// ValidateCEP accepts exactly 8 digits, formatted or not.
func ValidateCEP(cep string) bool {
	return len(Unmask(cep)) == cepDigits
}

// ValidatePhone accepts mobile numbers only: area code plus 9 digits.
func ValidatePhone(phone string) bool {
	return len(Unmask(phone)) == phoneDigits
}

// ValidateFullName requires at least a first and a last name.
func ValidateFullName(name string) bool {
	return len(strings.Fields(name)) >= 2
}
