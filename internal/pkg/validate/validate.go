package validate

import "strings"

func Required(value string) bool {
	return strings.TrimSpace(value) != ""
}

// Email is a deliberately loose check: one @ with something on both sides
// and no whitespace. Deliverability is the mail server's problem.
func Email(value string) bool {
	value = strings.TrimSpace(value)
	at := strings.Index(value, "@")
	if at <= 0 || at == len(value)-1 {
		return false
	}
	return !strings.ContainsAny(value, " \t")
}

func MaxLen(value string, max int) bool {
	return len(value) <= max
}
