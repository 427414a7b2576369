package hive

import "fmt"

// ResolveAddress scans a Host message for the first '@' immediately
// followed by one or more word characters and validates the captured name
// against the directory. Only the first match counts, even when several
// '@name' tokens appear. Failure leaves the caller's log untouched.
func ResolveAddress(message string, dir *Directory) (string, error) {
	name := scanAddress(message)
	if name == "" {
		return "", ErrNoAddress
	}
	if _, ok := dir.Get(name); !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownDrone, name)
	}
	return name, nil
}

// scanAddress is an explicit tokenizer: find '@', consume following word
// characters, return the first non-empty run. A bare '@' with no word
// character after it is skipped.
func scanAddress(message string) string {
	for i := 0; i < len(message); i++ {
		if message[i] != '@' {
			continue
		}
		j := i + 1
		for j < len(message) && isWordChar(message[j]) {
			j++
		}
		if j > i+1 {
			return message[i+1 : j]
		}
	}
	return ""
}

func isWordChar(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}
