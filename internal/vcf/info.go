package vcf

import "strings"

// InfoFlag reports whether the INFO column contains flag as a standalone entry.
func InfoFlag(info, flag string) bool {
	if info == "." {
		return false
	}
	return hasToken(info, ';', flag)
}

// InfoValue returns the value of the first key=value entry for key.
// The second result is false when no entry carries the key.
func InfoValue(info, key string) (string, bool) {
	if info == "" || info == "." {
		return "", false
	}
	for rest := info; rest != ""; {
		field := rest
		if i := strings.IndexByte(rest, ';'); i >= 0 {
			field = rest[:i]
			rest = rest[i+1:]
		} else {
			rest = ""
		}
		if len(field) > len(key) && field[len(key)] == '=' && field[:len(key)] == key {
			return field[len(key)+1:], true
		}
	}
	return "", false
}
