package common

import "strconv"

// FormatFloat renders f with the fewest digits that parse back to the same value,
// so 2.2 stays "2.2" rather than "2.200000".
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
