// Package detector normalises detector names into safe path segments.
//
// This is strictly one character in, one character out: every byte
// outside [A-Za-z0-9] becomes "_", and length and order are always
// preserved. A run-collapsing normaliser would be shorter but would
// change the string's length, which would break a scan_number field
// appearing at a fixed offset in rendered detector paths.
package detector

// Normalise replaces every byte of name that is not in [A-Za-z0-9] with
// "_", preserving length and order.
func Normalise(name string) string {
	out := make([]byte, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			out[i] = c
		default:
			out[i] = '_'
		}
	}
	return string(out)
}
