package attr

import "math"

// ParseUint reads one unsigned decimal from s with sscanf("%u") rules:
// leading white space is skipped, an optional sign is accepted, digits are
// consumed and the rest is ignored. A minus sign wraps the value the way
// the C conversion does. Values that do not fit in 32 bits are rejected.
func ParseUint(s string) (uint32, bool) {
	i := 0
	for i < len(s) && isSpace(s[i]) {
		i++
	}

	neg := false
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		neg = s[i] == '-'
		i++
	}

	start := i
	var v uint64
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		v = v*10 + uint64(s[i]-'0')
		if v > math.MaxUint32 {
			return 0, false
		}
		i++
	}
	if i == start {
		return 0, false
	}

	u := uint32(v)
	if neg {
		u = -u
	}
	return u, true
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
