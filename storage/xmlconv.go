package storage

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// OffsetLayout is the XML text layout of DateTimeOffset values.
const OffsetLayout = "2006-01-02T15:04:05.999999999-07:00"

func formatXMLBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func parseXMLBool(s string) (bool, error) {
	switch strings.TrimSpace(s) {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	}
	return false, errors.Wrapf(ErrConversion, "%q is not an xml boolean", s)
}

func formatXMLFloat(f float64, bitSize int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "INF"
	case math.IsInf(f, -1):
		return "-INF"
	}
	return strconv.FormatFloat(f, 'g', -1, bitSize)
}

func parseXMLFloat(s string, bitSize int) (float64, error) {
	t := strings.TrimSpace(s)
	switch t {
	case "NaN":
		return math.NaN(), nil
	case "INF":
		return math.Inf(1), nil
	case "-INF":
		return math.Inf(-1), nil
	}
	f, err := strconv.ParseFloat(t, bitSize)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return 0, errors.Wrapf(ErrOverflow, "%q", s)
		}
		return 0, errors.Wrapf(ErrConversion, "%q is not an xml float", s)
	}
	return f, nil
}

func parseXMLSigned(s string, k Kind) (int64, error) {
	bounds := signedBounds[k]
	i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return 0, overflowError(s, k)
		}
		return 0, conversionError(s, k)
	}
	if i < bounds[0] || i > bounds[1] {
		return 0, overflowError(s, k)
	}
	return i, nil
}

func parseXMLUnsigned(s string, k Kind) (uint64, error) {
	u, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return 0, overflowError(s, k)
		}
		return 0, conversionError(s, k)
	}
	if u > unsignedBounds[k] {
		return 0, overflowError(s, k)
	}
	return u, nil
}

const day = 24 * time.Hour

// formatXsdDuration renders d as an xsd:duration without calendar units,
// e.g. -P1DT2H3M4.5S.
func formatXsdDuration(d time.Duration) string {
	if d == 0 {
		return "PT0S"
	}
	var b strings.Builder
	u := uint64(d)
	if d < 0 {
		b.WriteByte('-')
		u = uint64(-(d + 1)) + 1
	}
	b.WriteByte('P')
	if days := u / uint64(day); days > 0 {
		b.WriteString(strconv.FormatUint(days, 10))
		b.WriteByte('D')
		u %= uint64(day)
	}
	if u == 0 {
		return b.String()
	}
	b.WriteByte('T')
	if h := u / uint64(time.Hour); h > 0 {
		b.WriteString(strconv.FormatUint(h, 10))
		b.WriteByte('H')
		u %= uint64(time.Hour)
	}
	if m := u / uint64(time.Minute); m > 0 {
		b.WriteString(strconv.FormatUint(m, 10))
		b.WriteByte('M')
		u %= uint64(time.Minute)
	}
	if u > 0 {
		b.WriteString(strconv.FormatUint(u/uint64(time.Second), 10))
		if frac := u % uint64(time.Second); frac > 0 {
			digits := strconv.FormatUint(frac+uint64(time.Second), 10)[1:]
			b.WriteByte('.')
			b.WriteString(strings.TrimRight(digits, "0"))
		}
		b.WriteByte('S')
	}
	return b.String()
}

// parseXsdDuration accepts day and time designators only; years and
// months have no fixed length.
func parseXsdDuration(s string) (time.Duration, error) {
	invalid := func() (time.Duration, error) {
		return 0, errors.Wrapf(ErrConversion, "%q is not a supported xsd:duration", s)
	}
	t := strings.TrimSpace(s)
	neg := strings.HasPrefix(t, "-")
	if neg {
		t = t[1:]
	}
	if !strings.HasPrefix(t, "P") || len(t) == 1 {
		return invalid()
	}
	t = t[1:]
	limit := uint64(math.MaxInt64)
	if neg {
		limit++
	}
	var total uint64
	inTime := false
	for len(t) > 0 {
		if t[0] == 'T' {
			if inTime || len(t) == 1 {
				return invalid()
			}
			inTime = true
			t = t[1:]
			continue
		}
		i := 0
		for i < len(t) && (t[i] >= '0' && t[i] <= '9' || t[i] == '.') {
			i++
		}
		if i == 0 || i == len(t) {
			return invalid()
		}
		number, unit := t[:i], t[i]
		t = t[i+1:]
		var scale uint64
		switch {
		case !inTime && unit == 'D':
			scale = uint64(day)
		case inTime && unit == 'H':
			scale = uint64(time.Hour)
		case inTime && unit == 'M':
			scale = uint64(time.Minute)
		case inTime && unit == 'S':
			scale = uint64(time.Second)
		default:
			return invalid()
		}
		whole, frac, hasFrac := strings.Cut(number, ".")
		if (hasFrac && unit != 'S') || (whole == "" && frac == "") {
			return invalid()
		}
		var n uint64
		if whole != "" {
			w, err := strconv.ParseUint(whole, 10, 64)
			if err != nil || w > limit/scale {
				return 0, overflowError(s, KindTimeSpan)
			}
			n = w * scale
		}
		if frac != "" {
			if strings.ContainsRune(frac, '.') {
				return invalid()
			}
			if len(frac) > 9 {
				frac = frac[:9]
			}
			f, err := strconv.ParseUint(frac+strings.Repeat("0", 9-len(frac)), 10, 64)
			if err != nil {
				return invalid()
			}
			n += f
		}
		if n > limit-total {
			return 0, overflowError(s, KindTimeSpan)
		}
		total += n
	}
	if neg {
		return time.Duration(-int64(total - 1) - 1), nil
	}
	return time.Duration(total), nil
}
