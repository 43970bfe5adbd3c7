package storage

import (
	"math/big"
	"strconv"
	"strings"
	"unicode"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatProvider carries the culture used to parse and format numbers
// outside of the XML codec.
type FormatProvider struct {
	tag      language.Tag
	group    string
	decimal  string
	negative string
}

// Invariant is the culture independent provider.
var Invariant = &FormatProvider{
	tag:      language.Und,
	group:    ",",
	decimal:  ".",
	negative: "-",
}

// NewFormatProvider derives the separators of tag by formatting probe
// numbers through a message printer.
func NewFormatProvider(tag language.Tag) *FormatProvider {
	p := message.NewPrinter(tag)
	fp := &FormatProvider{
		tag:      tag,
		group:    firstNonDigits(p.Sprintf("%d", 1234567)),
		decimal:  firstNonDigits(p.Sprintf("%.1f", 1.5)),
		negative: "-",
	}
	if minus := p.Sprintf("%d", -1); !strings.HasSuffix(minus, "-") {
		if sign := firstNonDigits(minus); sign != "" && strings.HasPrefix(minus, sign) {
			fp.negative = sign
		}
	}
	if fp.decimal == "" {
		fp.decimal = "."
	}
	if fp.group == fp.decimal {
		fp.group = ""
	}
	return fp
}

// ParseFormatProvider builds the provider of a BCP 47 tag. An empty name or
// "invariant" gives Invariant.
func ParseFormatProvider(name string) (*FormatProvider, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, "invariant") {
		return Invariant, nil
	}
	tag, err := language.Parse(name)
	if err != nil {
		return nil, errors.Wrapf(err, "culture %q", name)
	}
	return NewFormatProvider(tag), nil
}

// firstNonDigits returns the first run of non-digit runes in s.
func firstNonDigits(s string) string {
	start := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) })
	if start < 0 {
		return ""
	}
	end := strings.IndexFunc(s[start:], unicode.IsDigit)
	if end < 0 {
		return s[start:]
	}
	return s[start : start+end]
}

func (fp *FormatProvider) Tag() language.Tag {
	return fp.tag
}

func (fp *FormatProvider) GroupSeparator() string {
	return fp.group
}

func (fp *FormatProvider) DecimalSeparator() string {
	return fp.decimal
}

func (fp *FormatProvider) orInvariant() *FormatProvider {
	if fp == nil {
		return Invariant
	}
	return fp
}

// sign splits a leading sign off s.
func (fp *FormatProvider) sign(s string) (neg bool, rest string) {
	switch {
	case strings.HasPrefix(s, fp.negative):
		return true, s[len(fp.negative):]
	case fp.negative != "-" && strings.HasPrefix(s, "-"):
		return true, s[1:]
	case strings.HasPrefix(s, "+"):
		return false, s[1:]
	}
	return false, s
}

// ParseInteger parses an optionally signed run of decimal digits.
// Group separators are not accepted.
func (fp *FormatProvider) ParseInteger(s string) (*big.Int, error) {
	fp = fp.orInvariant()
	t := strings.TrimSpace(s)
	neg, digits := fp.sign(t)
	if digits == "" {
		return nil, errors.Wrapf(ErrConversion, "%q is not an integer", s)
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return nil, errors.Wrapf(ErrConversion, "%q is not an integer", s)
		}
	}
	v, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, errors.Wrapf(ErrConversion, "%q is not an integer", s)
	}
	if neg {
		v.Neg(v)
	}
	return v, nil
}

// normalize rewrites a culture formatted number into invariant form.
func (fp *FormatProvider) normalize(s string) string {
	t := strings.TrimSpace(s)
	neg, rest := fp.sign(t)
	if fp.group != "" {
		rest = strings.ReplaceAll(rest, fp.group, "")
		if strings.TrimSpace(fp.group) == "" {
			rest = strings.ReplaceAll(rest, " ", "")
		}
	}
	if fp.decimal != "." {
		rest = strings.ReplaceAll(rest, fp.decimal, ".")
	}
	if neg {
		return "-" + rest
	}
	return rest
}

func (fp *FormatProvider) ParseFloat(s string, bitSize int) (float64, error) {
	fp = fp.orInvariant()
	f, err := strconv.ParseFloat(fp.normalize(s), bitSize)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return 0, errors.Wrapf(ErrOverflow, "%q", s)
		}
		return 0, errors.Wrapf(ErrConversion, "%q is not a number", s)
	}
	return f, nil
}

func (fp *FormatProvider) ParseDecimal(s string) (decimal.Decimal, error) {
	fp = fp.orInvariant()
	d, err := decimal.NewFromString(fp.normalize(s))
	if err != nil {
		return decimal.Zero, errors.Wrapf(ErrConversion, "%q is not a decimal", s)
	}
	return d, nil
}

// FormatFloat formats f with the culture decimal separator and no grouping.
func (fp *FormatProvider) FormatFloat(f float64, bitSize int) string {
	fp = fp.orInvariant()
	s := strconv.FormatFloat(f, 'g', -1, bitSize)
	if fp.decimal != "." {
		s = strings.Replace(s, ".", fp.decimal, 1)
	}
	return s
}

func (fp *FormatProvider) FormatDecimal(d decimal.Decimal) string {
	fp = fp.orInvariant()
	s := d.String()
	if fp.decimal != "." {
		s = strings.Replace(s, ".", fp.decimal, 1)
	}
	return s
}
