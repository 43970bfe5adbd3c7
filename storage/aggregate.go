package storage

import (
	"math/bits"
	"strings"

	"github.com/pkg/errors"
)

type AggregateKind int

const (
	AggregateNone AggregateKind = iota
	Sum
	Mean
	Min
	Max
	First
	Count
	Var
	StdDev
)

var aggregateNames = [...]string{
	AggregateNone: "None",
	Sum:           "Sum",
	Mean:          "Mean",
	Min:           "Min",
	Max:           "Max",
	First:         "First",
	Count:         "Count",
	Var:           "Var",
	StdDev:        "StdDev",
}

func (a AggregateKind) String() string {
	if a < 0 || int(a) >= len(aggregateNames) {
		return "Aggregate(?)"
	}
	return aggregateNames[a]
}

// ParseAggregate maps an aggregate name like "sum" or "avg" onto its kind.
func ParseAggregate(name string) (AggregateKind, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	switch n {
	case "avg", "average":
		return Mean, nil
	case "stdev", "stddev":
		return StdDev, nil
	case "variance":
		return Var, nil
	}
	for a, an := range aggregateNames {
		if a != int(AggregateNone) && strings.ToLower(an) == n {
			return AggregateKind(a), nil
		}
	}
	return AggregateNone, errors.Wrapf(ErrUnsupportedAggregate, "unknown aggregate %q", name)
}

func compareBits(nulls *NullBits, a, b int) int {
	aNull, bNull := nulls.Get(a), nulls.Get(b)
	if aNull != bNull {
		if aNull {
			return -1
		}
		return 1
	}
	return 0
}

// variance returns the sample variance of count values given their sum and
// sum of squares. Results lost to cancellation become 0; fewer than two
// values have none.
func variance(count int, sum, squares float64) (float64, bool) {
	if count <= 1 {
		return 0, false
	}
	n := float64(count)
	v := n*squares - sum*sum
	precision := v / (sum * sum)
	if precision < 1e-15 || v < 0 {
		return 0, true
	}
	return v / (n * (n - 1)), true
}

func addSigned(a, b int64) (int64, bool) {
	s := a + b
	if (s > a) != (b > 0) {
		return s, false
	}
	return s, true
}

func addUnsigned(a, b uint64) (uint64, bool) {
	s, carry := bits.Add64(a, b, 0)
	return s, carry == 0
}
