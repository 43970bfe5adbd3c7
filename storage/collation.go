package storage

import (
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Collator orders strings for String storages.
type Collator interface {
	Compare(a, b string) int
}

type ordinal struct{}

func (ordinal) Compare(a, b string) int {
	return strings.Compare(a, b)
}

type ordinalIgnoreCase struct{}

// Compare folds both operands with a fresh Caser, since a Caser is stateful.
func (ordinalIgnoreCase) Compare(a, b string) int {
	folder := cases.Fold()
	return strings.Compare(folder.String(a), folder.String(b))
}

var (
	// Ordinal compares strings byte-wise.
	Ordinal Collator = ordinal{}
	// OrdinalIgnoreCase compares case folded strings byte-wise.
	OrdinalIgnoreCase Collator = ordinalIgnoreCase{}
)

// cultureCollator serializes access to a collate.Collator,
// which keeps internal buffers.
type cultureCollator struct {
	mu sync.Mutex
	c  *collate.Collator
}

func (c *cultureCollator) Compare(a, b string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.c.CompareString(a, b)
}

// NewCultureCollator orders strings by the collation rules of tag.
func NewCultureCollator(tag language.Tag, ignoreCase bool) Collator {
	var opts []collate.Option
	if ignoreCase {
		opts = append(opts, collate.IgnoreCase)
	}
	return &cultureCollator{c: collate.New(tag, opts...)}
}

// ParseCollation maps a collation name onto a Collator:
// "ordinal", "ordinal-ignore-case", or a language tag with an optional
// "-ci" suffix for case insensitive culture order.
func ParseCollation(name string) (Collator, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "ordinal":
		return Ordinal, nil
	case "ordinal-ignore-case", "ordinalignorecase":
		return OrdinalIgnoreCase, nil
	}
	ignoreCase := false
	if strings.HasSuffix(strings.ToLower(name), "-ci") {
		ignoreCase = true
		name = name[:len(name)-3]
	}
	tag, err := language.Parse(name)
	if err != nil {
		return nil, err
	}
	return NewCultureCollator(tag, ignoreCase), nil
}
