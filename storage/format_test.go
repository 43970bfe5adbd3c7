package storage

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestFormatProviderSeparators(t *testing.T) {
	en := NewFormatProvider(language.English)
	assert.Equal(t, ",", en.GroupSeparator())
	assert.Equal(t, ".", en.DecimalSeparator())

	de := NewFormatProvider(language.German)
	assert.Equal(t, ".", de.GroupSeparator())
	assert.Equal(t, ",", de.DecimalSeparator())
}

func TestFormatProviderParse(t *testing.T) {
	de := NewFormatProvider(language.German)
	f, err := de.ParseFloat("1.234,5", 64)
	require.NoError(t, err)
	assert.Equal(t, 1234.5, f)

	d, err := de.ParseDecimal("-0,25")
	require.NoError(t, err)
	assert.Equal(t, "-0.25", d.String())

	i, err := Invariant.ParseInteger(" -42 ")
	require.NoError(t, err)
	assert.Equal(t, int64(-42), i.Int64())

	_, err = Invariant.ParseInteger("1,000")
	assert.True(t, errors.Is(err, ErrConversion))
	_, err = Invariant.ParseInteger("-")
	assert.True(t, errors.Is(err, ErrConversion))
}

func TestStorageUsesFormatProvider(t *testing.T) {
	s, err := New(KindDouble, WithFormat(NewFormatProvider(language.German)), WithCapacity(1))
	require.NoError(t, err)
	require.NoError(t, s.Set(0, "2,5"))
	assert.Equal(t, 2.5, s.Get(0))

	text, err := s.ConvertObjectToXml(s.Get(0))
	require.NoError(t, err)
	assert.Equal(t, "2.5", text, "xml text is culture invariant")
}
