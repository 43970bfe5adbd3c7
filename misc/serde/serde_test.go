package serde

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScalarsRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	n1, err := IntWriteTo(&buf, -1234567890123)
	require.NoError(t, err)
	n2, err := BoolWriteTo(&buf, true)
	require.NoError(t, err)
	n3, err := StringWriteTo(&buf, "héllo")
	require.NoError(t, err)
	n4, err := BytesWriteTo(&buf, []byte{})
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n1+n2+n3+n4)

	var i int64
	var b bool
	var s string
	var bs []byte
	r := bytes.NewReader(buf.Bytes())
	_, err = IntReadFrom(&i, r)
	require.NoError(t, err)
	_, err = BoolReadFrom(&b, r)
	require.NoError(t, err)
	_, err = StringReadFrom(&s, r)
	require.NoError(t, err)
	_, err = BytesReadFrom(&bs, r)
	require.NoError(t, err)

	assert.Equal(t, int64(-1234567890123), i)
	assert.True(t, b)
	assert.Equal(t, "héllo", s)
	assert.Empty(t, bs)
	assert.Zero(t, r.Len())
}

func TestStringsRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		input []string
	}{
		{name: "empty", input: []string{}},
		{name: "1 element", input: []string{"a"}},
		{name: "blank elements", input: []string{"", "b", "", "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			written, err := StringsWriteTo(&buf, tt.input)
			require.NoError(t, err)

			var got []string
			read, err := StringsReadFrom(&got, &buf)
			require.NoError(t, err)
			assert.Equal(t, written, read)
			assert.Equal(t, tt.input, got)
		})
	}
}

func TestTruncatedInput(t *testing.T) {
	var buf bytes.Buffer
	_, err := StringWriteTo(&buf, "truncated")
	require.NoError(t, err)

	var s string
	_, err = StringReadFrom(&s, bytes.NewReader(buf.Bytes()[:buf.Len()-2]))
	assert.Error(t, err)

	var b bool
	_, err = BoolReadFrom(&b, bytes.NewReader([]byte{7}))
	assert.Error(t, err)
}
