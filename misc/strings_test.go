package misc

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoinSlice(t *testing.T) {
	items := []int{7, 8, 9}
	f := func(i int) string { return strconv.Itoa(items[i]) }
	assert.Equal(t, "", JoinSlice(0, ",", f))
	assert.Equal(t, "7", JoinSlice(1, ",", f))
	assert.Equal(t, "7, 8, 9", JoinSlice(3, ", ", f))
}
