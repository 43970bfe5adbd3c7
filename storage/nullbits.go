package storage

import (
	"fmt"
	"io"

	"github.com/RoaringBitmap/roaring"
	"github.com/ovlad32/colstore/misc/serde"
	"github.com/pkg/errors"
)

// NullBits records which rows of a storage hold null.
// A set bit means null; rows outside [0, Capacity()) panic.
type NullBits struct {
	capacity int
	bits     *roaring.Bitmap
}

func NewNullBits(capacity int) *NullBits {
	if capacity < 0 {
		panic(fmt.Sprintf("negative null bits capacity %v", capacity))
	}
	return &NullBits{
		capacity: capacity,
		bits:     roaring.NewBitmap(),
	}
}

func (n *NullBits) checkRow(row int) {
	if row < 0 || row >= n.capacity {
		panic(fmt.Sprintf("row %v is out of null bits range [0,%v)", row, n.capacity))
	}
}

func (n *NullBits) Get(row int) bool {
	n.checkRow(row)
	return n.bits.ContainsInt(row)
}

func (n *NullBits) Set(row int, null bool) {
	n.checkRow(row)
	if null {
		n.bits.AddInt(row)
	} else {
		n.bits.Remove(uint32(row))
	}
}

// Resize keeps the bits below capacity. New rows are not null.
func (n *NullBits) Resize(capacity int) {
	if capacity < 0 {
		panic(fmt.Sprintf("negative null bits capacity %v", capacity))
	}
	if capacity < n.capacity {
		n.bits.RemoveRange(uint64(capacity), uint64(n.capacity))
	}
	n.capacity = capacity
}

func (n *NullBits) Capacity() int {
	return n.capacity
}

// Count returns the number of null rows.
func (n *NullBits) Count() int {
	return int(n.bits.GetCardinality())
}

func (n *NullBits) Clone() *NullBits {
	return &NullBits{
		capacity: n.capacity,
		bits:     n.bits.Clone(),
	}
}

// Rows lists null rows in ascending order.
func (n *NullBits) Rows() []int {
	result := make([]int, 0, n.bits.GetCardinality())
	it := n.bits.Iterator()
	for it.HasNext() {
		result = append(result, int(it.Next()))
	}
	return result
}

// Bitmap exposes a copy of the underlying set of null rows.
func (n *NullBits) Bitmap() *roaring.Bitmap {
	return n.bits.Clone()
}

func (n *NullBits) WriteTo(w io.Writer) (total int64, err error) {
	total, err = serde.IntWriteTo(w, int64(n.capacity))
	if err != nil {
		err = errors.Wrap(err, "writing null bits capacity")
		return
	}
	n.bits.RunOptimize()
	data, err := n.bits.ToBytes()
	if err != nil {
		err = errors.Wrap(err, "encoding null bits")
		return
	}
	ni, err := serde.BytesWriteTo(w, data)
	total += ni
	if err != nil {
		err = errors.Wrap(err, "writing null bits")
	}
	return
}

func (n *NullBits) ReadFrom(r io.Reader) (total int64, err error) {
	var capacity int64
	total, err = serde.IntReadFrom(&capacity, r)
	if err != nil {
		err = errors.Wrap(err, "reading null bits capacity")
		return
	}
	if capacity < 0 {
		err = errors.Errorf("got negative null bits capacity %v", capacity)
		return
	}
	var data []byte
	ni, err := serde.BytesReadFrom(&data, r)
	total += ni
	if err != nil {
		err = errors.Wrap(err, "reading null bits")
		return
	}
	bits := roaring.NewBitmap()
	if err = bits.UnmarshalBinary(data); err != nil {
		err = errors.Wrap(err, "decoding null bits")
		return
	}
	if !bits.IsEmpty() && int64(bits.Maximum()) >= capacity {
		err = errors.Errorf("null row %v exceeds capacity %v", bits.Maximum(), capacity)
		return
	}
	n.capacity = int(capacity)
	n.bits = bits
	return
}
