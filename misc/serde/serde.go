package serde

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

const (
	falseByte byte = 0
	trueByte  byte = 0xFF
	intSize        = 8
)

// maxChunk bounds a single length-prefixed payload.
const maxChunk = 1 << 30

func ByteWriteTo(w io.Writer, payload byte) (total int64, err error) {
	var buffer = [1]byte{payload}
	ni, err := w.Write(buffer[:])
	total += int64(ni)
	if err != nil {
		err = errors.Wrap(err, "couldn't serialize byte value")
		return
	}
	return
}

func ByteReadFrom(payload *byte, r io.Reader) (total int64, err error) {
	var buffer [1]byte
	ni, err := io.ReadFull(r, buffer[:])
	total += int64(ni)
	if err != nil {
		err = errors.Wrap(err, "couldn't deserialize byte value")
		return
	}
	*payload = buffer[0]
	return
}

func BoolWriteTo(w io.Writer, payload bool) (int64, error) {
	if payload {
		return ByteWriteTo(w, trueByte)
	}
	return ByteWriteTo(w, falseByte)
}

func BoolReadFrom(payload *bool, r io.Reader) (total int64, err error) {
	var b byte
	total, err = ByteReadFrom(&b, r)
	if err != nil {
		return
	}
	switch b {
	case trueByte:
		*payload = true
	case falseByte:
		*payload = false
	default:
		err = errors.Errorf("unexpected boolean marker %#x", b)
	}
	return
}

func IntWriteTo(w io.Writer, payload int64) (total int64, err error) {
	var buffer [intSize]byte
	binary.BigEndian.PutUint64(buffer[:], uint64(payload))
	ni, err := w.Write(buffer[:])
	total += int64(ni)
	if err != nil {
		err = errors.Wrap(err, "couldn't serialize integer value")
		return
	}
	return
}

func IntReadFrom(payload *int64, r io.Reader) (total int64, err error) {
	var buffer [intSize]byte
	ni, err := io.ReadFull(r, buffer[:])
	total += int64(ni)
	if err != nil {
		err = errors.Wrap(err, "couldn't deserialize integer value")
		return
	}
	*payload = int64(binary.BigEndian.Uint64(buffer[:]))
	return
}

func BytesWriteTo(w io.Writer, payload []byte) (total int64, err error) {
	total, err = IntWriteTo(w, int64(len(payload)))
	if err != nil {
		err = errors.Wrap(err, "couldn't serialize data length")
		return
	}
	ni, err := w.Write(payload)
	total += int64(ni)
	if err != nil {
		err = errors.Wrap(err, "couldn't serialize data")
		return
	}
	return
}

func BytesReadFrom(payload *[]byte, r io.Reader) (total int64, err error) {
	var size int64
	total, err = IntReadFrom(&size, r)
	if err != nil {
		err = errors.Wrap(err, "couldn't read data length")
		return
	}
	if size < 0 || size > maxChunk {
		err = errors.Errorf("got invalid data length %v", size)
		return
	}
	buffer := make([]byte, size)
	ni, err := io.ReadFull(r, buffer)
	total += int64(ni)
	if err != nil {
		err = errors.Wrapf(err, "couldn't read %v bytes of data", size)
		return
	}
	*payload = buffer
	return
}

func StringWriteTo(w io.Writer, payload string) (int64, error) {
	total, err := BytesWriteTo(w, []byte(payload))
	if err != nil {
		return total, errors.Wrap(err, "couldn't serialize string")
	}
	return total, nil
}

func StringReadFrom(payload *string, r io.Reader) (int64, error) {
	var buffer []byte
	total, err := BytesReadFrom(&buffer, r)
	if err != nil {
		return total, errors.Wrap(err, "couldn't deserialize string")
	}
	*payload = string(buffer)
	return total, nil
}

// StringsWriteTo writes the slice length followed by each element.
func StringsWriteTo(w io.Writer, payload []string) (total int64, err error) {
	total, err = IntWriteTo(w, int64(len(payload)))
	if err != nil {
		err = errors.Wrap(err, "serializing slice length")
		return
	}
	for i := range payload {
		var ni int64
		ni, err = StringWriteTo(w, payload[i])
		total += ni
		if err != nil {
			err = errors.Wrapf(err, "serializing slice element #%v", i)
			return
		}
	}
	return
}

func StringsReadFrom(payload *[]string, r io.Reader) (total int64, err error) {
	var size int64
	total, err = IntReadFrom(&size, r)
	if err != nil {
		err = errors.Wrap(err, "could not read slice length")
		return
	}
	if size < 0 || size > maxChunk {
		err = errors.Errorf("got invalid slice length %v", size)
		return
	}
	result := make([]string, size)
	for i := range result {
		var ni int64
		ni, err = StringReadFrom(&result[i], r)
		total += ni
		if err != nil {
			err = errors.Wrapf(err, "couldn't read string value at position #%v", i)
			return
		}
	}
	*payload = result
	return
}
