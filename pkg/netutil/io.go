package netutil

import (
	"io"
)

// ReadExactly reads exactly expectedLength bytes from stream, blocking
// until they all arrived or the stream failed.
func ReadExactly(stream io.Reader, expectedLength int) ([]byte, error) {
	var buffer = make([]byte, expectedLength)
	n, err := io.ReadFull(stream, buffer)
	if err != nil {
		return nil, err
	}

	return buffer[:n], nil
}
