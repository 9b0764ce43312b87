package netutil

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestReadExactly(t *testing.T) {
	data, err := ReadExactly(strings.NewReader("hello world"), 5)
	if err != nil {
		t.Fatalf("ReadExactly returned error: %v", err)
	}

	if string(data) != "hello" {
		t.Fatalf("expected %q, got %q", "hello", string(data))
	}
}

func TestReadExactlyShortStream(t *testing.T) {
	_, err := ReadExactly(strings.NewReader("hi"), 5)
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected io.ErrUnexpectedEOF, got %v", err)
	}
}
