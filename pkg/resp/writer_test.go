package resp

import (
	"bytes"
	"testing"
)

func TestSendCommand(t *testing.T) {
	var buffer bytes.Buffer

	if _, err := SendCommand(&buffer, "AUTH", "svc-user", "svc-pass"); err != nil {
		t.Fatalf("SendCommand returned error: %v", err)
	}

	expected := "*3\r\n$4\r\nAUTH\r\n$8\r\nsvc-user\r\n$8\r\nsvc-pass\r\n"
	if buffer.String() != expected {
		t.Fatalf("expected %q, got %q", expected, buffer.String())
	}
}

func TestSendSimpleString(t *testing.T) {
	var buffer bytes.Buffer

	if _, err := SendSimpleString(&buffer, "OK"); err != nil {
		t.Fatalf("SendSimpleString returned error: %v", err)
	}

	if buffer.String() != "+OK\r\n" {
		t.Fatalf("expected %q, got %q", "+OK\r\n", buffer.String())
	}
}

func TestSendError(t *testing.T) {
	var buffer bytes.Buffer

	if _, err := SendError(&buffer, "ERR invalid password"); err != nil {
		t.Fatalf("SendError returned error: %v", err)
	}

	if buffer.String() != "-ERR invalid password\r\n" {
		t.Fatalf("expected %q, got %q", "-ERR invalid password\r\n", buffer.String())
	}
}

func TestSendFrame(t *testing.T) {
	var buffer bytes.Buffer

	frame := Frame{Args: [][]byte{[]byte("HELLO"), []byte("3"), []byte("SETNAME"), []byte("app")}}
	if _, err := SendFrame(&buffer, frame); err != nil {
		t.Fatalf("SendFrame returned error: %v", err)
	}

	expected := "*4\r\n$5\r\nHELLO\r\n$1\r\n3\r\n$7\r\nSETNAME\r\n$3\r\napp\r\n"
	if buffer.String() != expected {
		t.Fatalf("expected %q, got %q", expected, buffer.String())
	}
}

func TestSendFrameNullArgument(t *testing.T) {
	var buffer bytes.Buffer

	frame := Frame{Args: [][]byte{[]byte("GET"), nil}}
	if _, err := SendFrame(&buffer, frame); err != nil {
		t.Fatalf("SendFrame returned error: %v", err)
	}

	expected := "*2\r\n$3\r\nGET\r\n$-1\r\n"
	if buffer.String() != expected {
		t.Fatalf("expected %q, got %q", expected, buffer.String())
	}
}
