/**
 * Copyright 2025 Dhiego Cassiano Fogaça Barbosa
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package resp

import (
	"bufio"
	"errors"
	"io"
	"strconv"

	"redis-auth-proxy/pkg/netutil"
)

// Reader decodes RESP frames from a stream. Bytes pulled from the stream
// but not yet consumed stay buffered in the Reader, so once frame parsing
// stops the same Reader must keep serving the raw byte relay.
type Reader struct {
	stream *bufio.Reader
}

func NewReader(stream io.Reader) *Reader {
	return &Reader{stream: bufio.NewReader(stream)}
}

// Read hands out raw bytes, draining the parse buffer first.
func (r *Reader) Read(p []byte) (int, error) {
	return r.stream.Read(p)
}

// WriteTo lets io.Copy drain the parse buffer before the underlying stream.
func (r *Reader) WriteTo(w io.Writer) (int64, error) {
	return r.stream.WriteTo(w)
}

// ReadCommand reads one command frame. It blocks until a full frame
// arrives, the stream fails, or the frame turns out malformed. Null and
// empty arrays are returned as empty frames, not errors.
func (r *Reader) ReadCommand() (Frame, error) {
	line, err := r.readLine()
	if err != nil {
		return Frame{}, err
	}

	if len(line) == 0 {
		return Frame{}, NewProtocolError("empty command line")
	}

	if line[0] != TYPE_ARRAY {
		return Frame{}, NewProtocolError("expected '%c', got '%c'", TYPE_ARRAY, line[0])
	}

	count, err := parseLength(line[1:])
	if err != nil || count < -1 || count > MAX_ARRAY_LENGTH {
		return Frame{}, NewProtocolError("invalid multibulk length")
	}

	if count <= 0 {
		return Frame{}, nil
	}

	args := make([][]byte, 0, count)
	for i := int64(0); i < count; i++ {
		arg, err := r.readBulkString()
		if err != nil {
			return Frame{}, err
		}

		args = append(args, arg)
	}

	return Frame{Args: args}, nil
}

// ReadReply reads one single-line reply, as AUTH produces.
func (r *Reader) ReadReply() (Reply, error) {
	line, err := r.readLine()
	if err != nil {
		return Reply{}, err
	}

	if len(line) == 0 {
		return Reply{}, NewProtocolError("empty reply line")
	}

	switch line[0] {
	case TYPE_SIMPLE_STRING, TYPE_ERROR:
		return Reply{Marker: line[0], Message: string(line[1:])}, nil
	default:
		return Reply{}, NewProtocolError("unexpected reply type '%c'", line[0])
	}
}

func (r *Reader) readBulkString() ([]byte, error) {
	line, err := r.readLine()
	if err != nil {
		return nil, err
	}

	if len(line) == 0 || line[0] != TYPE_BULK_STRING {
		return nil, NewProtocolError("expected '%c', got %q", TYPE_BULK_STRING, line)
	}

	length, err := parseLength(line[1:])
	if err != nil || length < -1 || length > MAX_BULK_LENGTH {
		return nil, NewProtocolError("invalid bulk length")
	}

	if length == -1 {
		// Null bulk string
		return nil, nil
	}

	buffer, err := netutil.ReadExactly(r.stream, int(length)+2)
	if err != nil {
		return nil, err
	}

	if buffer[length] != '\r' || buffer[length+1] != '\n' {
		return nil, NewProtocolError("bulk string not terminated by CRLF")
	}

	return buffer[:length], nil
}

func (r *Reader) readLine() ([]byte, error) {
	line, err := r.stream.ReadSlice('\n')
	if err != nil {
		if errors.Is(err, bufio.ErrBufferFull) {
			return nil, NewProtocolError("line too long")
		}

		return nil, err
	}

	if len(line) < 2 || line[len(line)-2] != '\r' {
		return nil, NewProtocolError("line not terminated by CRLF")
	}

	return line[:len(line)-2], nil
}

func parseLength(data []byte) (int64, error) {
	// Length headers are digits with at most one leading '-'; ParseInt
	// alone would also accept an explicit '+'.
	if len(data) > 0 && data[0] == '+' {
		return 0, strconv.ErrSyntax
	}

	return strconv.ParseInt(string(data), 10, 64)
}
