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
	"io"
	"strconv"
)

// SendSimpleString writes "+<message>" followed by CRLF.
func SendSimpleString(stream io.Writer, message string) (int, error) {
	buffer := make([]byte, 0, len(message)+3)
	buffer = append(buffer, TYPE_SIMPLE_STRING)
	buffer = append(buffer, message...)
	buffer = append(buffer, CRLF...)

	return stream.Write(buffer)
}

// SendError writes "-<message>" followed by CRLF.
func SendError(stream io.Writer, message string) (int, error) {
	buffer := make([]byte, 0, len(message)+3)
	buffer = append(buffer, TYPE_ERROR)
	buffer = append(buffer, message...)
	buffer = append(buffer, CRLF...)

	return stream.Write(buffer)
}

// SendFrame writes a command frame as an array of bulk strings. Nil
// arguments are encoded as null bulk strings. The frame goes out in a
// single Write.
func SendFrame(stream io.Writer, frame Frame) (int, error) {
	buffer := make([]byte, 0, 16*(len(frame.Args)+1))
	buffer = append(buffer, TYPE_ARRAY)
	buffer = strconv.AppendInt(buffer, int64(len(frame.Args)), 10)
	buffer = append(buffer, CRLF...)

	for _, arg := range frame.Args {
		buffer = append(buffer, TYPE_BULK_STRING)
		if arg == nil {
			buffer = strconv.AppendInt(buffer, -1, 10)
			buffer = append(buffer, CRLF...)
			continue
		}

		buffer = strconv.AppendInt(buffer, int64(len(arg)), 10)
		buffer = append(buffer, CRLF...)
		buffer = append(buffer, arg...)
		buffer = append(buffer, CRLF...)
	}

	return stream.Write(buffer)
}

// SendCommand builds and writes a command frame from string arguments.
func SendCommand(stream io.Writer, args ...string) (int, error) {
	frame := Frame{Args: make([][]byte, 0, len(args))}
	for _, arg := range args {
		frame.Args = append(frame.Args, []byte(arg))
	}

	return SendFrame(stream, frame)
}
