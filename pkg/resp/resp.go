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

import "strings"

// Markers for the RESP value types the proxy inspects. Only arrays of bulk
// strings (commands) and simple strings or errors (replies) are ever parsed;
// everything else flows through the relay untouched.
const (
	TYPE_SIMPLE_STRING = '+'
	TYPE_ERROR         = '-'
	TYPE_INTEGER       = ':'
	TYPE_BULK_STRING   = '$'
	TYPE_ARRAY         = '*'
)

// Caps applied while parsing frames from unauthenticated peers.
const (
	MAX_ARRAY_LENGTH = 1024
	MAX_BULK_LENGTH  = 1 << 20
)

var CRLF = []byte{'\r', '\n'}

// Frame is a single client command: a RESP array of bulk strings.
type Frame struct {
	Args [][]byte
}

// Empty reports whether the frame carries no arguments. Clients may send
// empty or null arrays between commands; those are not commands themselves.
func (f Frame) Empty() bool {
	return len(f.Args) == 0
}

// Name returns the upper-cased command name, or "" for an empty frame.
func (f Frame) Name() string {
	if f.Empty() {
		return ""
	}

	return strings.ToUpper(string(f.Args[0]))
}

// Reply is a single-line reply, as servers produce for AUTH.
type Reply struct {
	Marker  byte
	Message string
}

// OK reports whether the reply is the simple string "OK".
func (r Reply) OK() bool {
	return r.Marker == TYPE_SIMPLE_STRING && r.Message == "OK"
}
