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

package server

import (
	"errors"
	"io"
	"net"
	"sync"

	"redis-auth-proxy/internal/metrics"
	"redis-auth-proxy/pkg/resp"
)

// relay copies bytes between the two legs until either side closes. Reads
// go through the session readers so bytes they buffered during the
// handshake are drained before the raw connections are.
func (s *session) relay() {
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		s.bytesToUpstream = s.pump(s.upstream, s.clientReader, metrics.DirectionClientToUpstream)
	}()

	go func() {
		defer wg.Done()
		s.bytesFromUpstream = s.pump(s.client, s.upstreamReader, metrics.DirectionUpstreamToClient)
	}()

	wg.Wait()
}

func (s *session) pump(dst io.Writer, src io.Reader, direction string) int64 {
	written, err := io.Copy(dst, src)
	s.metrics.BytesTransferred(direction, written)

	if err != nil && !isDisconnect(err) {
		s.metrics.ErrorOccurred(metrics.ErrorRelayIO)
		s.logger.Error("Error when relaying traffic", "direction", direction, "error", err)
	}

	// Closing both legs unblocks the opposite pump.
	s.closeLegs()

	return written
}

func (s *session) closeLegs() {
	for _, conn := range []net.Conn{s.client, s.upstream} {
		if err := conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			s.logger.Debug("Error when closing a relay leg", "error", err)
		}
	}
}

func isDisconnect(err error) bool {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.ErrClosedPipe) || errors.Is(err, net.ErrClosed) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isProtocolError(err error) bool {
	var protocolErr *resp.ProtocolError
	return errors.As(err, &protocolErr)
}
