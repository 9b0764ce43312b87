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
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"redis-auth-proxy/internal/auth"
	apperrors "redis-auth-proxy/internal/errors"
	"redis-auth-proxy/internal/metrics"
	"redis-auth-proxy/pkg/resp"
)

type handshakeState int

const (
	stateAwaitingAuth handshakeState = iota
	stateAuthenticated
	stateRejected
)

const (
	replyOK              = "OK"
	replyInvalidPassword = "ERR invalid password"
	replyAuthRequired    = "NOAUTH Authentication required."
	replyWrongArgs       = "ERR wrong number of arguments for 'auth' command"
	replyProtocolPrefix  = "ERR Protocol error: "
)

// session relays one client connection to the upstream. The client
// authenticates against the proxy secret; the upstream leg is opened and
// authenticated with the upstream credentials only after that succeeds.
type session struct {
	config  *Config
	metrics *metrics.Collector
	logger  *slog.Logger

	client       net.Conn
	clientReader *resp.Reader

	upstream       net.Conn
	upstreamReader *resp.Reader

	state handshakeState
	hello resp.Frame

	bytesToUpstream   int64
	bytesFromUpstream int64
}

func newSession(config *Config, collector *metrics.Collector, logger *slog.Logger, client net.Conn) *session {
	return &session{
		config:       config,
		metrics:      collector,
		logger:       logger.With("client", client.RemoteAddr().String()),
		client:       client,
		clientReader: resp.NewReader(client),
	}
}

func (s *session) run() {
	start := time.Now()
	status := metrics.StatusFailed
	s.metrics.ConnectionOpened()

	defer func() {
		if s.upstream != nil {
			if err := s.upstream.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
				s.logger.Error("Error when closing the upstream connection", "error", err)
			}
		}

		s.metrics.ConnectionClosed(status, time.Since(start))
		s.logger.Debug("Session finished",
			"status", status,
			"bytes_to_upstream", s.bytesToUpstream,
			"bytes_from_upstream", s.bytesFromUpstream)
	}()

	if err := s.handshake(); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrAuthRejected), errors.Is(err, apperrors.ErrAuthRequired):
			status = metrics.StatusRejected
			s.metrics.ErrorOccurred(metrics.ErrorAuthRejected)
			s.logger.Warn("Client failed to authenticate", "error", err)
		case isProtocolError(err):
			s.metrics.ErrorOccurred(metrics.ErrorProtocol)
			s.logger.Warn("Client sent a malformed command", "error", err)
		case !isDisconnect(err):
			s.logger.Error("Error when reading the client handshake", "error", err)
		}
		return
	}

	if err := s.connectUpstream(); err != nil {
		if errors.Is(err, apperrors.ErrUpstreamAuth) {
			s.metrics.ErrorOccurred(metrics.ErrorUpstreamAuth)
		} else {
			s.metrics.ErrorOccurred(metrics.ErrorUpstreamConnect)
		}
		s.logger.Error("Error when connecting to the upstream", "error", err)
		return
	}

	status = metrics.StatusAccepted
	s.logger.Info("Session established", "upstream", s.config.Upstream.Address())
	s.relay()
}

// handshake consumes client commands until one authenticates the
// connection. Nothing read here is ever forwarded upstream.
func (s *session) handshake() error {
	if err := s.client.SetReadDeadline(time.Now().Add(s.config.Proxy.AuthTimeout)); err != nil {
		return err
	}

	for s.state == stateAwaitingAuth {
		frame, err := s.clientReader.ReadCommand()
		if err != nil {
			var protocolErr *resp.ProtocolError
			if errors.As(err, &protocolErr) {
				resp.SendError(s.client, replyProtocolPrefix+protocolErr.Message)
			}
			return err
		}

		// Empty arrays carry no command; some clients send them as pings.
		if frame.Empty() {
			continue
		}

		if err := s.authenticate(frame); err != nil {
			return err
		}
	}

	return s.client.SetReadDeadline(time.Time{})
}

func (s *session) authenticate(frame resp.Frame) error {
	switch frame.Name() {
	case "AUTH":
		return s.authWithPassword(frame)
	case "HELLO":
		return s.authWithHello(frame)
	default:
		resp.SendError(s.client, replyAuthRequired)
		s.state = stateRejected
		return apperrors.ErrAuthRequired
	}
}

// authWithPassword handles AUTH <password> and AUTH <username> <password>.
// The proxy holds a single shared secret, so a username selects nothing
// and only the password is checked.
func (s *session) authWithPassword(frame resp.Frame) error {
	if len(frame.Args) < 2 || len(frame.Args) > 3 {
		resp.SendError(s.client, replyWrongArgs)
		s.state = stateRejected
		return apperrors.ErrAuthRejected
	}

	ok, err := s.verifySecret(frame.Args[len(frame.Args)-1])
	if err != nil {
		return err
	}

	if !ok {
		resp.SendError(s.client, replyInvalidPassword)
		s.state = stateRejected
		return apperrors.ErrAuthRejected
	}

	s.state = stateAuthenticated
	_, err = resp.SendSimpleString(s.client, replyOK)
	return err
}

// authWithHello handles HELLO <ver> AUTH <username> <password> [...]. The
// credential is checked locally, then stripped, and the remaining HELLO is
// replayed upstream once the proxy has logged in there, so the reply the
// client sees is the upstream's own.
func (s *session) authWithHello(frame resp.Frame) error {
	authIndex := helloAuthIndex(frame)
	if authIndex < 0 {
		resp.SendError(s.client, replyAuthRequired)
		s.state = stateRejected
		return apperrors.ErrAuthRequired
	}

	ok, err := s.verifySecret(frame.Args[authIndex+2])
	if err != nil {
		return err
	}

	if !ok {
		resp.SendError(s.client, replyInvalidPassword)
		s.state = stateRejected
		return apperrors.ErrAuthRejected
	}

	s.state = stateAuthenticated
	s.hello = stripHelloAuth(frame, authIndex)
	return nil
}

func (s *session) verifySecret(candidate []byte) (bool, error) {
	if s.config.Proxy.PasswordHash != "" {
		return auth.PasswordVerify(s.config.Proxy.PasswordHash, string(candidate))
	}

	return auth.VerifySecret([]byte(s.config.Proxy.Password), candidate), nil
}

func helloAuthIndex(frame resp.Frame) int {
	for i := 1; i+2 < len(frame.Args); i++ {
		if bytes.EqualFold(frame.Args[i], []byte("AUTH")) {
			return i
		}
	}

	return -1
}

func stripHelloAuth(frame resp.Frame, authIndex int) resp.Frame {
	stripped := resp.Frame{Args: make([][]byte, 0, len(frame.Args)-3)}
	stripped.Args = append(stripped.Args, frame.Args[:authIndex]...)
	stripped.Args = append(stripped.Args, frame.Args[authIndex+3:]...)
	return stripped
}

// connectUpstream dials the upstream and authenticates with the configured
// credentials. The client never sees these replies; on failure its
// connection is simply closed.
func (s *session) connectUpstream() error {
	dialer := net.Dialer{Timeout: s.config.Upstream.ConnectTimeout}

	conn, err := dialer.Dial("tcp", s.config.Upstream.Address())
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrUpstreamConnect, err)
	}

	s.upstream = conn
	s.upstreamReader = resp.NewReader(conn)

	if tcpConn, ok := conn.(*net.TCPConn); ok {
		// Set TCP_NODELAY to true
		if err := tcpConn.SetNoDelay(true); err != nil {
			s.logger.Error("Error when setting TCP_NODELAY on the upstream connection", "error", err)
		}
	}

	if err := conn.SetDeadline(time.Now().Add(s.config.Upstream.ConnectTimeout)); err != nil {
		return err
	}

	if err := s.loginUpstream(); err != nil {
		return err
	}

	if !s.hello.Empty() {
		if _, err := resp.SendFrame(conn, s.hello); err != nil {
			return fmt.Errorf("%w: %v", apperrors.ErrUpstreamConnect, err)
		}
	}

	return conn.SetDeadline(time.Time{})
}

func (s *session) loginUpstream() error {
	if s.config.Upstream.Password == "" {
		return nil
	}

	if _, err := resp.SendCommand(s.upstream, "AUTH", s.config.Upstream.Username, s.config.Upstream.Password); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrUpstreamConnect, err)
	}

	reply, err := s.upstreamReader.ReadReply()
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrUpstreamAuth, err)
	}

	if !reply.OK() {
		return fmt.Errorf("%w: %s", apperrors.ErrUpstreamAuth, reply.Message)
	}

	return nil
}
