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
	"net"
	"strconv"
)

func (s *Server) startProxyServer() error {
	listener, err := net.Listen("tcp", net.JoinHostPort(s.config.Proxy.Host, strconv.Itoa(int(s.config.Proxy.Port))))
	if err != nil {
		s.logger.Error("Error when listening for connections", "error", err)
		return err
	}

	s.listener = listener
	s.running.Store(true)

	s.logger.Info("Proxy is running", "address", listener.Addr().String(), "upstream", s.config.Upstream.Address())

	go s.acceptLoop(listener)

	return nil
}

func (s *Server) acceptLoop(listener net.Listener) {
	defer s.running.Store(false)

	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}

			s.logger.Error("Error when accepting a connection", "error", err)
			continue
		}

		go s.handleClient(conn)
	}
}

func (s *Server) handleClient(conn net.Conn) {
	s.logger.Debug("Connection from client", "remoteAddr", conn.RemoteAddr().String())

	defer func(conn net.Conn) {
		err := conn.Close()
		if err != nil && !errors.Is(err, net.ErrClosed) {
			s.logger.Error("Error when closing client connection", "error", err)
		}
	}(conn)

	if tcpConn, ok := conn.(*net.TCPConn); ok {
		// Set TCP_NODELAY to true
		if err := tcpConn.SetNoDelay(true); err != nil {
			s.logger.Error("Error when setting TCP_NODELAY", "error", err)
		}
	}

	newSession(s.config, s.metrics, s.logger, conn).run()
}

// Running reports whether the accept loop is live.
func (s *Server) Running() bool {
	return s.running.Load()
}

// Addr returns the bound proxy address, or nil before startup.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}

	return s.listener.Addr()
}
