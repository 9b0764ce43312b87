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
	"context"
	"errors"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"redis-auth-proxy/internal/database"
	"redis-auth-proxy/internal/metrics"
)

type Server struct {
	config   *Config
	metrics  *metrics.Collector
	repo     *database.Repository
	logger   *slog.Logger
	listener net.Listener
	running  atomic.Bool
}

func New(config *Config) (*Server, error) {
	logger := slog.Default().WithGroup("proxy")

	repo, err := database.New(config.Database.Path)
	if err != nil {
		return nil, err
	}

	return &Server{
		config:  config,
		metrics: metrics.NewCollector(),
		repo:    repo,
		logger:  logger,
	}, nil
}

func (s *Server) Start(ctx context.Context) error {
	if err := s.startProxyServer(); err != nil {
		return err
	}

	go s.startAdminServer(ctx)

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sigCh:
		s.logger.Info("Shutdown signal received")
	case <-ctx.Done():
		s.logger.Info("Context cancelled")
	}

	return s.Shutdown()
}

// Shutdown stops accepting new connections. Established sessions keep
// relaying until their own legs close.
func (s *Server) Shutdown() error {
	s.logger.Info("Shutting down server...")

	if s.listener != nil {
		if err := s.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			s.logger.Error("Error when closing listener", "error", err)
		}
	}

	err := s.repo.Close()
	if err != nil {
		s.logger.Error("Error closing database", "error", err)
	}

	return nil
}
