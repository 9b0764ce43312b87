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
	"fmt"
	"log/slog"
	"net/http"

	apphttp "redis-auth-proxy/internal/http"
)

func (s *Server) startAdminServer(ctx context.Context) {
	adminHandler := apphttp.NewHandler(s.repo, s.metrics, apphttp.Options{
		TokenSecret:      s.config.Admin.TokenSecret,
		UpstreamAddr:     s.config.Upstream.Address(),
		UpstreamUsername: s.config.Upstream.Username,
		UpstreamPassword: s.config.Upstream.Password,
		MetaURI:          s.config.Upstream.MetaURI(),
		AccessKey:        s.config.Bootstrap.AccessKey,
		SecretKey:        s.config.Bootstrap.SecretKey,
		BucketURL:        s.config.Bootstrap.BucketURL,
		Volume:           s.config.Bootstrap.Volume,
		Binary:           s.config.Bootstrap.Binary,
	})

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.config.Admin.Port),
		Handler: adminHandler,
	}

	slog.Debug("Starting admin HTTP server", "address", httpServer.Addr)
	if err := httpServer.ListenAndServe(); err != nil {
		s.logger.Error("Error when starting admin HTTP server", "error", err)
		return
	}
}
