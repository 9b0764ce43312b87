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

package http

import (
	"errors"
	"fmt"
	"net/http"
	"os/exec"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"redis-auth-proxy/internal/database"
	apperrors "redis-auth-proxy/internal/errors"
)

// runBootstrap formats the shared JuiceFS volume against the upstream
// metadata store and the configured object-storage bucket. Formatting is
// idempotent on an already formatted volume, but every invocation is
// recorded as a job.
func (h *Handler) runBootstrap(w http.ResponseWriter, r *http.Request) {
	if err := h.authorizeBootstrap(r); err != nil {
		h.handleBootstrapError(w, err)
		return
	}

	if err := h.checkBootstrapConfig(); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"status": "error", "error": err.Error()})
		return
	}

	// The job log keeps the command without credentials.
	job, err := h.repo.CreateJob(fmt.Sprintf("%s format --storage s3 --bucket %s %s", h.options.Binary, h.options.BucketURL, h.options.Volume))
	if err != nil {
		h.logger.Error("Error when recording bootstrap job", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	h.logger.Info("Bootstrap started", "job", job.Id, "volume", h.options.Volume)

	output, err := exec.CommandContext(r.Context(), h.options.Binary,
		"format",
		"--storage", "s3",
		"--bucket", h.options.BucketURL,
		"--access-key", h.options.AccessKey,
		"--secret-key", h.options.SecretKey,
		h.options.MetaURI+"/0",
		h.options.Volume,
	).CombinedOutput()
	if err != nil {
		h.logger.Error("Error when formatting the shared volume", "error", err, "output", string(output))

		if err := h.repo.FinishJob(job, database.JobStatusFailed, string(output), err.Error()); err != nil {
			h.logger.Error("Error when updating bootstrap job", "error", err)
		}

		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"status": "error", "job_id": job.Id, "error": err.Error()})
		return
	}

	if err := h.repo.FinishJob(job, database.JobStatusSucceeded, string(output), ""); err != nil {
		h.logger.Error("Error when updating bootstrap job", "error", err)
	}

	h.logger.Info("Bootstrap finished", "job", job.Id)
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "job_id": job.Id, "output": string(output)})
}

func (h *Handler) listBootstrapJobs(w http.ResponseWriter, r *http.Request) {
	if err := h.authorizeBootstrap(r); err != nil {
		h.handleBootstrapError(w, err)
		return
	}

	jobs, err := h.repo.ListJobs()
	if err != nil {
		h.logger.Error("Error when listing bootstrap jobs", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, jobs)
}

func (h *Handler) authorizeBootstrap(r *http.Request) error {
	if h.options.TokenSecret == "" {
		return apperrors.ErrBootstrapDisabled
	}

	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return apperrors.ErrUnauthorized
	}

	_, err := jwt.Parse(
		header[7:], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}

			return []byte(h.options.TokenSecret), nil
		},
	)
	if err != nil {
		return apperrors.ErrUnauthorized
	}

	return nil
}

func (h *Handler) checkBootstrapConfig() error {
	missing := make([]string, 0)

	if h.options.AccessKey == "" {
		missing = append(missing, "STORJ_ACCESS_KEY")
	}

	if h.options.SecretKey == "" {
		missing = append(missing, "STORJ_SECRET_KEY")
	}

	if h.options.BucketURL == "" {
		missing = append(missing, "STORJ_BUCKET_URL")
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", apperrors.ErrBootstrapConfig, strings.Join(missing, ", "))
	}

	return nil
}

func (h *Handler) handleBootstrapError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperrors.ErrBootstrapDisabled):
		w.WriteHeader(http.StatusForbidden)
	case errors.Is(err, apperrors.ErrUnauthorized):
		w.WriteHeader(http.StatusUnauthorized)
	default:
		w.WriteHeader(http.StatusInternalServerError)
	}
}
