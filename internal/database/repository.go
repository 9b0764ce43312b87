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

package database

import (
	"errors"
	"fmt"
	"os"
	"path"
	"time"

	apperrors "redis-auth-proxy/internal/errors"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

// New opens (or creates) the SQLite database under dbPath and runs the
// schema migration.
func New(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(dbPath, 0o755); err != nil {
		return nil, err
	}

	db, err := gorm.Open(sqlite.Open(path.Join(dbPath, "proxy.db")), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return NewRepository(db), nil
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

func (r *Repository) CreateJob(command string) (*BootstrapJob, error) {
	job := &BootstrapJob{
		Id:      uuid.NewString(),
		Command: command,
		Status:  JobStatusRunning,
	}

	if err := r.db.Create(job).Error; err != nil {
		return nil, err
	}

	return job, nil
}

func (r *Repository) FinishJob(job *BootstrapJob, status string, output string, errorText string) error {
	now := time.Now()

	return r.db.Model(job).Updates(map[string]interface{}{
		"status":      status,
		"output":      output,
		"error":       errorText,
		"finished_at": &now,
	}).Error
}

func (r *Repository) GetJobByID(id string) (*BootstrapJob, error) {
	var job BootstrapJob
	if err := r.db.Where("id = ?", id).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &job, nil
}

func (r *Repository) ListJobs() ([]BootstrapJob, error) {
	var jobs []BootstrapJob
	if err := r.db.Order("created_at desc").Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}
