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
	"time"

	"gorm.io/gorm"
)

// Bootstrap job statuses.
const (
	JobStatusRunning   = "running"
	JobStatusSucceeded = "succeeded"
	JobStatusFailed    = "failed"
)

// BootstrapJob records one run of the shared volume format command. The
// stored command line is redacted: credentials never reach the database.
type BootstrapJob struct {
	Id         string     `json:"id" gorm:"primaryKey"`
	Command    string     `json:"command"`
	Status     string     `json:"status"`
	Output     string     `json:"output"`
	Error      string     `json:"error"`
	CreatedAt  *time.Time `json:"created_at" gorm:"autoCreateTime:milli"`
	FinishedAt *time.Time `json:"finished_at"`
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&BootstrapJob{})
}
