// Copyright (c) 2026 ToeiRei
// Paydesk - payment recipient allocation
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import "github.com/toeirei/paydesk/internal/logging"

// dbLogf writes a debug line through the shared logger. Output only appears
// when debug logging is enabled.
func dbLogf(format string, v ...any) {
	logging.Debugf(format, v...)
}
