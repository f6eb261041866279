// SAR - Smart Adaptive Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

// Package models defines the JSON shapes returned by the status server.
//
// Every endpoint except /metrics wraps its payload in APIResponse so clients
// can branch on "status" before reading "data".
package models
