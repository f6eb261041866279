// SAR - Smart Adaptive Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

// Package validation wraps go-playground/validator v10 with a shared
// instance and the custom tags SAR configuration needs:
//
//   - sqlident: a plain SQL identifier (letters, digits, underscore; not starting with a digit)
//   - memsize: a memory size such as 512MB, 2GB or 4096M
//
// Field names in errors are taken from koanf tags so messages name the
// configuration key the operator actually wrote.
package validation
