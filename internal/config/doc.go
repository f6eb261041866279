// SAR - Smart Adaptive Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

/*
Package config loads SAR configuration with koanf v2.

Values are layered, later sources winning:

 1. Built-in defaults (defaultConfig)
 2. An optional YAML file: CONFIG_PATH, or the first of config.yaml,
    config.yml, /etc/sar/config.yaml, /etc/sar/config.yml
 3. Environment variables, mapped onto keys by envTransformFunc

The environment names of the batch deployment (BATCH_SIZE, MAX_RETRIES,
TRANSACTION_TIMEOUT, MEMORY_LIMIT, PROCESSED_DATA_PATH, LOG_LEVEL) are kept.
Duration variables accept either Go durations ("90s") or bare seconds ("300").

After unmarshalling, Validate runs struct rules through internal/validation and
then the cross-field checks that tags cannot express.

Example YAML:

	model:
	  similarity: lift
	  time_decay_coefficient: 14
	source:
	  format: parquet
	  path: /data/processed/interactions.parquet
	inject:
	  batch_size: 500
	redis:
	  enabled: true
	  addr: redis:6379

Config is immutable after Load and safe for concurrent reads.
*/
package config
