// SAR - Smart Adaptive Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

// Package testinfra provides container helpers for integration tests.
//
// Everything here is built only with the integration tag:
//
//	go test -tags integration ./...
//
// # Redis Container
//
// RedisContainer starts a throwaway Redis for the Redis sink:
//
//	func TestRedisSink(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    ctx := context.Background()
//	    redis, err := testinfra.NewRedisContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer testinfra.CleanupContainer(t, ctx, redis.Container)
//
//	    sink, err := inject.NewRedisSink(ctx, config.RedisConfig{Addr: redis.Addr})
//	    // ...
//	}
//
// # CI Considerations
//
// These tests require Docker and network access. Tests are skipped
// gracefully if Docker is unavailable. The first run downloads the image.
package testinfra
