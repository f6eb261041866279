// SAR - Smart Adaptive Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

// Package cache provides the in-process response cache used by the status
// API.
//
// LRU is a generic least recently used cache with a TTL per entry.
// GenerateKey hashes request parameters into a fixed-width key:
//
//	c := cache.NewLRU[models.UserRecommendations](1024, time.Minute)
//	key := cache.GenerateKey("recommendations", params)
//	if v, ok := c.Get(key); ok {
//	    return v
//	}
package cache
