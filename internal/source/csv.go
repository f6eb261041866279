// SAR - Smart Adaptive Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/sar/internal/database"
	"github.com/tomtom215/sar/internal/recommend"
)

// ReadCSV reads interactions from a headered CSV stream. Columns are matched
// case-insensitively by name. An empty rating column name yields rating 1,
// an empty timestamp column name yields recommend.NoTimestamp. Timestamps are
// Unix seconds or RFC 3339. Empty rating or timestamp cells read as NaN and
// NoTimestamp.
func ReadCSV(r io.Reader, cols database.InteractionColumns) ([]recommend.Interaction, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("csv: missing header")
		}
		return nil, fmt.Errorf("csv: read header: %w", err)
	}

	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[strings.ToLower(strings.TrimSpace(h))] = i
	}
	lookup := func(name string) (int, error) {
		if name == "" {
			return -1, nil
		}
		i, ok := pos[strings.ToLower(name)]
		if !ok {
			return -1, fmt.Errorf("csv: column %q not found", name)
		}
		return i, nil
	}

	userIdx, err := lookup(cols.User)
	if err != nil {
		return nil, err
	}
	itemIdx, err := lookup(cols.Item)
	if err != nil {
		return nil, err
	}
	if userIdx < 0 || itemIdx < 0 {
		return nil, errors.New("csv: user and item columns are required")
	}
	ratingIdx, err := lookup(cols.Rating)
	if err != nil {
		return nil, err
	}
	tsIdx, err := lookup(cols.Timestamp)
	if err != nil {
		return nil, err
	}

	var out []recommend.Interaction
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: %w", err)
		}

		in := recommend.Interaction{
			UserID:    rec[userIdx],
			ItemID:    rec[itemIdx],
			Rating:    1,
			Timestamp: recommend.NoTimestamp,
		}
		if ratingIdx >= 0 {
			if in.Rating, err = parseCell(rec[ratingIdx], math.NaN()); err != nil {
				return nil, fmt.Errorf("csv: line %d: rating: %w", line, err)
			}
		}
		if tsIdx >= 0 {
			if in.Timestamp, err = parseTimestamp(rec[tsIdx]); err != nil {
				return nil, fmt.Errorf("csv: line %d: timestamp: %w", line, err)
			}
		}
		out = append(out, in)
	}
	return out, nil
}

func parseCell(s string, empty float64) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return empty, nil
	}
	return strconv.ParseFloat(s, 64)
}

func parseTimestamp(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return recommend.NoTimestamp, nil
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return 0, fmt.Errorf("%q is neither Unix seconds nor RFC 3339", s)
	}
	return float64(t.UnixNano()) / 1e9, nil
}
