// SAR - Smart Adaptive Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package source

import (
	"strings"
	"testing"

	"github.com/tomtom215/sar/internal/database"
)

var defaultCols = database.InteractionColumns{
	User:      "UserId",
	Item:      "ItemId",
	Rating:    "Rating",
	Timestamp: "Timestamp",
}

func TestReadCSV(t *testing.T) {
	input := "userid,ItemId,Rating,Timestamp\n" +
		"u1,i1,5,100\n" +
		"u1,i2,3,2024-01-01T00:00:00Z\n" +
		"u2,i1,,\n"

	got, err := ReadCSV(strings.NewReader(input), defaultCols)
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].UserID != "u1" || got[0].ItemID != "i1" || got[0].Rating != 5 || got[0].Timestamp != 100 {
		t.Errorf("row 0 = %+v", got[0])
	}
	if got[1].Timestamp != 1704067200 {
		t.Errorf("row 1 timestamp = %v, want 1704067200", got[1].Timestamp)
	}
	if got[2].Rating == got[2].Rating {
		t.Errorf("row 2 rating = %v, want NaN", got[2].Rating)
	}
	if got[2].HasTimestamp() {
		t.Errorf("row 2 HasTimestamp() = true, want false")
	}
}

func TestReadCSVOptionalColumns(t *testing.T) {
	input := "UserId,ItemId\nu1,i1\nu2,i2\n"
	cols := database.InteractionColumns{User: "UserId", Item: "ItemId"}

	got, err := ReadCSV(strings.NewReader(input), cols)
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	for i, in := range got {
		if in.Rating != 1 {
			t.Errorf("row %d rating = %v, want 1", i, in.Rating)
		}
		if in.HasTimestamp() {
			t.Errorf("row %d has timestamp, want none", i)
		}
	}
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", "missing header"},
		{"missing column", "UserId,Rating\nu1,1\n", `column "ItemId" not found`},
		{"bad rating", "UserId,ItemId,Rating,Timestamp\nu1,i1,abc,1\n", "line 2: rating"},
		{"bad timestamp", "UserId,ItemId,Rating,Timestamp\nu1,i1,1,yesterday\n", "line 2: timestamp"},
		{"short row", "UserId,ItemId,Rating,Timestamp\nu1,i1\n", "wrong number of fields"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.input), defaultCols)
			if err == nil {
				t.Fatal("ReadCSV() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("ReadCSV() error = %q, want substring %q", err, tt.want)
			}
		})
	}
}
