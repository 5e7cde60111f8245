package infra

import (
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
)

func TestExtractMarker(t *testing.T) {
	query := "--sql 8a8e0d52-7f5d-4f21-8b7d-f7d4b821eed7\nselect token from integration_tokens;"
	marker, trimmed, err := extractMarker(query)
	if err != nil {
		t.Fatalf("extractMarker: %v", err)
	}
	if marker != "8a8e0d52-7f5d-4f21-8b7d-f7d4b821eed7" {
		t.Fatalf("marker = %q", marker)
	}
	if strings.Contains(trimmed, "--sql") {
		t.Fatalf("marker not stripped from query: %q", trimmed)
	}
}

func TestExtractMarkerRejectsUnmarkedQueries(t *testing.T) {
	for _, query := range []string{
		"select 1;",
		"--sql not-a-uuid\nselect 1;",
		"",
	} {
		if _, _, err := extractMarker(query); err == nil {
			t.Fatalf("extractMarker(%q) accepted unmarked query", query)
		}
	}
}

func TestIsNoRows(t *testing.T) {
	if !IsNoRows(pgx.ErrNoRows) {
		t.Fatal("pgx.ErrNoRows not recognized")
	}
	if IsNoRows(nil) {
		t.Fatal("nil reported as no-rows")
	}
}
