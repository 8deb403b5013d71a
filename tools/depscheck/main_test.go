package main

import (
	"strings"
	"testing"
)

func TestFindViolationsFlagsTransportImports(t *testing.T) {
	input := `{"ImportPath":"outbreak/server/internal/world","Imports":["math/rand","outbreak/server/logging","net/http"]}
{"ImportPath":"outbreak/server/internal/world/extra","Imports":["github.com/gorilla/websocket","outbreak/server/logging/simulation"]}`

	violations, err := findViolations(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{
		"outbreak/server/internal/world -> net/http",
		"outbreak/server/internal/world/extra -> github.com/gorilla/websocket",
	}
	if len(violations) != len(want) {
		t.Fatalf("expected %d violations, got %v", len(want), violations)
	}
	for i := range want {
		if violations[i] != want[i] {
			t.Fatalf("violation %d: expected %q, got %q", i, want[i], violations[i])
		}
	}
}

func TestIsForbiddenMatchesWholeSegments(t *testing.T) {
	if isForbidden("net/httptest") {
		t.Fatalf("expected net/httptest to be allowed")
	}
	if !isForbidden("net/http/pprof") {
		t.Fatalf("expected net/http/pprof to be forbidden")
	}
	if isForbidden("outbreak/server/logging") {
		t.Fatalf("expected the publisher package to be allowed")
	}
}
