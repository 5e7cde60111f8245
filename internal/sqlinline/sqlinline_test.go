package sqlinline

import (
	"regexp"
	"strings"
	"testing"
)

var markerPattern = regexp.MustCompile(`^--sql [0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

func TestQueriesCarryAuditMarkers(t *testing.T) {
	queries := map[string]string{
		"QSelectIntegrationToken": QSelectIntegrationToken,
		"QUpsertIntegrationToken": QUpsertIntegrationToken,
		"QInsertDispatch":         QInsertDispatch,
		"QRecentDispatches":       QRecentDispatches,
	}
	seen := map[string]string{}
	for name, query := range queries {
		lines := strings.Split(strings.TrimSpace(query), "\n")
		if !markerPattern.MatchString(strings.TrimSpace(lines[0])) {
			t.Fatalf("%s is missing its --sql <uuid> marker", name)
		}
		marker := strings.TrimSpace(lines[0])
		if prev, dup := seen[marker]; dup {
			t.Fatalf("%s and %s share marker %s", name, prev, marker)
		}
		seen[marker] = name
	}
}
