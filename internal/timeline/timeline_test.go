package timeline_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/systmms/storectl/internal/api"
	"github.com/systmms/storectl/internal/timeline"
)

func strPtr(s string) *string { return &s }

func TestNormalizeDetail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		details  *string
		wantKind timeline.DetailKind
		wantText string
	}{
		{
			name:     "nil_is_empty",
			details:  nil,
			wantKind: timeline.DetailEmpty,
		},
		{
			name:     "empty_string_is_empty",
			details:  strPtr(""),
			wantKind: timeline.DetailEmpty,
		},
		{
			name:     "json_object_is_structured",
			details:  strPtr(`{"exitCode":1}`),
			wantKind: timeline.DetailStructured,
		},
		{
			name:     "json_array_is_structured",
			details:  strPtr(`[1,2,3]`),
			wantKind: timeline.DetailStructured,
		},
		{
			name:     "plain_prose_falls_back_to_text",
			details:  strPtr("waiting for ingress to settle"),
			wantKind: timeline.DetailText,
			wantText: "waiting for ingress to settle",
		},
		{
			name:     "truncated_json_falls_back_to_text",
			details:  strPtr(`{"exitCode":`),
			wantKind: timeline.DetailText,
			wantText: `{"exitCode":`,
		},
		{
			name:     "scalar_json_stays_text",
			details:  strPtr(`42`),
			wantKind: timeline.DetailText,
			wantText: "42",
		},
		{
			name:     "invalid_utf8_ish_garbage_never_panics",
			details:  strPtr("\x00\xff{]"),
			wantKind: timeline.DetailText,
			wantText: "\x00\xff{]",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			detail := timeline.NormalizeDetail(tt.details)
			assert.Equal(t, tt.wantKind, detail.Kind)
			if tt.wantKind == timeline.DetailText {
				assert.Equal(t, tt.wantText, detail.Text, "undecodable details must render verbatim")
			}
		})
	}
}

func TestNormalizeDetailReindentsStructured(t *testing.T) {
	t.Parallel()

	detail := timeline.NormalizeDetail(strPtr(`{"exitCode":1}`))
	require.Equal(t, timeline.DetailStructured, detail.Kind)
	assert.Equal(t, "{\n  \"exitCode\": 1\n}", detail.Block)
}

func TestBuildPreservesServerOrder(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	entries := []api.AuditLogEntry{
		{Event: "Queued", Timestamp: base},
		{Event: "Provisioning Started", Timestamp: base.Add(10 * time.Second)},
		{Event: "Helm Deploy Failed", Details: strPtr(`{"exitCode":1}`), Timestamp: base.Add(time.Minute)},
	}

	nodes := timeline.Build(entries)
	require.Len(t, nodes, 3)
	assert.Equal(t, "Queued", nodes[0].Event)
	assert.Equal(t, "Provisioning Started", nodes[1].Event)
	assert.Equal(t, "Helm Deploy Failed", nodes[2].Event)
}

func TestFailureClassificationIsPerEvent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		event string
		want  bool
	}{
		{"Helm Deploy Failed", true},
		{"Failed to resolve DNS", true},
		{"Queued", false},
		{"Provisioning Complete", false},
		// Lowercase does not match the substring contract
		{"deploy failed", false},
		// Failure of a sub-step marks the event even on a READY store
		{"Certificate Issuance Failed", true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.event, func(t *testing.T) {
			t.Parallel()

			nodes := timeline.Build([]api.AuditLogEntry{{Event: tt.event, Timestamp: time.Now()}})
			require.Len(t, nodes, 1)
			assert.Equal(t, tt.want, nodes[0].Failed)
		})
	}
}

func TestBuildFailedEntryWithStructuredDetails(t *testing.T) {
	t.Parallel()

	nodes := timeline.Build([]api.AuditLogEntry{{
		Event:     "Helm Deploy Failed",
		Details:   strPtr(`{"exitCode":1}`),
		Timestamp: time.Date(2026, 3, 1, 10, 1, 0, 0, time.UTC),
	}})

	require.Len(t, nodes, 1)
	assert.True(t, nodes[0].Failed)
	assert.Equal(t, timeline.DetailStructured, nodes[0].Detail.Kind)
	assert.Contains(t, nodes[0].Detail.Block, `"exitCode": 1`)
}

func TestBuildEntryWithoutDetails(t *testing.T) {
	t.Parallel()

	nodes := timeline.Build([]api.AuditLogEntry{{
		Event:     "Queued",
		Timestamp: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}})

	require.Len(t, nodes, 1)
	assert.False(t, nodes[0].Failed)
	assert.Equal(t, timeline.DetailEmpty, nodes[0].Detail.Kind)
}
