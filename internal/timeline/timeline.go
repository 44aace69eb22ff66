// Package timeline turns a store's audit log into a deterministic rendering
// model. The server orders entries by ascending timestamp and guarantees
// nothing about the inner shape of an entry's details, so normalization is a
// fallible projection with a mandatory plain-text fallback.
package timeline

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/systmms/storectl/internal/api"
)

// DetailKind tags the normalized form of an entry's details payload.
type DetailKind int

const (
	// DetailEmpty means the entry carried no details at all.
	DetailEmpty DetailKind = iota
	// DetailStructured means the details decoded as a JSON object or array
	// and are re-rendered as an indented block.
	DetailStructured
	// DetailText means the details did not decode; the raw string is
	// rendered verbatim. This is a primary path, not an error path.
	DetailText
)

// Detail is the tagged variant for an entry's normalized details.
type Detail struct {
	Kind DetailKind
	// Block holds the indented JSON for DetailStructured.
	Block string
	// Text holds the verbatim string for DetailText.
	Text string
}

// Node is one visual timeline entry.
type Node struct {
	Event     string
	Timestamp time.Time
	// Failed marks per-event failures by the "Failed" substring contract.
	// It is independent of the store's own top-level status.
	Failed bool
	Detail Detail
}

// failedMarker is the substring contract for per-event failure
// classification.
const failedMarker = "Failed"

// NormalizeDetail projects an opaque details payload into its tagged
// variant. The decode attempt never propagates a failure: undecodable input
// is the DetailText case by definition.
func NormalizeDetail(details *string) Detail {
	if details == nil || *details == "" {
		return Detail{Kind: DetailEmpty}
	}

	var decoded interface{}
	if err := json.Unmarshal([]byte(*details), &decoded); err == nil {
		switch decoded.(type) {
		case map[string]interface{}, []interface{}:
			// Re-indent so heterogeneous payloads render uniformly.
			block, err := json.MarshalIndent(decoded, "", "  ")
			if err == nil {
				return Detail{Kind: DetailStructured, Block: string(block)}
			}
		}
		// Scalar JSON ("5", "true", quoted strings) reads better as prose.
	}

	return Detail{Kind: DetailText, Text: *details}
}

// Build converts audit entries into timeline nodes, preserving server order.
func Build(entries []api.AuditLogEntry) []Node {
	nodes := make([]Node, 0, len(entries))
	for _, entry := range entries {
		nodes = append(nodes, Node{
			Event:     entry.Event,
			Timestamp: entry.Timestamp,
			Failed:    strings.Contains(entry.Event, failedMarker),
			Detail:    NormalizeDetail(entry.Details),
		})
	}
	return nodes
}
