package database

import (
	"fmt"

	"github.com/google/uuid"
)

// UUIDStrings formats ids for use with pq.Array against UUID[] columns.
func UUIDStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

// ParseUUIDs parses a scanned UUID[] column. The result is never nil.
func ParseUUIDs(values []string) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, 0, len(values))
	for _, v := range values {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, fmt.Errorf("parse uuid array element %q: %w", v, err)
		}
		out = append(out, id)
	}
	return out, nil
}
