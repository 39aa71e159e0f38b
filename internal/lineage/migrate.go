package lineage

import (
	"encoding/json"
	"fmt"
)

// storedEvent mirrors the persisted record shape. ParentID stays raw so an
// absent field can be told apart from an explicit null.
type storedEvent struct {
	ID        string          `json:"id"`
	ParentID  json.RawMessage `json:"parentId"`
	Timestamp string          `json:"timestamp"`
	Type      Type            `json:"type"`
	Content   string          `json:"content"`
	Summary   string          `json:"summary,omitempty"`
	Version   *int            `json:"version"`
}

// decodeEvents parses a persisted sequence and upgrades legacy records.
//
// Records without a version get their 1-based position. Records without a
// parentId field chain onto the record stored before them, except the first,
// which becomes a root. An explicit null parentId is left alone. The returned
// count is the number of records that needed migration.
func decodeEvents(payload []byte) ([]Event, int, error) {
	var raw []storedEvent
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, 0, fmt.Errorf("decoding event sequence: %w", err)
	}

	events := make([]Event, 0, len(raw))
	migrated := 0
	for i, r := range raw {
		e := Event{
			ID:        r.ID,
			Timestamp: r.Timestamp,
			Type:      r.Type,
			Content:   r.Content,
			Summary:   r.Summary,
		}
		touched := false

		if r.Version != nil {
			e.Version = *r.Version
		} else {
			e.Version = i + 1
			touched = true
		}

		switch {
		case len(r.ParentID) == 0:
			if i > 0 {
				e.ParentID = strPtr(raw[i-1].ID)
			}
			touched = true
		case string(r.ParentID) == "null":
			// explicit root
		default:
			var parent string
			if err := json.Unmarshal(r.ParentID, &parent); err != nil {
				return nil, 0, fmt.Errorf("decoding parentId of %s: %w", r.ID, err)
			}
			e.ParentID = &parent
		}

		if touched {
			migrated++
		}
		events = append(events, e)
	}
	return events, migrated, nil
}

func encodeEvents(events []Event) ([]byte, error) {
	if events == nil {
		events = []Event{}
	}
	payload, err := json.Marshal(events)
	if err != nil {
		return nil, fmt.Errorf("encoding event sequence: %w", err)
	}
	return payload, nil
}
