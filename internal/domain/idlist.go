package domain

import (
	"encoding/json"
	"fmt"
)

// IDList is an ordered, de-duplicated list of numeric ids that accepts either
// a single number or an array of numbers on the wire. Older clients of the
// routing admin surface send `"first_contact_ids": 7`, newer ones send
// `[7, 9]`; both normalize to the list form at the JSON boundary so internal
// logic only ever sees a slice.
type IDList []uint

// UnmarshalJSON accepts a number, an array of numbers, or null. The scalar
// probe decodes through a pointer: unmarshalling null into a plain uint is a
// no-op that reports success, which would turn null into [0] instead of an
// empty list.
func (l *IDList) UnmarshalJSON(data []byte) error {
	var single *uint
	if err := json.Unmarshal(data, &single); err == nil {
		if single == nil {
			*l = nil
			return nil
		}
		*l = IDList{*single}
		return nil
	}

	var many []uint
	if err := json.Unmarshal(data, &many); err == nil {
		*l = dedupe(many)
		return nil
	}

	return fmt.Errorf("id list: expected number or array of numbers, got %s", string(data))
}

// dedupe drops repeated ids, keeping first occurrence order.
func dedupe(in []uint) IDList {
	out := make(IDList, 0, len(in))
	seen := make(map[uint]struct{}, len(in))
	for _, id := range in {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
