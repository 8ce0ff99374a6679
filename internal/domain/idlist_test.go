package domain

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestIDList_UnmarshalJSON_SingleNumber(t *testing.T) {
	var l IDList
	if err := json.Unmarshal([]byte(`7`), &l); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !reflect.DeepEqual(l, IDList{7}) {
		t.Fatalf("got %v, want [7]", l)
	}
}

func TestIDList_UnmarshalJSON_Array(t *testing.T) {
	var l IDList
	if err := json.Unmarshal([]byte(`[3, 1, 2]`), &l); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !reflect.DeepEqual(l, IDList{3, 1, 2}) {
		t.Fatalf("got %v, want [3 1 2]", l)
	}
}

func TestIDList_UnmarshalJSON_ArrayDedupesKeepingOrder(t *testing.T) {
	var l IDList
	if err := json.Unmarshal([]byte(`[9, 7, 9, 7, 5]`), &l); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !reflect.DeepEqual(l, IDList{9, 7, 5}) {
		t.Fatalf("got %v, want [9 7 5]", l)
	}
}

func TestIDList_UnmarshalJSON_Null(t *testing.T) {
	l := IDList{1, 2}
	if err := json.Unmarshal([]byte(`null`), &l); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if l != nil {
		t.Fatalf("got %v, want nil", l)
	}
}

func TestIDList_UnmarshalJSON_NullInsideStruct(t *testing.T) {
	var req struct {
		FirstContactIDs IDList `json:"first_contact_ids"`
	}
	if err := json.Unmarshal([]byte(`{"first_contact_ids": null}`), &req); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(req.FirstContactIDs) != 0 {
		t.Fatalf("got %v, want empty list", req.FirstContactIDs)
	}
}

func TestIDList_UnmarshalJSON_EmptyArray(t *testing.T) {
	var l IDList
	if err := json.Unmarshal([]byte(`[]`), &l); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(l) != 0 {
		t.Fatalf("got %v, want empty", l)
	}
}

func TestIDList_UnmarshalJSON_Invalid(t *testing.T) {
	for _, raw := range []string{`"seven"`, `{"id":1}`, `[1, "two"]`, `-3`} {
		var l IDList
		if err := json.Unmarshal([]byte(raw), &l); err == nil {
			t.Fatalf("expected error for %s", raw)
		}
	}
}

func TestIDList_InsideStruct(t *testing.T) {
	var req struct {
		FirstContactIDs IDList `json:"first_contact_ids"`
	}
	if err := json.Unmarshal([]byte(`{"first_contact_ids": 4}`), &req); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !reflect.DeepEqual(req.FirstContactIDs, IDList{4}) {
		t.Fatalf("got %v, want [4]", req.FirstContactIDs)
	}
}
