package msgpack

import "testing"

type params struct {
	Relation string   `msgpack:"relation"`
	Columns  []string `msgpack:"columns"`
	Limit    *int64   `msgpack:"limit,omitempty"`
}

func TestEncodeDecode(t *testing.T) {
	limit := int64(10)
	data, err := Encode(params{Relation: "events", Columns: []string{"a", "b"}, Limit: &limit})
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}

	var got params
	if err := Decode(data, &got); err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if got.Relation != "events" || len(got.Columns) != 2 || got.Columns[1] != "b" || *got.Limit != 10 {
		t.Errorf("decoded %+v", got)
	}
}

func TestDecodeErrors(t *testing.T) {
	var p params
	if err := Decode(nil, &p); err == nil {
		t.Error("expected error for empty data")
	}
	if err := Decode([]byte{0xc1}, &p); err == nil {
		t.Error("expected error for invalid data")
	}
}
