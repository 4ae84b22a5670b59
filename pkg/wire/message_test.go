package wire

import (
	"testing"
)

func TestRequestValidate(t *testing.T) {
	req := &Request{Method: "resources/list-views"}
	if err := req.Validate(); err != nil {
		t.Errorf("valid request rejected: %v", err)
	}

	req = &Request{}
	if err := req.Validate(); err == nil {
		t.Error("expected error for request without method")
	}
}

func TestResponseHelpers(t *testing.T) {
	ok := Ok()
	if ok["result"] != "ok" {
		t.Errorf("Ok() = %v", ok)
	}
	if IsError(ok) {
		t.Error("Ok() should not be an error")
	}

	withInfo := OkWith(Object{"id": 1})
	if withInfo["result"] != "ok" {
		t.Errorf("OkWith missing result: %v", withInfo)
	}
	if withInfo["info"] == nil {
		t.Errorf("OkWith missing info: %v", withInfo)
	}

	// Explicit null payload for "nothing focused".
	withNil := OkWith(nil)
	if _, present := withNil["info"]; !present {
		t.Error("OkWith(nil) must carry an explicit info key")
	}

	errResp := Error("not-found", "no view with id 7")
	if !IsError(errResp) {
		t.Error("Error() should be an error")
	}
	if errResp["kind"] != "not-found" {
		t.Errorf("kind = %v", errResp["kind"])
	}
}

func TestPeekKind(t *testing.T) {
	tests := []struct {
		name string
		obj  Object
		want Kind
	}{
		{"event envelope", Object{"event": "view-mapped", "view": nil}, KindEvent},
		{"ok response", Ok(), KindResponse},
		{"error response", Error("validation", "boom"), KindResponse},
		{"raw projection", Object{"id": 1, "name": "DP-1"}, KindResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PeekKind(tt.obj); got != tt.want {
				t.Errorf("PeekKind = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRequestRoundTrip(t *testing.T) {
	data, err := EncodeRequest(&Request{
		Method: "resources/view-info",
		Data:   Object{"id": float64(7)},
	})
	if err != nil {
		t.Fatalf("EncodeRequest failed: %v", err)
	}

	req, err := DecodeRequest(data)
	if err != nil {
		t.Fatalf("DecodeRequest failed: %v", err)
	}
	if req.Method != "resources/view-info" {
		t.Errorf("method = %q", req.Method)
	}
	if req.Data["id"] != float64(7) {
		t.Errorf("data id = %v", req.Data["id"])
	}
}

func TestDecodeRequestRejectsMissingMethod(t *testing.T) {
	if _, err := DecodeRequest([]byte(`{"data": {}}`)); err == nil {
		t.Error("expected error for request without method")
	}
	if _, err := DecodeRequest([]byte(`not json`)); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestClone(t *testing.T) {
	orig := Object{"event": "view-mapped", "view": Object{"id": float64(1)}}
	copied, err := Clone(orig)
	if err != nil {
		t.Fatalf("Clone failed: %v", err)
	}
	copied["event"] = "changed"
	if orig["event"] != "view-mapped" {
		t.Error("Clone must not share state with the original")
	}
	if !Equal(orig["view"], copied["view"]) {
		t.Error("cloned nested object differs")
	}
}
