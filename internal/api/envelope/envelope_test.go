package envelope

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"
)

func TestSuccess_DefaultMessageAndFiltering(t *testing.T) {
	resp, err := Success([]byte(`{"name":"ana","password":"x"}`), "", 1234*time.Microsecond)
	if err != nil {
		t.Fatalf("Success returned error: %v", err)
	}

	if !resp.Success {
		t.Fatalf("expected success=true")
	}
	if resp.Message != DefaultSuccessMessage {
		t.Fatalf("unexpected message: %q", resp.Message)
	}
	if resp.ExecutionTime != "1.23ms" {
		t.Fatalf("unexpected execution_time: %q", resp.ExecutionTime)
	}
	if string(resp.Data) != `{"name":"ana"}` {
		t.Fatalf("unexpected data: %s", resp.Data)
	}
	if len(resp.Errors) != 0 {
		t.Fatalf("expected empty errors, got %v", resp.Errors)
	}
}

func TestSuccess_NilDataIsNull(t *testing.T) {
	resp, err := Success(nil, "done", 0)
	if err != nil {
		t.Fatalf("Success returned error: %v", err)
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	if !bytes.Contains(raw, []byte(`"data":null`)) {
		t.Fatalf("expected data=null, got %s", raw)
	}
}

func TestFailure_DataAlwaysNull(t *testing.T) {
	resp := Failure("", nil, 0)

	if resp.Success {
		t.Fatalf("expected success=false")
	}
	if resp.Message != GenericErrorMessage {
		t.Fatalf("unexpected message: %q", resp.Message)
	}
	if string(resp.Data) != "null" {
		t.Fatalf("expected data=null, got %s", resp.Data)
	}

	raw, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	if !bytes.Contains(raw, []byte(`"errors":[]`)) {
		t.Fatalf("expected errors=[], got %s", raw)
	}
}

func TestNormalizeBody_WrapsPlainPayload(t *testing.T) {
	out, err := NormalizeBody([]byte(`{"balance":10,"secret":"k"}`), 200, 0)
	if err != nil {
		t.Fatalf("NormalizeBody returned error: %v", err)
	}

	var resp Response
	if err := json.Unmarshal(out, &resp); err != nil {
		t.Fatalf("unmarshal normalized body: %v", err)
	}
	if !resp.Success {
		t.Fatalf("expected success=true")
	}
	if string(resp.Data) != `{"balance":10}` {
		t.Fatalf("unexpected data: %s", resp.Data)
	}
}

func TestNormalizeBody_Idempotent(t *testing.T) {
	once, err := NormalizeBody([]byte(`{"balance":10}`), 200, 0)
	if err != nil {
		t.Fatalf("first normalization: %v", err)
	}
	twice, err := NormalizeBody(once, 200, 0)
	if err != nil {
		t.Fatalf("second normalization: %v", err)
	}
	if !bytes.Equal(once, twice) {
		t.Fatalf("second pass changed the envelope\n once: %s\ntwice: %s", once, twice)
	}
}

func TestNormalizeBody_ErrorStatusTakesFailureShape(t *testing.T) {
	out, err := NormalizeBody([]byte(`{"message":"athlete not found","errors":["id unknown"]}`), 404, 0)
	if err != nil {
		t.Fatalf("NormalizeBody returned error: %v", err)
	}

	var resp Response
	if err := json.Unmarshal(out, &resp); err != nil {
		t.Fatalf("unmarshal normalized body: %v", err)
	}
	if resp.Success {
		t.Fatalf("expected success=false")
	}
	if resp.Message != "athlete not found" {
		t.Fatalf("unexpected message: %q", resp.Message)
	}
	if string(resp.Data) != "null" {
		t.Fatalf("expected data=null, got %s", resp.Data)
	}
	if len(resp.Errors) != 1 || resp.Errors[0] != "id unknown" {
		t.Fatalf("unexpected errors: %v", resp.Errors)
	}
}

func TestNormalizeBody_NonJSONPassesThrough(t *testing.T) {
	raw := []byte("<html>not json</html>")
	out, err := NormalizeBody(raw, 200, 0)
	if err != nil {
		t.Fatalf("NormalizeBody returned error: %v", err)
	}
	if !bytes.Equal(out, raw) {
		t.Fatalf("non-JSON body rewritten: %s", out)
	}
}

func TestIsNormalized(t *testing.T) {
	resp := Failure("nope", nil, 0)
	raw, _ := json.Marshal(resp)
	if !IsNormalized(raw) {
		t.Fatalf("expected envelope to be recognised")
	}
	if IsNormalized([]byte(`{"success":"yes"}`)) {
		t.Fatalf("non-bool success recognised as envelope")
	}
	if IsNormalized([]byte(`{"data":1}`)) {
		t.Fatalf("plain payload recognised as envelope")
	}
	// All five fields are part of the contract; a body missing data must be
	// normalized, not passed through.
	if IsNormalized([]byte(`{"success":true,"message":"ok","execution_time":"1.00ms","errors":[]}`)) {
		t.Fatalf("envelope without data recognised as normalized")
	}
}
