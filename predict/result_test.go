package predict

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/repronet/predict-gateway/errors"
)

func TestAggregateResult_JSON(t *testing.T) {
	agg := AggregateResult{
		"transformer":   {Err: NewBackendError("transformer", errors.ErrCodeBackendError, 500, stderrors.New("HTTP 500"))},
		"phonetisaurus": {Result: json.RawMessage(`{"pred":["a","b"]}`)},
	}
	data, err := json.Marshal(agg)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"phonetisaurus":{"pred":["a","b"]},"transformer":{"backend":"transformer","status":500,"code":"BACKEND_ERROR","message":"The transformer backend failed: HTTP 500","upstream_status":500}}`
	if string(data) != want {
		t.Errorf("got  %s\nwant %s", data, want)
	}

	if got := agg.Failed(); len(got) != 1 || got[0] != "transformer" {
		t.Errorf("Failed() = %v", got)
	}
	if got := agg.Backends(); got[0] != "phonetisaurus" || got[1] != "transformer" {
		t.Errorf("Backends() = %v", got)
	}
}

func TestOutcome_EmptyResultIsNull(t *testing.T) {
	data, err := json.Marshal(Outcome{})
	if err != nil || string(data) != "null" {
		t.Errorf("expected null, got %s %v", data, err)
	}
}

func TestBackendError(t *testing.T) {
	cause := stderrors.New("connection refused")
	be := NewBackendError("phonetisaurus", errors.ErrCodeBackendUnavailable, 0, cause)

	if be.Status != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", be.Status)
	}
	if !stderrors.Is(be, cause) {
		t.Error("cause should unwrap")
	}
	data, _ := json.Marshal(be)
	var m map[string]any
	_ = json.Unmarshal(data, &m)
	if _, ok := m["upstream_status"]; ok {
		t.Error("upstream_status should be omitted without an HTTP answer")
	}

	appErr := be.AppError()
	if appErr.Code != errors.ErrCodeBackendUnavailable || !appErr.Retryable {
		t.Errorf("unexpected app error %+v", appErr)
	}
}

func TestFromError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"validation", errors.Validation("beam", MsgBeam), 400, MsgBeam},
		{"undefined model", errors.UndefinedModel("bert"), 400, "undefined model"},
		{"backend", NewBackendError("transformer", errors.ErrCodeBackendTimeout, 0, stderrors.New("deadline")), 500, "The transformer backend failed: deadline"},
		{"no backends", errors.NoBackends(), 500, "no backends configured for aggregate prediction"},
		{"foreign", stderrors.New("secret detail"), 500, "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := FromError(tt.err)
			if env.Status != tt.wantStatus || env.Message != tt.wantMsg || env.Data != nil {
				t.Errorf("got %+v", env)
			}
			if env.IsSuccess() {
				t.Error("error envelope must not be success")
			}
		})
	}
}

func TestEnvelopeJSON(t *testing.T) {
	ok, _ := json.Marshal(OK(json.RawMessage(`{"pred":"x"}`)))
	if string(ok) != `{"data":{"pred":"x"},"status":200}` {
		t.Errorf("unexpected success envelope %s", ok)
	}
	fail, _ := json.Marshal(Fail(400, MsgBeam))
	if string(fail) != `{"data":null,"status":400,"message":"Beam must be an integer from 1 to 5"}` {
		t.Errorf("unexpected error envelope %s", fail)
	}
}
