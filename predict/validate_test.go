package predict

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"testing"

	"github.com/repronet/predict-gateway/errors"
)

func messageOf(t *testing.T, err error) string {
	t.Helper()
	if err == nil {
		t.Fatal("expected validation error")
	}
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.Code != errors.ErrCodeInvalidInput || appErr.HTTPStatus != 400 {
		t.Fatalf("expected INVALID_INPUT 400, got %v", err)
	}
	return appErr.Message
}

func query(kv ...string) url.Values {
	q := url.Values{}
	for i := 0; i+1 < len(kv); i += 2 {
		q.Add(kv[i], kv[i+1])
	}
	return q
}

func TestValidateSingle_Valid(t *testing.T) {
	tests := []struct {
		model string
		want  string
	}{
		{"phonetisaurus", ModelPhonetisaurus},
		{"phs", ModelPhonetisaurus},
		{"transformer", ModelTransformer},
		{"trf", ModelTransformer},
		{"all", ModelAll},
	}
	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			req, err := ValidateSingle(query("input", "shalom", "language", "heb", "model", tt.model, "beam", "3"))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if req.Model != tt.want || req.Beam != 3 || req.Input != "shalom" || req.Language != "heb" {
				t.Errorf("unexpected request %+v", req)
			}
			if req.Mode() != ModeSingle || req.Size() != 1 {
				t.Errorf("expected single mode, got %s", req.Mode())
			}
		})
	}
}

func TestValidateSingle_FirstFailingRule(t *testing.T) {
	long := strings.Repeat("a", 37)
	tests := []struct {
		name  string
		query url.Values
		want  string
	}{
		{"everything missing", query(), MsgInput},
		{"input too long", query("input", long, "language", "heb", "model", "all", "beam", "3"), MsgInput},
		{"input repeated", query("input", "a", "input", "b", "language", "heb", "model", "all", "beam", "3"), MsgInput},
		{"bad input hides bad beam", query("input", "", "language", "heb", "model", "all", "beam", "9"), MsgInput},
		{"language unsupported", query("input", "a", "language", "eng", "model", "all", "beam", "3"), MsgLanguage},
		{"language length", query("input", "a", "language", "hebr", "model", "all", "beam", "3"), MsgLanguage},
		{"language before beam", query("input", "a", "language", "xx", "model", "all", "beam", "0"), MsgLanguage},
		{"model unknown", query("input", "a", "language", "heb", "model", "bert", "beam", "3"), MsgModel},
		{"model case", query("input", "a", "language", "heb", "model", "ALL", "beam", "3"), MsgModel},
		{"beam zero", query("input", "a", "language", "heb", "model", "all", "beam", "0"), MsgBeam},
		{"beam six", query("input", "a", "language", "heb", "model", "all", "beam", "6"), MsgBeam},
		{"beam fraction", query("input", "a", "language", "heb", "model", "all", "beam", "2.5"), MsgBeam},
		{"beam word", query("input", "a", "language", "heb", "model", "all", "beam", "three"), MsgBeam},
		{"beam missing", query("input", "a", "language", "heb", "model", "all"), MsgBeam},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateSingle(tt.query)
			if got := messageOf(t, err); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateSingle_InputLengthCountsCharacters(t *testing.T) {
	// 36 Hebrew letters are 72 bytes.
	input := strings.Repeat("ש", MaxInputLength)
	if _, err := ValidateSingle(query("input", input, "language", "heb", "model", "phs", "beam", "1")); err != nil {
		t.Errorf("36 characters should pass, got %v", err)
	}
}

func batchJSON(n int) []byte {
	var b strings.Builder
	b.WriteString(`{"language":"heb","model":"all","beam":2,"batch":[`)
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, `{"idx":%d,"src":"s"}`, i)
	}
	b.WriteString(`]}`)
	return []byte(b.String())
}

func TestValidateBatch_Valid(t *testing.T) {
	body := []byte(`{"language":"rus","model":"trf","beam":"4","batch":[{"idx":"a","src":"privet","extra":true},{"other":1}]}`)
	req, err := ValidateBatch(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Mode() != ModeBatch || req.Size() != 2 {
		t.Errorf("expected batch of 2, got %s %d", req.Mode(), req.Size())
	}
	if req.Model != ModelTransformer || req.Beam != 4 || req.Language != "rus" {
		t.Errorf("unexpected request %+v", req)
	}
	if string(req.Batch[0]) != `{"idx":"a","src":"privet","extra":true}` {
		t.Errorf("batch items must be kept byte-for-byte, got %s", req.Batch[0])
	}
}

func TestValidateBatch_SizeLimits(t *testing.T) {
	req, err := ValidateBatch(batchJSON(MaxBatchSize))
	if err != nil {
		t.Fatalf("100000 items should pass, got %v", err)
	}
	if len(req.Batch) != MaxBatchSize {
		t.Errorf("expected %d items, got %d", MaxBatchSize, len(req.Batch))
	}

	_, err = ValidateBatch(batchJSON(MaxBatchSize + 1))
	if got := messageOf(t, err); got != MsgBatch {
		t.Errorf("got %q, want batch message", got)
	}
}

func TestValidateBatch_FirstFailingRule(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"not json", `nope`, MsgLanguage},
		{"empty object", `{}`, MsgLanguage},
		{"language number", `{"language":123,"model":"all","beam":1,"batch":[{"idx":0,"src":"a"}]}`, MsgLanguage},
		{"language before batch", `{"language":"xyz","model":"all","beam":1}`, MsgLanguage},
		{"model missing", `{"language":"heb","beam":1,"batch":[{"idx":0,"src":"a"}]}`, MsgModel},
		{"beam out of range", `{"language":"heb","model":"all","beam":9,"batch":[{"idx":0,"src":"a"}]}`, MsgBeam},
		{"beam fraction", `{"language":"heb","model":"all","beam":1.5,"batch":[{"idx":0,"src":"a"}]}`, MsgBeam},
		{"beam bool", `{"language":"heb","model":"all","beam":true,"batch":[{"idx":0,"src":"a"}]}`, MsgBeam},
		{"batch missing", `{"language":"heb","model":"all","beam":1}`, MsgBatch},
		{"batch empty", `{"language":"heb","model":"all","beam":1,"batch":[]}`, MsgBatch},
		{"batch object", `{"language":"heb","model":"all","beam":1,"batch":{"idx":0,"src":"a"}}`, MsgBatch},
		{"batch null", `{"language":"heb","model":"all","beam":1,"batch":null}`, MsgBatch},
		{"first item no src", `{"language":"heb","model":"all","beam":1,"batch":[{"idx":0}]}`, MsgBatch},
		{"first item not object", `{"language":"heb","model":"all","beam":1,"batch":["a"]}`, MsgBatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateBatch([]byte(tt.body))
			if got := messageOf(t, err); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateBatch_IntegralNumberBeam(t *testing.T) {
	req, err := ValidateBatch([]byte(`{"language":"jpn","model":"phs","beam":5.0,"batch":[{"idx":0,"src":"a"}]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Beam != 5 {
		t.Errorf("expected beam 5, got %d", req.Beam)
	}
}

func TestBatchPayloadEncode(t *testing.T) {
	p := BatchPayload{
		Batch: []BatchItem{
			json.RawMessage(`{"idx": 1, "src": "a<b"}`),
			json.RawMessage(`{"idx":2,"src":"x"}`),
		},
		Language: "kor",
		Beam:     2,
	}
	want := `{"batch":[{"idx": 1, "src": "a<b"},{"idx":2,"src":"x"}],"language":"kor","beam":2}`
	if got := string(p.Encode()); got != want {
		t.Errorf("Encode()\n got %s\nwant %s", got, want)
	}
	if !json.Valid(p.Encode()) {
		t.Error("encoded payload must be valid JSON")
	}
}

func TestCanonicalModel(t *testing.T) {
	if m, ok := CanonicalModel("phs"); !ok || m != ModelPhonetisaurus {
		t.Errorf("phs should resolve to phonetisaurus, got %q", m)
	}
	if _, ok := CanonicalModel("bert"); ok {
		t.Error("unknown model should not resolve")
	}
}
