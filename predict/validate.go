package predict

import (
	"bytes"
	"encoding/json"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/repronet/predict-gateway/validation"
)

// Messages reported for each field, whichever of its rules failed. They
// repeat the msg tags below.
const (
	MsgInput    = "Input must be a string less than 37 characters"
	MsgLanguage = "Language must be a string. The list of supported languages = [ara,chi,heb,jpn,kor,rus]"
	MsgModel    = "Model must be a string. The list of models = [phonetisaurus,phs,transformer,trf,all]"
	MsgBeam     = "Beam must be an integer from 1 to 5"
	MsgBatch    = "Batch must be an array with 1 to 100000 elements. Each element must have 'idx' and 'src' fields."
)

var intPattern = regexp.MustCompile(`^[-+]?(0|[1-9][0-9]*)$`)

func init() {
	validation.MustRegisterAlias("language", "len=3,oneof="+strings.Join(SupportedLanguages, " "))
	validation.MustRegisterAlias("model", "oneof="+strings.Join(Models, " "))
	validation.MustRegisterRule("beam", func(fl validator.FieldLevel) bool {
		_, ok := parseBeam(fl.Field().String())
		return ok
	})
	validation.MustRegisterRule("batchshape", func(fl validator.FieldLevel) bool {
		items, ok := fl.Field().Interface().([]json.RawMessage)
		return ok && len(items) > 0 && hasItemShape(items[0])
	})
}

// Field order is rule order.
type singleQuery struct {
	Input    string `json:"input" validate:"required,min=1,max=36" msg:"Input must be a string less than 37 characters"`
	Language string `json:"language" validate:"required,language" msg:"Language must be a string. The list of supported languages = [ara,chi,heb,jpn,kor,rus]"`
	Model    string `json:"model" validate:"required,model" msg:"Model must be a string. The list of models = [phonetisaurus,phs,transformer,trf,all]"`
	Beam     string `json:"beam" validate:"required,beam" msg:"Beam must be an integer from 1 to 5"`
}

type batchBody struct {
	Language string            `json:"language" validate:"required,language" msg:"Language must be a string. The list of supported languages = [ara,chi,heb,jpn,kor,rus]"`
	Model    string            `json:"model" validate:"required,model" msg:"Model must be a string. The list of models = [phonetisaurus,phs,transformer,trf,all]"`
	Beam     string            `json:"beam" validate:"required,beam" msg:"Beam must be an integer from 1 to 5"`
	Batch    []json.RawMessage `json:"batch" validate:"required,min=1,max=100000,batchshape" msg:"Batch must be an array with 1 to 100000 elements. Each element must have 'idx' and 'src' fields."`
}

// ValidateSingle validates GET query parameters. A key given more than
// once is treated as not a string and fails its rule.
func ValidateSingle(query url.Values) (*Request, error) {
	q := singleQuery{
		Input:    single(query, "input"),
		Language: single(query, "language"),
		Model:    single(query, "model"),
		Beam:     single(query, "beam"),
	}
	if err := validation.Validate(q); err != nil {
		return nil, err
	}
	beam, _ := parseBeam(q.Beam)
	model, _ := CanonicalModel(q.Model)
	return &Request{Input: q.Input, Language: q.Language, Model: model, Beam: beam}, nil
}

// ValidateBatch validates a POST body. Values of the wrong JSON type fail
// their field's rule; beam may be a JSON integer or a decimal string.
func ValidateBatch(body []byte) (*Request, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		fields = nil
	}
	b := batchBody{
		Language: jsonString(fields["language"]),
		Model:    jsonString(fields["model"]),
		Beam:     jsonInteger(fields["beam"]),
		Batch:    jsonArray(fields["batch"]),
	}
	if err := validation.Validate(b); err != nil {
		return nil, err
	}
	beam, _ := parseBeam(b.Beam)
	model, _ := CanonicalModel(b.Model)
	return &Request{Batch: b.Batch, Language: b.Language, Model: model, Beam: beam}, nil
}

func single(query url.Values, key string) string {
	if vals := query[key]; len(vals) == 1 {
		return vals[0]
	}
	return ""
}

func jsonString(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

// jsonInteger accepts a JSON string as-is and an integral JSON number in
// its decimal form, so 3 and 3.0 both become "3".
func jsonInteger(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	if raw[0] == '"' {
		return jsonString(raw)
	}
	var n json.Number
	if json.Unmarshal(raw, &n) != nil {
		return ""
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return ""
	}
	return strconv.FormatInt(int64(f), 10)
}

func jsonArray(raw json.RawMessage) []json.RawMessage {
	var items []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil {
		return nil
	}
	return items
}

func hasItemShape(item json.RawMessage) bool {
	var obj map[string]json.RawMessage
	if json.Unmarshal(item, &obj) != nil || obj == nil {
		return false
	}
	_, hasIdx := obj["idx"]
	_, hasSrc := obj["src"]
	return hasIdx && hasSrc
}

func parseBeam(s string) (int, bool) {
	if !intPattern.MatchString(s) {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < MinBeam || n > MaxBeam {
		return 0, false
	}
	return n, true
}
