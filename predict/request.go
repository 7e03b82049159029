package predict

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Mode tells single-input and batch requests apart.
type Mode int

const (
	ModeSingle Mode = iota
	ModeBatch
)

func (m Mode) String() string {
	if m == ModeBatch {
		return "batch"
	}
	return "single"
}

// Canonical model names and their shorthand aliases.
const (
	ModelPhonetisaurus = "phonetisaurus"
	ModelTransformer   = "transformer"
	ModelAll           = "all"

	AliasPhonetisaurus = "phs"
	AliasTransformer   = "trf"
)

// Request limits.
const (
	MaxInputLength = 36
	MaxBatchSize   = 100000
	MinBeam        = 1
	MaxBeam        = 5
)

// SupportedLanguages are the 3-letter codes the backends serve.
var SupportedLanguages = []string{"ara", "chi", "heb", "jpn", "kor", "rus"}

// Models lists every accepted model value, aliases included, in the order
// the validation message shows them.
var Models = []string{ModelPhonetisaurus, AliasPhonetisaurus, ModelTransformer, AliasTransformer, ModelAll}

var modelAliases = map[string]string{
	ModelPhonetisaurus: ModelPhonetisaurus,
	AliasPhonetisaurus: ModelPhonetisaurus,
	ModelTransformer:   ModelTransformer,
	AliasTransformer:   ModelTransformer,
	ModelAll:           ModelAll,
}

// CanonicalModel resolves an alias to its canonical model name.
func CanonicalModel(model string) (string, bool) {
	m, ok := modelAliases[model]
	return m, ok
}

// BatchItem is one batch element exactly as the client sent it. Items are
// forwarded byte-for-byte and never rewritten.
type BatchItem = json.RawMessage

// Request is a validated prediction request. Exactly one of Input and Batch
// is populated; Language and Beam apply to every batch item.
type Request struct {
	Input    string
	Batch    []BatchItem
	Language string
	// Model is canonical after validation.
	Model string
	Beam  int
}

// Mode reports whether the request carries a batch.
func (r *Request) Mode() Mode {
	if r.Batch != nil {
		return ModeBatch
	}
	return ModeSingle
}

// Size is the number of sources in the request.
func (r *Request) Size() int {
	if r.Mode() == ModeBatch {
		return len(r.Batch)
	}
	return 1
}

// BatchPayload is the body sent to backends in batch mode.
type BatchPayload struct {
	Batch    []BatchItem `json:"batch"`
	Language string      `json:"language"`
	Beam     int         `json:"beam"`
}

// Encode writes the payload with every batch item copied verbatim.
// json.Marshal would compact and re-escape the items.
func (p BatchPayload) Encode() []byte {
	var buf bytes.Buffer
	buf.WriteString(`{"batch":[`)
	for i, item := range p.Batch {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(item)
	}
	lang, _ := json.Marshal(p.Language)
	buf.WriteString(`],"language":`)
	buf.Write(lang)
	buf.WriteString(`,"beam":`)
	buf.WriteString(strconv.Itoa(p.Beam))
	buf.WriteByte('}')
	return buf.Bytes()
}
