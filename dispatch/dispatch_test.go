package dispatch

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/repronet/predict-gateway/errors"
	"github.com/repronet/predict-gateway/logger"
	"github.com/repronet/predict-gateway/predict"
)

type fakeBackend struct {
	name   string
	delay  time.Duration
	result string
	err    error
	panic  bool

	mu    sync.Mutex
	calls []predict.Request
}

func (f *fakeBackend) Name() string { return f.name }

func (f *fakeBackend) Predict(ctx context.Context, req *predict.Request) (predict.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, *req)
	f.mu.Unlock()
	if f.panic {
		panic("backend exploded")
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return predict.Result(f.result), nil
}

func (f *fakeBackend) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newDispatcher(backends ...*fakeBackend) *Dispatcher {
	ps := make([]Predictor, len(backends))
	for i, b := range backends {
		ps[i] = b
	}
	return New(ps, WithLogger(logger.NewNop()), WithServiceName("predict-gateway"))
}

func single(model string) *predict.Request {
	return &predict.Request{Input: "tokyo", Language: "jpn", Model: model, Beam: 1}
}

func encode(t *testing.T, env predict.Envelope) string {
	t.Helper()
	b, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}

func TestDispatch_NamedModels(t *testing.T) {
	phs := &fakeBackend{name: predict.ModelPhonetisaurus, result: `{"from":"phs"}`}
	trf := &fakeBackend{name: predict.ModelTransformer, result: `{"from":"trf"}`}
	d := newDispatcher(phs, trf)

	tests := []struct {
		model string
		want  string
	}{
		{predict.ModelPhonetisaurus, `{"data":{"from":"phs"},"status":200}`},
		{predict.AliasPhonetisaurus, `{"data":{"from":"phs"},"status":200}`},
		{predict.ModelTransformer, `{"data":{"from":"trf"},"status":200}`},
		{predict.AliasTransformer, `{"data":{"from":"trf"},"status":200}`},
	}
	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			if got := encode(t, d.Dispatch(context.Background(), single(tt.model))); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}

	if phs.callCount() != 2 || trf.callCount() != 2 {
		t.Errorf("expected 2 calls each, got phs=%d trf=%d", phs.callCount(), trf.callCount())
	}
	for _, c := range phs.calls {
		if c.Model != predict.ModelPhonetisaurus {
			t.Errorf("backend should see the canonical model, got %q", c.Model)
		}
	}
}

func TestDispatch_UndefinedModel(t *testing.T) {
	phs := &fakeBackend{name: predict.ModelPhonetisaurus}
	d := newDispatcher(phs)

	for _, model := range []string{"bert", predict.ModelTransformer} {
		env := d.Dispatch(context.Background(), single(model))
		if env.Status != http.StatusBadRequest || env.Message != "undefined model" || env.Data != nil {
			t.Errorf("%s: unexpected envelope %+v", model, env)
		}
	}
	if phs.callCount() != 0 {
		t.Error("no backend should be called")
	}
}

func TestDispatch_SingleBackendFailure(t *testing.T) {
	be := predict.NewBackendError(predict.ModelTransformer, errors.ErrCodeBackendError, 502, stderrors.New("HTTP 502"))
	d := newDispatcher(&fakeBackend{name: predict.ModelTransformer, err: be})

	env := d.Dispatch(context.Background(), single(predict.ModelTransformer))
	if env.Status != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", env.Status)
	}
	if env.Message != be.Message || env.Data != nil {
		t.Errorf("unexpected envelope %+v", env)
	}
}

func TestDispatch_ForeignErrorBecomesBackendError(t *testing.T) {
	d := newDispatcher(&fakeBackend{name: predict.ModelPhonetisaurus, err: stderrors.New("boom")})
	env := d.Dispatch(context.Background(), single(predict.ModelPhonetisaurus))
	if env.Status != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", env.Status)
	}
	if env.Message != "The phonetisaurus backend failed: boom" {
		t.Errorf("unexpected message %q", env.Message)
	}
}

func TestDispatch_AllLatencyIsMaxNotSum(t *testing.T) {
	phs := &fakeBackend{name: predict.ModelPhonetisaurus, delay: 100 * time.Millisecond, result: `"a"`}
	trf := &fakeBackend{name: predict.ModelTransformer, delay: 300 * time.Millisecond, result: `"b"`}
	d := newDispatcher(phs, trf)

	start := time.Now()
	env := d.Dispatch(context.Background(), single(predict.ModelAll))
	elapsed := time.Since(start)

	if env.Status != http.StatusOK {
		t.Fatalf("expected 200, got %+v", env)
	}
	if elapsed < 300*time.Millisecond || elapsed >= 400*time.Millisecond {
		t.Errorf("expected about 300ms, took %v", elapsed)
	}
	if got := encode(t, env); got != `{"data":{"phonetisaurus":"a","transformer":"b"},"status":200}` {
		t.Errorf("unexpected envelope %s", got)
	}
}

func TestDispatch_AllPartialFailure(t *testing.T) {
	phs := &fakeBackend{name: predict.ModelPhonetisaurus, result: `{"pred":"x"}`}
	trf := &fakeBackend{
		name: predict.ModelTransformer,
		err:  predict.NewBackendError(predict.ModelTransformer, errors.ErrCodeBackendError, 500, stderrors.New("HTTP 500")),
	}
	d := newDispatcher(phs, trf)

	env := d.Dispatch(context.Background(), single(predict.ModelAll))
	if env.Status != http.StatusOK {
		t.Fatalf("partial failure must still be 200, got %d", env.Status)
	}
	agg, ok := env.Data.(predict.AggregateResult)
	if !ok {
		t.Fatalf("expected AggregateResult, got %T", env.Data)
	}
	if !agg[predict.ModelPhonetisaurus].OK() || string(agg[predict.ModelPhonetisaurus].Result) != `{"pred":"x"}` {
		t.Errorf("success key lost: %+v", agg[predict.ModelPhonetisaurus])
	}
	marker := agg[predict.ModelTransformer].Err
	if marker == nil || marker.Status != http.StatusInternalServerError || marker.Backend != predict.ModelTransformer {
		t.Errorf("expected error marker under transformer, got %+v", marker)
	}
}

func TestDispatch_AllBothFail(t *testing.T) {
	d := newDispatcher(
		&fakeBackend{name: predict.ModelPhonetisaurus, err: stderrors.New("down")},
		&fakeBackend{name: predict.ModelTransformer, panic: true},
	)
	env := d.Dispatch(context.Background(), single(predict.ModelAll))
	if env.Status != http.StatusOK {
		t.Fatalf("expected 200, got %d", env.Status)
	}
	agg := env.Data.(predict.AggregateResult)
	if failed := agg.Failed(); len(failed) != 2 {
		t.Errorf("expected both failed, got %v", failed)
	}
}

func TestDispatch_AllNoBackends(t *testing.T) {
	d := newDispatcher()
	env := d.Dispatch(context.Background(), single(predict.ModelAll))
	if env.Status != http.StatusInternalServerError || env.Message == "" || env.Data != nil {
		t.Errorf("unexpected envelope %+v", env)
	}
}

func TestDispatch_AllBatchForwardsOnePerBackend(t *testing.T) {
	phs := &fakeBackend{name: predict.ModelPhonetisaurus, result: `[]`}
	trf := &fakeBackend{name: predict.ModelTransformer, result: `[]`}
	d := newDispatcher(phs, trf)

	batch := make([]predict.BatchItem, predict.MaxBatchSize)
	for i := range batch {
		batch[i] = json.RawMessage(`{"idx":0,"src":"a"}`)
	}
	req := &predict.Request{Batch: batch, Language: "kor", Model: predict.ModelAll, Beam: 5}
	if env := d.Dispatch(context.Background(), req); env.Status != http.StatusOK {
		t.Fatalf("expected 200, got %+v", env)
	}
	for _, b := range []*fakeBackend{phs, trf} {
		if b.callCount() != 1 || len(b.calls[0].Batch) != predict.MaxBatchSize {
			t.Errorf("%s: expected one call carrying the whole batch", b.name)
		}
	}
}

func TestDispatch_IdenticalRequestsAreIndependent(t *testing.T) {
	phs := &fakeBackend{name: predict.ModelPhonetisaurus, result: `1`}
	trf := &fakeBackend{name: predict.ModelTransformer, result: `2`}
	d := newDispatcher(phs, trf)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.Dispatch(context.Background(), single(predict.ModelAll))
		}()
	}
	wg.Wait()
	if phs.callCount() != 2 || trf.callCount() != 2 {
		t.Errorf("expected two call sets, got phs=%d trf=%d", phs.callCount(), trf.callCount())
	}
}

func TestAggregator_CancelledContext(t *testing.T) {
	phs := &fakeBackend{name: predict.ModelPhonetisaurus, delay: time.Second}
	trf := &fakeBackend{name: predict.ModelTransformer, result: `"ok"`}
	a := NewAggregator([]Predictor{phs, trf}, logger.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	res, err := a.All(ctx, single(predict.ModelAll))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o := res[predict.ModelPhonetisaurus]; o.OK() || o.Err.Code != errors.ErrCodeBackendTimeout {
		t.Errorf("expected timeout marker, got %+v", o)
	}
	if !res[predict.ModelTransformer].OK() {
		t.Error("fast backend should still succeed")
	}
	if got := a.Backends(); len(got) != 2 || got[0] != predict.ModelPhonetisaurus {
		t.Errorf("unexpected backend order %v", got)
	}
}

func TestStatusOf(t *testing.T) {
	if StatusOf(predict.Envelope{}) != http.StatusInternalServerError {
		t.Error("zero status should map to 500")
	}
	if StatusOf(predict.OK(nil)) != http.StatusOK {
		t.Error("expected 200")
	}
}
