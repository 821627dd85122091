package llm

import (
	"context"
	"sync"
)

// FakeCall records one Generate invocation for assertions.
type FakeCall struct {
	Stage    string
	Model    string
	Messages []Message
}

// FakeClient returns scripted responses for offline and deterministic tests.
// Responses are consumed in order; when the script runs out the fallback
// response is returned. Stages can be forced to fail to exercise error paths.
type FakeClient struct {
	mu        sync.Mutex
	script    []string
	fallback  string
	stageErrs map[string]error
	calls     []FakeCall
}

func NewFakeClient(script ...string) *FakeClient {
	return &FakeClient{
		script:    script,
		fallback:  "{}",
		stageErrs: map[string]error{},
	}
}

// Fallback sets the response used once the script is exhausted.
func (f *FakeClient) Fallback(text string) *FakeClient {
	f.mu.Lock()
	f.fallback = text
	f.mu.Unlock()
	return f
}

// FailStage makes every call tagged with the given stage return err.
func (f *FakeClient) FailStage(stage string, err error) *FakeClient {
	f.mu.Lock()
	f.stageErrs[stage] = err
	f.mu.Unlock()
	return f
}

// Calls returns a copy of the recorded invocations.
func (f *FakeClient) Calls() []FakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]FakeCall(nil), f.calls...)
}

// CallCount returns how many calls were tagged with stage; an empty stage
// counts everything.
func (f *FakeClient) CallCount(stage string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if stage == "" {
		return len(f.calls)
	}
	n := 0
	for _, c := range f.calls {
		if c.Stage == stage {
			n++
		}
	}
	return n
}

func (f *FakeClient) Name() string                { return "FakeLLM" }
func (f *FakeClient) Close() error                { return nil }
func (f *FakeClient) CountTokens(text string) int { return CountTokens(text) }

func (f *FakeClient) Generate(ctx context.Context, messages []Message) (string, error) {
	stage := StageFrom(ctx)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, FakeCall{
		Stage:    stage,
		Model:    ModelFrom(ctx),
		Messages: append([]Message(nil), messages...),
	})
	if err := f.stageErrs[stage]; err != nil {
		return "", err
	}
	if len(f.script) > 0 {
		out := f.script[0]
		f.script = f.script[1:]
		return out, nil
	}
	return f.fallback, nil
}
