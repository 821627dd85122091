package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHook struct {
	before []string
	after  []string
	errs   []error
}

func (r *recordingHook) Before(_ context.Context, stage string, _ []Message) {
	r.before = append(r.before, stage)
}

func (r *recordingHook) After(_ context.Context, stage string, _ string, err error) {
	r.after = append(r.after, stage)
	r.errs = append(r.errs, err)
}

func TestWithHookObservesCalls(t *testing.T) {
	hook := &recordingHook{}
	cli := Wrap(NewFakeClient("hello"), WithHook(hook))

	out, err := cli.Generate(WithStage(context.Background(), "gen"), []Message{{Role: RoleUser, Content: "hi"}})
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
	assert.Equal(t, []string{"gen"}, hook.before)
	assert.Equal(t, []string{"gen"}, hook.after)
	require.Len(t, hook.errs, 1)
	assert.NoError(t, hook.errs[0])
}
