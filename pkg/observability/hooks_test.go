package observability

import (
	"context"
	"testing"
	"time"
)

type recordingPipelineHooks struct {
	buildStarts  int
	buildDone    int
	layoutStarts int
	layoutDone   int
}

func (h *recordingPipelineHooks) OnBuildStart(context.Context, int) { h.buildStarts++ }
func (h *recordingPipelineHooks) OnBuildComplete(context.Context, int, time.Duration, error) {
	h.buildDone++
}
func (h *recordingPipelineHooks) OnLayoutStart(context.Context, string, int) { h.layoutStarts++ }
func (h *recordingPipelineHooks) OnLayoutComplete(context.Context, string, time.Duration, error) {
	h.layoutDone++
}

type recordingCacheHooks struct {
	hits, misses, sets int
}

func (h *recordingCacheHooks) OnCacheHit(context.Context, string)      { h.hits++ }
func (h *recordingCacheHooks) OnCacheMiss(context.Context, string)     { h.misses++ }
func (h *recordingCacheHooks) OnCacheSet(context.Context, string, int) { h.sets++ }

func TestDefaultHooksAreNoop(t *testing.T) {
	Reset()

	// Must not panic.
	ctx := context.Background()
	Pipeline().OnBuildStart(ctx, 3)
	Pipeline().OnBuildComplete(ctx, 10, time.Second, nil)
	Pipeline().OnLayoutStart(ctx, "grid", 10)
	Pipeline().OnLayoutComplete(ctx, "grid", time.Second, nil)
	Cache().OnCacheHit(ctx, "graph")
	Request().OnRequest(ctx, "POST", "/api/v1/builds")
}

func TestSetAndResetHooks(t *testing.T) {
	defer Reset()

	ph := &recordingPipelineHooks{}
	ch := &recordingCacheHooks{}
	SetPipelineHooks(ph)
	SetCacheHooks(ch)

	ctx := context.Background()
	Pipeline().OnBuildStart(ctx, 1)
	Pipeline().OnBuildComplete(ctx, 5, time.Millisecond, nil)
	Pipeline().OnLayoutStart(ctx, "grid", 5)
	Pipeline().OnLayoutComplete(ctx, "grid", time.Millisecond, nil)
	Cache().OnCacheMiss(ctx, "layout")
	Cache().OnCacheSet(ctx, "layout", 128)

	if ph.buildStarts != 1 || ph.buildDone != 1 || ph.layoutStarts != 1 || ph.layoutDone != 1 {
		t.Errorf("pipeline hook counts = %+v", ph)
	}
	if ch.misses != 1 || ch.sets != 1 || ch.hits != 0 {
		t.Errorf("cache hook counts = %+v", ch)
	}

	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset did not restore noop pipeline hooks")
	}
}

func TestSetNilHooksKeepsCurrent(t *testing.T) {
	defer Reset()

	ph := &recordingPipelineHooks{}
	SetPipelineHooks(ph)
	SetPipelineHooks(nil)

	Pipeline().OnBuildStart(context.Background(), 1)
	if ph.buildStarts != 1 {
		t.Error("nil registration replaced the active hooks")
	}
}
