package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]Level{"off": LevelOff, "PHASE": LevelPhase, "detail": LevelDetail, " debug ": LevelDebug} {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestLevelFiltersScopes(t *testing.T) {
	if !LevelPhase.ShouldEmit(ScopeDriver) || LevelPhase.ShouldEmit(ScopeModule) {
		t.Fatalf("phase must only pass driver scope")
	}
	if !LevelDetail.ShouldEmit(ScopeDecl) || LevelDetail.ShouldEmit(ScopeNode) {
		t.Fatalf("detail must pass up to decl scope")
	}
	if LevelOff.ShouldEmit(ScopeDriver) {
		t.Fatalf("off must pass nothing")
	}
}

func TestStreamNDJSONSpan(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDebug, FormatNDJSON)
	ctx := WithTracer(context.Background(), tr)

	outer, ctx := Start(ctx, ScopeDriver, "check")
	inner, _ := Start(ctx, ScopeModule, "module:orders")
	inner.WithExtra("diagnostics", "3").End("")
	outer.End("done")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 events, got %d:\n%s", len(lines), buf.String())
	}
	var evs []jsonEvent
	for _, l := range lines {
		var ev jsonEvent
		if err := json.Unmarshal([]byte(l), &ev); err != nil {
			t.Fatalf("bad line %q: %v", l, err)
		}
		evs = append(evs, ev)
	}
	if evs[0].Kind != "begin" || evs[3].Kind != "end" || evs[3].Detail != "done" {
		t.Fatalf("unexpected outer events: %+v %+v", evs[0], evs[3])
	}
	if evs[1].ParentID != evs[0].SpanID {
		t.Fatalf("inner span parent = %d, want %d", evs[1].ParentID, evs[0].SpanID)
	}
	if evs[2].Extra["diagnostics"] != "3" {
		t.Fatalf("extra not propagated: %+v", evs[2])
	}
	for i, ev := range evs {
		if ev.Seq != uint64(i+1) {
			t.Fatalf("event %d seq = %d", i, ev.Seq)
		}
	}
}

func TestStreamRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelPhase, FormatText)
	Begin(tr, ScopeDecl, "fn:send", 0).End("")
	if buf.Len() != 0 {
		t.Fatalf("decl span leaked at phase level: %q", buf.String())
	}
	Begin(tr, ScopeDriver, "load", 0).End("")
	if !strings.Contains(buf.String(), "→ load") || !strings.Contains(buf.String(), "← load") {
		t.Fatalf("unexpected text output %q", buf.String())
	}
}

func TestNopSpanIsInert(t *testing.T) {
	s, ctx := Start(context.Background(), ScopeDriver, "x")
	if s.ID() != 0 || CurrentSpan(ctx) != 0 {
		t.Fatalf("nop span must have no id")
	}
	if d := s.WithExtra("k", "v").End(""); d != 0 {
		t.Fatalf("nop span duration = %v", d)
	}
}

func TestZapTracer(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	tr := NewZapTracer(zap.New(core), LevelDetail)
	ctx := WithTracer(context.Background(), tr)

	s, ctx := Start(ctx, ScopeModule, "module:m")
	Point(ctx, ScopeDecl, "fn:f", "registered")
	Point(ctx, ScopeNode, "stmt", "filtered out")
	s.WithExtra("errors", "1").End("")

	entries := logs.All()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	end := entries[2]
	if end.Level != zapcore.InfoLevel || end.Message != "module:m" || end.LoggerName != "trace" {
		t.Fatalf("unexpected end entry %+v", end.Entry)
	}
	fields := end.ContextMap()
	if fields["kind"] != "end" || fields["errors"] != "1" {
		t.Fatalf("unexpected fields %v", fields)
	}
	if entries[1].ContextMap()["parent_id"] != s.ID() {
		t.Fatalf("point not parented to module span: %v", entries[1].ContextMap())
	}
}

func TestMultiTracerFansOut(t *testing.T) {
	var a, b bytes.Buffer
	m := NewMultiTracer(NewStreamTracer(&a, LevelPhase, FormatText), Nop, NewStreamTracer(&b, LevelDebug, FormatNDJSON))
	if m.Level() != LevelDebug {
		t.Fatalf("multi level = %v", m.Level())
	}
	Begin(m, ScopeNode, "stmt", 0).End("")
	if a.Len() != 0 || b.Len() == 0 {
		t.Fatalf("children must filter independently: a=%q b=%q", a.String(), b.String())
	}
	if err := m.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestNewPicksFormat(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil || tr.Enabled() {
		t.Fatalf("off must yield a disabled tracer")
	}
	var buf bytes.Buffer
	tr, err = New(Config{Level: LevelPhase, Format: FormatZap, Output: &buf})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, ok := tr.(*ZapTracer); !ok {
		t.Fatalf("expected zap tracer, got %T", tr)
	}
	Begin(tr, ScopeDriver, "load", 0).End("")
	if !strings.Contains(buf.String(), `"msg":"load"`) {
		t.Fatalf("zap json output missing message: %q", buf.String())
	}
}
