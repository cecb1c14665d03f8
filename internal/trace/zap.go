package trace

import (
	"io"
	"slices"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapTracer forwards events to a zap logger. Span ends are logged at info,
// everything else at debug.
type ZapTracer struct {
	logger *zap.Logger
	level  Level
	closer io.Closer
}

// NewZapTracer wraps an existing logger.
func NewZapTracer(logger *zap.Logger, level Level) *ZapTracer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapTracer{logger: logger.Named("trace"), level: level}
}

// NewZapWriterTracer builds a JSON zap logger on w.
func NewZapWriterTracer(w io.Writer, level Level) *ZapTracer {
	enc := zap.NewProductionEncoderConfig()
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(enc), zapcore.AddSync(w), zapcore.DebugLevel)
	t := NewZapTracer(zap.New(core), level)
	if c, ok := w.(io.Closer); ok && !isStdStream(w) {
		t.closer = c
	}
	return t
}

func (t *ZapTracer) Emit(ev *Event) {
	if ev == nil || !t.level.ShouldEmit(ev.Scope) {
		return
	}
	fields := make([]zap.Field, 0, 6+len(ev.Extra))
	fields = append(fields,
		zap.String("kind", ev.Kind.String()),
		zap.String("scope", ev.Scope.String()),
	)
	if ev.SpanID != 0 {
		fields = append(fields, zap.Uint64("span_id", ev.SpanID))
	}
	if ev.ParentID != 0 {
		fields = append(fields, zap.Uint64("parent_id", ev.ParentID))
	}
	if ev.Detail != "" {
		fields = append(fields, zap.String("detail", ev.Detail))
	}
	if ev.Kind == KindSpanEnd {
		fields = append(fields, zap.Duration("elapsed", ev.Elapsed))
	}
	keys := make([]string, 0, len(ev.Extra))
	for k := range ev.Extra {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fields = append(fields, zap.String(k, ev.Extra[k]))
	}

	if ev.Kind == KindSpanEnd {
		t.logger.Info(ev.Name, fields...)
		return
	}
	t.logger.Debug(ev.Name, fields...)
}

// Flush syncs the logger. Sync on a terminal or pipe fails with EINVAL on
// some platforms, so errors from the standard streams are ignored.
func (t *ZapTracer) Flush() error {
	if err := t.logger.Sync(); err != nil && !isSyncUnsupported(err) {
		return err
	}
	return nil
}

func (t *ZapTracer) Close() error {
	if err := t.Flush(); err != nil {
		return err
	}
	if t.closer != nil {
		return t.closer.Close()
	}
	return nil
}

func (t *ZapTracer) Level() Level  { return t.level }
func (t *ZapTracer) Enabled() bool { return t.level > LevelOff }
