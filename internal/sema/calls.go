package sema

import (
	"fmt"
	"strings"

	"aster/internal/capability"
	"aster/internal/coreir"
	"aster/internal/diag"
	"aster/internal/effects"
	"aster/internal/pii"
	"aster/internal/source"
	"aster/internal/symbols"
	"aster/internal/types"
)

// builtinPrefix maps the namespace of an untagged external call to what it
// is assumed to do.
type builtinPrefix struct {
	prefix string
	effect effects.Effect
	cap    capability.Capability
}

var builtinPrefixes = []builtinPrefix{
	{"Http.", effects.Io, capability.Http},
	{"Db.", effects.Io, capability.Sql},
	{"Sql.", effects.Io, capability.Sql},
	{"Time.", effects.Io, capability.Time},
	{"Files.", effects.Io, capability.Files},
	{"Secrets.", effects.Io, capability.Secrets},
	{"AI.", effects.Io, capability.AiModel},
	{"Cpu.", effects.Cpu, capability.Cpu},
	{"Console.", effects.Io, capability.Invalid},
	{"Log.", effects.Io, capability.Invalid},
}

// capabilityEffect is the effect implied by using c: Cpu for Cpu, Io for
// every other capability.
func capabilityEffect(c capability.Capability) effects.Effect {
	switch {
	case !c.Valid():
		return effects.Pure
	case c == capability.Cpu:
		return effects.Cpu
	}
	return effects.Io
}

func lookupPrefix(target string) (builtinPrefix, bool) {
	for _, p := range builtinPrefixes {
		if strings.HasPrefix(target, p.prefix) {
			return p, true
		}
	}
	return builtinPrefix{}, false
}

var declassifiers = map[string]struct{}{
	"Pii.declassify": {},
	"Pii.redact":     {},
	"redact":         {},
	"declassify":     {},
}

// IsDeclassifier reports whether a call to target strips PII taint.
func IsDeclassifier(target string) bool {
	_, ok := declassifiers[target]
	return ok
}

// callSite is what one call contributes once its target is known.
type callSite struct {
	target string
	span   source.Span
	effect effects.Effect
	cap    capability.Capability
	args   *pii.Meta
}

func (c *checker) checkCall(fc *fnContext, e *coreir.CallExpr) value {
	if IsDeclassifier(e.Target) {
		return c.checkDeclassify(fc, e)
	}
	if !strings.Contains(e.Target, ".") {
		if sym, ok := fc.lookup(e.Target); ok {
			switch {
			case sym.Kind == symbols.SymbolFunction && sym.Signature != nil:
				return c.callFunction(fc, e, sym.Signature)
			case c.types.IsUnknown(sym.Type):
				return c.callExternal(fc, e)
			}
			if info, isFn := c.types.FnInfo(c.types.Unwrap(sym.Type)); isFn {
				return c.callValue(fc, e, info)
			}
			args := c.checkArgs(fc, e.Args)
			c.errorf(diag.SemaNotCallable, e.Pos(), "%q is a %s and cannot be called", e.Target, c.symbolLabel(sym)).
				WithData("name", e.Target).
				Emit()
			return value{typ: c.unknown(), pii: pii.MergeAll(argMetas(args)...)}
		}
		if !e.HasEffect && !e.Capability.Valid() {
			c.checkArgs(fc, e.Args)
			c.reportUndefined(e.Target, e.Pos())
			return value{typ: c.unknown()}
		}
	}
	return c.callExternal(fc, e)
}

func (c *checker) checkArgs(fc *fnContext, args []coreir.Expr) []value {
	out := make([]value, len(args))
	for i, a := range args {
		out[i] = c.checkExpr(fc, a)
	}
	return out
}

func argMetas(args []value) []*pii.Meta {
	metas := make([]*pii.Meta, len(args))
	for i, a := range args {
		metas[i] = a.pii
	}
	return metas
}

// checkParams reports arity and per-argument compatibility against params.
func (c *checker) checkParams(e *coreir.CallExpr, params []types.TypeID, args []value) {
	if len(params) != len(args) {
		c.errorf(diag.SemaArityMismatch, e.Pos(), "%q expects %d %s, got %d",
			e.Target, len(params), plural(len(params), "argument", "arguments"), len(args)).
			WithData("expected", len(params)).
			WithData("actual", len(args)).
			Emit()
	}
	for i, arg := range args {
		if i >= len(params) {
			break
		}
		if !c.types.Compatible(params[i], arg.typ) {
			c.errorf(diag.SemaTypeMismatch, spanOf(e.Args[i], e.Pos()), "argument %d of %q expects %s, got %s",
				i+1, e.Target, c.typeLabel(params[i]), c.typeLabel(arg.typ)).
				WithData("expected", c.typeLabel(params[i])).
				WithData("actual", c.typeLabel(arg.typ)).
				Emit()
		}
	}
}

func (c *checker) callFunction(fc *fnContext, e *coreir.CallExpr, sig *symbols.FunctionSignature) value {
	args := c.checkArgs(fc, e.Args)
	c.checkParams(e, sig.ParamTypes(), args)
	site := callSite{
		target: e.Target,
		span:   e.Pos(),
		effect: sig.Effect,
		args:   pii.MergeAll(argMetas(args)...),
	}
	c.applyCall(fc, site)
	return value{typ: sig.Result, pii: pii.Merge(site.args, c.types.PiiMeta(sig.Result))}
}

// callValue calls a function-typed binding. Its effect is only known from
// the call's own tags; a capability tag alone implies the effect of that
// capability.
func (c *checker) callValue(fc *fnContext, e *coreir.CallExpr, info *types.FnInfo) value {
	args := c.checkArgs(fc, e.Args)
	c.checkParams(e, info.Params, args)
	site := callSite{
		target: e.Target,
		span:   e.Pos(),
		cap:    e.Capability,
		args:   pii.MergeAll(argMetas(args)...),
	}
	site.effect = capabilityEffect(e.Capability)
	if e.HasEffect {
		site.effect = e.Effect
	}
	c.applyCall(fc, site)
	return value{typ: info.Result, pii: pii.Merge(site.args, c.types.PiiMeta(info.Result))}
}

// callExternal handles calls leaving the module. Each explicit tag wins on
// its own; a missing tag is filled from the prefix registry, and a missing
// effect next to a known capability comes from that capability.
func (c *checker) callExternal(fc *fnContext, e *coreir.CallExpr) value {
	args := c.checkArgs(fc, e.Args)
	site := callSite{
		target: e.Target,
		span:   e.Pos(),
		args:   pii.MergeAll(argMetas(args)...),
	}
	p, known := lookupPrefix(e.Target)
	switch {
	case e.Capability.Valid():
		site.cap = e.Capability
	case known:
		site.cap = p.cap
	}
	switch {
	case e.HasEffect:
		site.effect = e.Effect
	case e.Capability.Valid():
		site.effect = effects.Join(capabilityEffect(site.cap), p.effect)
	case known:
		site.effect = p.effect
	}
	c.applyCall(fc, site)
	return value{typ: c.unknown(), pii: site.args}
}

// applyCall folds the effect of a call and runs the capability and leak
// checks for it.
func (c *checker) applyCall(fc *fnContext, site callSite) {
	fc.raise(site.effect, site.span, fmt.Sprintf("call to %q", site.target))
	if site.cap.Valid() {
		fc.usedCaps |= capability.NewSet(site.cap)
		c.checkCapability(fc, site)
	}
	if site.effect.IsSink() && site.args.Level().AtLeast(c.opts.threshold()) {
		c.errorf(diag.PiiLeak, site.span, "%s data (%s) flows into %q, which performs %s",
			site.args.Level(), strings.Join(site.args.CategoryList(), ", "), site.target, site.effect).
			WithHelp("wrap the value with Pii.redact or Pii.declassify before it leaves the function").
			WithData("level", site.args.Level().String()).
			WithData("categories", site.args.CategoryList()).
			WithData("sink", site.target).
			Emit()
	}
}

func (c *checker) checkCapability(fc *fnContext, site callSite) {
	m := c.opts.Manifest
	if !m.IsAllowed(site.cap) {
		var help string
		switch {
		case m == nil:
			help = "no capability manifest is loaded, so every capability is denied"
		case m.Denied().Has(site.cap):
			help = fmt.Sprintf("%s is listed under deny in %s", site.cap, manifestName(m))
		default:
			help = fmt.Sprintf("add %s to the allow list in %s", site.cap, manifestName(m))
		}
		c.errorf(diag.CapDenied, site.span, "capability %s required by %q is not allowed", site.cap, site.target).
			WithHelp(help).
			WithData("capability", site.cap.String()).
			WithData("target", site.target).
			Emit()
	}
	if fc.sig.CapsDeclared && !fc.sig.Caps.Has(site.cap) {
		c.errorf(diag.CapUndeclared, site.span, "function %q uses capability %s but declares only [%s]",
			fc.name, site.cap, strings.Join(fc.sig.Caps.Labels(), ", ")).
			WithHelp(fmt.Sprintf("add %s to the capabilities of %q", site.cap, fc.name)).
			WithData("capability", site.cap.String()).
			WithData("function", fc.name).
			Emit()
	}
}

func manifestName(m *capability.Manifest) string {
	if src := m.Source(); src != "" {
		return src
	}
	return "the manifest"
}

// checkDeclassify checks the arguments of a declassifier call. The result
// carries no taint.
func (c *checker) checkDeclassify(fc *fnContext, e *coreir.CallExpr) value {
	args := c.checkArgs(fc, e.Args)
	meta := pii.MergeAll(argMetas(args)...)
	typ := c.unknown()
	if len(args) > 0 {
		typ = c.types.Unwrap(args[0].typ)
	}
	if c.opts.AuditDeclassify && meta.Level() != pii.LevelNone {
		diag.ReportInfo(pendingReporter{c}, diag.PiiDeclassified, e.Pos(),
			fmt.Sprintf("%s data (%s) declassified by %q in %q", meta.Level(),
				strings.Join(meta.CategoryList(), ", "), e.Target, fc.name)).
			WithData("level", meta.Level().String()).
			WithData("categories", meta.CategoryList()).
			WithData("function", fc.name).
			Emit()
	}
	return value{typ: typ}
}
