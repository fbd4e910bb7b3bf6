package instr

import (
	"fmt"

	"github.com/quenio/agerun/pkg/data"
	"github.com/quenio/agerun/pkg/eventlog"
	"github.com/quenio/agerun/pkg/frame"
	"github.com/quenio/agerun/pkg/lang/expr"
	"github.com/quenio/agerun/pkg/metrics"
)

// Runtime is the set of system-level effects an instruction can cause.
// Evaluator depends on this interface rather than on pkg/agent,
// pkg/method, or pkg/system directly, so the language front-end never
// imports the runtime layer that embeds it — see "Global mutable
// state" in section 9: the dependency is a parameter, not an import.
type Runtime interface {
	// Send enqueues payload (taking ownership) to targetID: an agent
	// if positive, a delegate if negative. senderID identifies the
	// agent currently evaluating (0 for the host/system itself) and is
	// threaded through to delegates that need it, e.g. the log
	// delegate's anti-spoofing check. It reports whether the message
	// was actually enqueued; id 0 and unregistered targets both report
	// false, and in both cases payload is destroyed.
	Send(senderID, targetID int64, payload data.Value) bool

	// Compile registers or replaces method (name, version), parsed
	// from instructionsText, returning false on a parse failure.
	Compile(name, version, instructionsText string) bool

	// Spawn creates a new agent running (methodName, version) with a
	// shallow copy of context as its initial memory-adjacent context,
	// returning its new positive id, or 0 on failure (unknown method).
	Spawn(methodName, version string, context *data.MapValue) int64

	// DestroyAgent tears down the agent with id, returning false if no
	// such agent is registered.
	DestroyAgent(id int64) bool

	// DestroyMethod unregisters (name, version), returning false if
	// unknown or if a live agent still references it.
	DestroyMethod(name, version string) bool
}

// Evaluator walks one InstructionAST against a Frame, per the shared
// contract of section 4.4: evaluate(evaluator, frame, instr_ast) -> bool.
type Evaluator struct {
	runtime Runtime
	log     *eventlog.Log
	metrics *metrics.Metrics
	sender  int64
}

// NewEvaluator builds an Evaluator backed by runtime for side effects
// and log for parse/eval diagnostics. m may be nil, matching
// pkg/metrics.Metrics's own nil-is-a-no-op convention.
func NewEvaluator(runtime Runtime, log *eventlog.Log, m *metrics.Metrics) *Evaluator {
	return &Evaluator{runtime: runtime, log: log, metrics: m}
}

// fail logs msg under kind, increments the per-kind evaluator failure
// counter, and always returns false — the shared tail of every
// instruction-evaluation error path (section 7's EvalTypeError/
// PathError conditions, section 11's per-kind evaluator failure metric).
func (e *Evaluator) fail(kind, msg string) bool {
	e.log.Error(msg)
	e.metrics.RecordEvaluatorFailure(kind)
	return false
}

// SetSender records which agent id is about to have its method
// evaluated, so a `send` instruction can report its origin. Called by
// the agent/system layer before each ProcessOne; 0 means "the system
// itself" (no agent currently evaluating).
func (e *Evaluator) SetSender(id int64) {
	e.sender = id
}

// Evaluate applies node's effect to f, returning false on any
// EvalTypeError/PathError condition (section 7); the caller (the
// agent's message-processing loop) always advances regardless of the
// return value — errors are local, never fatal to the scheduler.
func (e *Evaluator) Evaluate(node AST, f *frame.Frame) bool {
	switch n := node.(type) {
	case Assignment:
		return e.evalAssignment(n, f)
	case FunctionCall:
		return e.evalFunctionCall(n, f)
	default:
		return e.fail("unknown", "evaluator: unknown instruction AST node")
	}
}

func (e *Evaluator) evalAssignment(n Assignment, f *frame.Frame) bool {
	raw, err := expr.Eval(n.Expr, f)
	if err != nil {
		return e.fail("assignment", fmt.Sprintf("assignment: %s", err))
	}
	owned := e.claimIndependent(raw)
	if owned == nil {
		return e.fail("assignment", "assignment: right-hand side is not copyable")
	}
	return e.storeAt("assignment", f, n.TargetPath, owned)
}

func (e *Evaluator) evalFunctionCall(n FunctionCall, f *frame.Frame) bool {
	switch n.Kind {
	case Send:
		return e.evalSend(n, f)
	case If:
		return e.evalIf(n, f)
	case Parse:
		return e.evalParse(n, f)
	case Build:
		return e.evalBuild(n, f)
	case Compile:
		return e.evalCompile(n, f)
	case Spawn:
		return e.evalSpawn(n, f)
	case Destroy:
		return e.evalDestroy(n, f)
	default:
		return e.fail("unknown", fmt.Sprintf("evaluator: unknown function kind %q", n.Kind))
	}
}

func (e *Evaluator) evalSend(n FunctionCall, f *frame.Frame) bool {
	targetVal, err := expr.Eval(n.Args[0], f)
	if err != nil {
		return e.fail("send", fmt.Sprintf("send: %s", err))
	}
	if targetVal == nil || targetVal.Type() != data.Integer {
		return e.fail("send", "send: first argument must be an integer id")
	}
	targetID := data.GetInteger(targetVal)

	payloadRaw, err := expr.Eval(n.Args[1], f)
	if err != nil {
		return e.fail("send", fmt.Sprintf("send: %s", err))
	}
	payload := e.claimIndependent(payloadRaw)
	if payload == nil {
		return e.fail("send", "send: payload is not copyable")
	}

	enqueued := e.runtime.Send(e.sender, targetID, payload)
	result := int64(0)
	if enqueued {
		result = 1
	}
	e.storeResultIfRequested("send", f, n.ResultPath, result)
	return true
}

func (e *Evaluator) evalIf(n FunctionCall, f *frame.Frame) bool {
	condVal, err := expr.Eval(n.Args[0], f)
	if err != nil {
		return e.fail("if", fmt.Sprintf("if: %s", err))
	}
	truthy, ok := isTruthy(condVal)
	if !ok {
		return e.fail("if", "if: condition must be numeric")
	}

	branch := n.Args[2]
	if truthy {
		branch = n.Args[1]
	}
	val, err := expr.Eval(branch, f)
	if err != nil {
		return e.fail("if", fmt.Sprintf("if: %s", err))
	}

	if n.ResultPath == "" {
		return true
	}
	owned := e.claimIndependent(val)
	if owned == nil {
		return e.fail("if", "if: branch result is not copyable")
	}
	return e.storeAt("if", f, n.ResultPath, owned)
}

func (e *Evaluator) evalParse(n FunctionCall, f *frame.Frame) bool {
	templateVal, err := expr.Eval(n.Args[0], f)
	if err != nil {
		return e.fail("parse", fmt.Sprintf("parse: %s", err))
	}
	inputVal, err := expr.Eval(n.Args[1], f)
	if err != nil {
		return e.fail("parse", fmt.Sprintf("parse: %s", err))
	}
	result := ParseTemplate(data.GetString(templateVal), data.GetString(inputVal))
	if n.ResultPath == "" {
		return true
	}
	return e.storeAt("parse", f, n.ResultPath, result)
}

func (e *Evaluator) evalBuild(n FunctionCall, f *frame.Frame) bool {
	templateVal, err := expr.Eval(n.Args[0], f)
	if err != nil {
		return e.fail("build", fmt.Sprintf("build: %s", err))
	}
	mapVal, err := expr.Eval(n.Args[1], f)
	if err != nil {
		return e.fail("build", fmt.Sprintf("build: %s", err))
	}
	m, ok := mapVal.(*data.MapValue)
	if !ok {
		return e.fail("build", "build: second argument must be a map")
	}
	result := data.NewString(BuildTemplate(data.GetString(templateVal), m))
	if n.ResultPath == "" {
		return true
	}
	return e.storeAt("build", f, n.ResultPath, result)
}

func (e *Evaluator) evalCompile(n FunctionCall, f *frame.Frame) bool {
	name, version, text, err := e.evalStrings(f, n.Args[0], n.Args[1], n.Args[2])
	if err != nil {
		return e.fail("compile", fmt.Sprintf("compile: %s", err))
	}
	ok := e.runtime.Compile(name, version, text)
	result := int64(0)
	if ok {
		result = 1
	}
	e.storeResultIfRequested("compile", f, n.ResultPath, result)
	return true
}

func (e *Evaluator) evalSpawn(n FunctionCall, f *frame.Frame) bool {
	nameVal, err := expr.Eval(n.Args[0], f)
	if err != nil {
		return e.fail("spawn", fmt.Sprintf("spawn: %s", err))
	}
	versionVal, err := expr.Eval(n.Args[1], f)
	if err != nil {
		return e.fail("spawn", fmt.Sprintf("spawn: %s", err))
	}
	contextVal, err := expr.Eval(n.Args[2], f)
	if err != nil {
		return e.fail("spawn", fmt.Sprintf("spawn: %s", err))
	}
	ctxMap, ok := contextVal.(*data.MapValue)
	if !ok {
		return e.fail("spawn", "spawn: third argument must be a map")
	}

	id := e.runtime.Spawn(data.GetString(nameVal), data.GetString(versionVal), ctxMap)
	e.storeResultIfRequested("spawn", f, n.ResultPath, id)
	return true
}

func (e *Evaluator) evalDestroy(n FunctionCall, f *frame.Frame) bool {
	var ok bool
	if len(n.Args) == 1 {
		idVal, err := expr.Eval(n.Args[0], f)
		if err != nil {
			return e.fail("destroy", fmt.Sprintf("destroy: %s", err))
		}
		ok = e.runtime.DestroyAgent(data.GetInteger(idVal))
	} else {
		name, version, err := e.evalStringPair(f, n.Args[0], n.Args[1])
		if err != nil {
			return e.fail("destroy", fmt.Sprintf("destroy: %s", err))
		}
		ok = e.runtime.DestroyMethod(name, version)
	}
	result := int64(0)
	if ok {
		result = 1
	}
	e.storeResultIfRequested("destroy", f, n.ResultPath, result)
	return true
}

func isTruthy(v data.Value) (truthy, numeric bool) {
	if v == nil {
		return false, false
	}
	switch v.Type() {
	case data.Integer:
		return data.GetInteger(v) != 0, true
	case data.Double:
		return data.GetDouble(v) != 0, true
	default:
		return false, false
	}
}

// claimIndependent settles ownership of a freshly-evaluated value so
// it is ready to hand to a container or runtime call: it claims (or
// shallow-copies) v using e as a temporary owner, then immediately
// relinquishes that claim, leaving the result unowned. Returns nil if
// v is not copyable.
func (e *Evaluator) claimIndependent(v data.Value) data.Value {
	owned := data.ClaimOrCopy(v, e)
	if owned == nil {
		return nil
	}
	owned.DropOwnership(e)
	return owned
}

// storeAt writes value (already unowned) at memory.path, destroying it
// and recording a PathError under kind if the parent does not exist.
func (e *Evaluator) storeAt(kind string, f *frame.Frame, path string, value data.Value) bool {
	if !f.Memory().SetDataIfRootMatched("memory", "memory."+path, value) {
		data.Destroy(value)
		return e.fail(kind, fmt.Sprintf("%s: memory.%s parent does not exist", kind, path))
	}
	return true
}

// storeResultIfRequested stores an integer result at resultPath when
// the caller asked for one (section 4.4's "result (optional)").
func (e *Evaluator) storeResultIfRequested(kind string, f *frame.Frame, resultPath string, result int64) {
	if resultPath == "" {
		return
	}
	e.storeAt(kind, f, resultPath, data.NewInteger(result))
}

func (e *Evaluator) evalStrings(f *frame.Frame, a, b, c expr.AST) (string, string, string, error) {
	av, err := expr.Eval(a, f)
	if err != nil {
		return "", "", "", err
	}
	bv, err := expr.Eval(b, f)
	if err != nil {
		return "", "", "", err
	}
	cv, err := expr.Eval(c, f)
	if err != nil {
		return "", "", "", err
	}
	return data.GetString(av), data.GetString(bv), data.GetString(cv), nil
}

func (e *Evaluator) evalStringPair(f *frame.Frame, a, b expr.AST) (string, string, error) {
	av, err := expr.Eval(a, f)
	if err != nil {
		return "", "", err
	}
	bv, err := expr.Eval(b, f)
	if err != nil {
		return "", "", err
	}
	return data.GetString(av), data.GetString(bv), nil
}
