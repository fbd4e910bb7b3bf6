package instr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dto "github.com/prometheus/client_model/go"

	"github.com/quenio/agerun/pkg/data"
	"github.com/quenio/agerun/pkg/eventlog"
	"github.com/quenio/agerun/pkg/frame"
	"github.com/quenio/agerun/pkg/metrics"
)

// stubRuntime records calls and lets tests script return values.
type stubRuntime struct {
	sent        []int64
	sendResult  bool
	compileOK   bool
	spawnID     int64
	destroyOK   bool
	destroyMOK  bool
	lastPayload data.Value
}

func (s *stubRuntime) Send(senderID, targetID int64, payload data.Value) bool {
	s.sent = append(s.sent, targetID)
	s.lastPayload = payload
	return s.sendResult
}

func (s *stubRuntime) Compile(name, version, instructionsText string) bool { return s.compileOK }

func (s *stubRuntime) Spawn(methodName, version string, context *data.MapValue) int64 {
	return s.spawnID
}

func (s *stubRuntime) DestroyAgent(id int64) bool          { return s.destroyOK }
func (s *stubRuntime) DestroyMethod(name, version string) bool { return s.destroyMOK }

func newTestFrame(t *testing.T) (*frame.Frame, *data.MapValue) {
	t.Helper()
	memory := data.NewMap()
	context := data.NewMap()
	message := data.NewMap()
	f, err := frame.New(memory, context, message)
	require.NoError(t, err)
	return f, memory
}

func newTestEvaluator(rt Runtime) *Evaluator {
	return NewEvaluator(rt, eventlog.New(nil, eventlog.DefaultCapacity), nil)
}

func TestEvaluate_SimpleAssignment(t *testing.T) {
	f, memory := newTestFrame(t)
	ast, err := Parse("memory.x := 5")
	require.NoError(t, err)

	e := newTestEvaluator(&stubRuntime{})
	assert.True(t, e.Evaluate(ast, f))
	assert.Equal(t, int64(5), memory.GetInteger("x"))
}

// TestEvaluate_IfAssignsBranchResult mirrors scenario 3 of section 8.4:
// memory.r := if(memory.x > 5, 100, 200)
func TestEvaluate_IfAssignsBranchResult(t *testing.T) {
	f, memory := newTestFrame(t)
	memory.SetInteger("x", 10)

	ast, err := Parse("memory.r := if(memory.x > 5, 100, 200)")
	require.NoError(t, err)

	e := newTestEvaluator(&stubRuntime{})
	assert.True(t, e.Evaluate(ast, f))
	assert.Equal(t, int64(100), memory.GetInteger("r"))
}

// TestEvaluate_SendFailureRecordsEvaluatorFailureMetric exercises
// section 11's per-kind evaluator failure counter: a send whose first
// argument isn't an integer id fails evaluation and must be counted
// under kind "send".
func TestEvaluate_SendFailureRecordsEvaluatorFailureMetric(t *testing.T) {
	f, _ := newTestFrame(t)
	ast, err := Parse(`send("not-an-id", "hi")`)
	require.NoError(t, err)

	m := metrics.New()
	e := NewEvaluator(&stubRuntime{}, eventlog.New(nil, eventlog.DefaultCapacity), m)
	assert.False(t, e.Evaluate(ast, f))

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	assert.True(t, evaluatorFailureRecorded(families, "send"), "expected a send evaluator failure to be recorded")
}

func evaluatorFailureRecorded(families []*dto.MetricFamily, kind string) bool {
	for _, family := range families {
		if family.GetName() != "agerun_evaluator_failures_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "kind" && label.GetValue() == kind && metric.GetCounter().GetValue() > 0 {
					return true
				}
			}
		}
	}
	return false
}

func TestEvaluate_IfFalseBranch(t *testing.T) {
	f, memory := newTestFrame(t)
	memory.SetInteger("x", 1)

	ast, err := Parse("memory.r := if(memory.x > 5, 100, 200)")
	require.NoError(t, err)

	e := newTestEvaluator(&stubRuntime{})
	assert.True(t, e.Evaluate(ast, f))
	assert.Equal(t, int64(200), memory.GetInteger("r"))
}

// TestEvaluate_ParseBuildRoundTrip mirrors scenario 4 of section 8.4:
// parsing a greeting and rebuilding it from extracted fields.
func TestEvaluate_ParseBuildRoundTrip(t *testing.T) {
	f, memory := newTestFrame(t)
	memory.SetString("greeting", "hello {name}, you are {age}")
	memory.SetString("input", "hello Ada, you are 36")

	parseAST, err := Parse("memory.fields := parse(memory.greeting, memory.input)")
	require.NoError(t, err)

	e := newTestEvaluator(&stubRuntime{})
	require.True(t, e.Evaluate(parseAST, f))

	fields, ok := memory.GetData("fields").(*data.MapValue)
	require.True(t, ok)
	assert.Equal(t, "Ada", fields.GetString("name"))
	assert.Equal(t, "36", fields.GetString("age"))

	memory.SetString("template", "hi {name}!")
	buildAST, err := Parse("memory.out := build(memory.template, memory.fields)")
	require.NoError(t, err)
	require.True(t, e.Evaluate(buildAST, f))
	assert.Equal(t, "hi Ada!", memory.GetString("out"))
}

func TestEvaluate_ParseNoMatchYieldsEmptyMap(t *testing.T) {
	f, memory := newTestFrame(t)
	memory.SetString("tmpl", "hello {name}")
	memory.SetString("input", "nothing matches here")

	ast, err := Parse("memory.fields := parse(memory.tmpl, memory.input)")
	require.NoError(t, err)

	e := newTestEvaluator(&stubRuntime{})
	require.True(t, e.Evaluate(ast, f))

	fields, ok := memory.GetData("fields").(*data.MapValue)
	require.True(t, ok)
	assert.Equal(t, 0, fields.Len())
}

func TestEvaluate_SendRoutesToRuntimeAndStoresResult(t *testing.T) {
	f, memory := newTestFrame(t)
	memory.SetInteger("target", 7)
	memory.SetString("payload", "hi")

	rt := &stubRuntime{sendResult: true}
	ast, err := Parse("memory.ok := send(memory.target, memory.payload)")
	require.NoError(t, err)

	e := newTestEvaluator(rt)
	assert.True(t, e.Evaluate(ast, f))
	assert.Equal(t, []int64{7}, rt.sent)
	assert.Equal(t, int64(1), memory.GetInteger("ok"))
	require.NotNil(t, rt.lastPayload)
	assert.Equal(t, "hi", data.GetString(rt.lastPayload))
}

func TestEvaluate_SpawnStoresNewID(t *testing.T) {
	f, memory := newTestFrame(t)
	memory.SetString("name", "greeter")
	memory.SetString("version", "1.0.0")

	rt := &stubRuntime{spawnID: 42}
	ast, err := Parse(`memory.child := spawn(memory.name, memory.version, memory)`)
	require.NoError(t, err)

	e := newTestEvaluator(rt)
	assert.True(t, e.Evaluate(ast, f))
	assert.Equal(t, int64(42), memory.GetInteger("child"))
}

func TestEvaluate_DestroyAgentSingleArg(t *testing.T) {
	f, memory := newTestFrame(t)
	memory.SetInteger("id", 3)

	rt := &stubRuntime{destroyOK: true}
	ast, err := Parse("memory.ok := destroy(memory.id)")
	require.NoError(t, err)

	e := newTestEvaluator(rt)
	assert.True(t, e.Evaluate(ast, f))
	assert.Equal(t, int64(1), memory.GetInteger("ok"))
}

func TestEvaluate_AssignmentFailsOnMissingParentPath(t *testing.T) {
	f, _ := newTestFrame(t)
	ast, err := Parse("memory.nested.x := 5")
	require.NoError(t, err)

	e := newTestEvaluator(&stubRuntime{})
	assert.False(t, e.Evaluate(ast, f))
	assert.NotEmpty(t, e.log.LastErrorMessage())
}
