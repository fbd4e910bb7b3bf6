// Package system implements the single-threaded cooperative scheduler
// (section 4.7): Step/RunUntilIdle drive agents' message queues, and
// System implements pkg/lang/instr.Runtime so the instruction
// evaluator can send, compile, spawn, and destroy without importing
// this package.
package system

import (
	"context"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/quenio/agerun/pkg/agent"
	"github.com/quenio/agerun/pkg/data"
	"github.com/quenio/agerun/pkg/delegate"
	"github.com/quenio/agerun/pkg/eventlog"
	"github.com/quenio/agerun/pkg/lang/instr"
	"github.com/quenio/agerun/pkg/method"
	"github.com/quenio/agerun/pkg/metrics"
)

// System owns every registry (section 3.8) and drives the cooperative
// loop of section 4.7.
type System struct {
	agents      *agent.Registry
	methodology *method.Methodology
	delegates   *delegate.Facade
	log         *eventlog.Log
	metrics     *metrics.Metrics
	evaluator   *instr.Evaluator
}

// New builds a System wired over the given registries. metrics may be
// nil (every recording call becomes a no-op).
func New(methodology *method.Methodology, agents *agent.Registry, delegates *delegate.Facade, log *eventlog.Log, m *metrics.Metrics) *System {
	s := &System{
		agents:      agents,
		methodology: methodology,
		delegates:   delegates,
		log:         log,
		metrics:     m,
	}
	s.evaluator = instr.NewEvaluator(s, log, m)
	return s
}

// Agents returns the agent registry.
func (s *System) Agents() *agent.Registry { return s.agents }

// Methodology returns the methodology registry.
func (s *System) Methodology() *method.Methodology { return s.methodology }

// Delegates returns the delegation facade.
func (s *System) Delegates() *delegate.Facade { return s.delegates }

// Step performs section 4.7's single pass: the first agent (in
// insertion order) with a non-empty queue processes exactly one
// message. Returns true iff a message was processed.
func (s *System) Step() bool {
	for _, a := range s.agents.Agents() {
		if a.QueueLen() == 0 {
			continue
		}
		if !a.ProcessOne(s.evaluator) {
			continue
		}
		s.metrics.RecordMessageProcessed(strconv.FormatInt(a.ID(), 10))
		if a.PendingTeardown() {
			_ = s.agents.Remove(s.methodology, a.ID())
			s.metrics.RecordDestroy()
		}
		s.metrics.SetQueueDepth(s.QueueDepth())
		return true
	}
	return false
}

// RunUntilIdle repeats Step until it returns false (section 4.7). No
// maximum step budget is imposed.
func (s *System) RunUntilIdle() {
	for s.Step() {
	}
}

// QueueDepth sums the queue length of every registered agent.
func (s *System) QueueDepth() int {
	total := 0
	for _, a := range s.agents.Agents() {
		total += a.QueueLen()
	}
	return total
}

// Shutdown drains pending lifecycle-destroy messages for every
// still-registered agent and runs the scheduler to completion —
// supplemented from the original's agent-store teardown path (not in
// the distilled spec, but no Non-goal excludes orderly shutdown).
func (s *System) Shutdown(ctx context.Context) error {
	for _, a := range s.agents.Agents() {
		a.RequestDestroy()
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if !s.Step() {
			return nil
		}
	}
}

// Send implements instr.Runtime. Delegates addressed at a negative id
// are routed through the delegation facade and drained synchronously
// so their response reaches the sender before Send returns.
func (s *System) Send(senderID, targetID int64, payload data.Value) bool {
	if targetID == 0 {
		data.Destroy(payload)
		return false
	}
	if targetID > 0 {
		a, ok := s.agents.Get(targetID)
		if !ok {
			data.Destroy(payload)
			return false
		}
		return a.Deliver(payload)
	}

	if !s.delegates.SendToDelegate(senderID, targetID, payload) {
		return false
	}
	_ = s.drainDelegates(context.Background())
	return true
}

// drainDelegates processes every delegate with pending messages
// concurrently (one goroutine per delegate, bounded by errgroup),
// routing each response back to its sender — the "adapter thread"
// pattern section 5 describes for a concurrent host, modeled here
// with golang.org/x/sync/errgroup.
func (s *System) drainDelegates(ctx context.Context) error {
	g, _ := errgroup.WithContext(ctx)
	for _, d := range s.delegates.Registry().List() {
		d := d
		if !d.HasMessages() {
			continue
		}
		g.Go(func() error {
			for d.HasMessages() {
				resp, sender, ok := d.Process()
				if !ok {
					break
				}
				s.metrics.RecordDelegateResponse(d.Type(), resp.GetString("status"))
				s.routeDelegateResponse(sender, resp)
			}
			return nil
		})
	}
	return g.Wait()
}

func (s *System) routeDelegateResponse(senderID int64, resp data.Value) {
	if senderID <= 0 {
		data.Destroy(resp)
		return
	}
	a, ok := s.agents.Get(senderID)
	if !ok {
		data.Destroy(resp)
		return
	}
	if !a.Deliver(resp) {
		data.Destroy(resp)
	}
}

// Compile implements instr.Runtime.
func (s *System) Compile(name, version, instructionsText string) bool {
	v, err := method.ParseVersion(version)
	if err != nil {
		s.metrics.RecordParseError()
		s.log.Error("compile: " + err.Error())
		return false
	}
	m, err := method.Compile(name, v, instructionsText)
	if err != nil {
		s.metrics.RecordParseError()
		s.log.Error("compile: " + err.Error())
		return false
	}
	s.methodology.Register(m)
	return true
}

// Spawn implements instr.Runtime.
func (s *System) Spawn(methodName, version string, context *data.MapValue) int64 {
	v, err := method.ParseVersion(version)
	if err != nil {
		return 0
	}
	m, ok := s.methodology.Get(methodName, v)
	if !ok {
		return 0
	}
	a, err := s.agents.Spawn(s.methodology, m, context)
	if err != nil {
		return 0
	}
	s.metrics.RecordSpawn()
	return a.ID()
}

// DestroyAgent implements instr.Runtime: it enqueues the destroy
// lifecycle message; actual registry removal happens once that
// message is processed (section 4.6, 6.5).
func (s *System) DestroyAgent(id int64) bool {
	a, ok := s.agents.Get(id)
	if !ok {
		return false
	}
	a.RequestDestroy()
	return true
}

// DestroyMethod implements instr.Runtime.
func (s *System) DestroyMethod(name, version string) bool {
	v, err := method.ParseVersion(version)
	if err != nil {
		return false
	}
	return s.methodology.Unregister(name, v) == nil
}
