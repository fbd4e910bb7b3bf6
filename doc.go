// Package agerun implements a single-process, cooperatively-scheduled
// actor runtime: a tagged-union data model with ownership tracking, an
// expression/instruction language, and agents that exchange messages
// under a methodology of versioned method definitions.
//
// # Quick Start
//
// Install agerun:
//
//	go install github.com/quenio/agerun/cmd/agerun@latest
//
// Run with a methodology and agency file:
//
//	agerun --methodology methodology.yaml --agency agency.yaml
//
// # Architecture
//
// Messages flow: Agent -> queue -> System.Step() -> Method evaluation
// -> Data/Frame -> send to other agents or delegates. Delegates (file,
// network, log) are addressed by negative ids through the same
// send/receive contract as agents, so the instruction language never
// distinguishes the two.
//
// # Layers
//
//   - pkg/data:      tagged Data values and ownership tokens
//   - pkg/frame:     the borrowed (memory, context, message) triple
//   - pkg/lang/expr:  expression lexer, parser, evaluator
//   - pkg/lang/instr: instruction lexer, parser, evaluator
//   - pkg/method:    Method and Methodology (versioned registry)
//   - pkg/agent:     Agent and AgentRegistry
//   - pkg/system:    the cooperative scheduler
//   - pkg/delegate:  delegate registry, facade, file/network/log delegates
//   - pkg/eventlog:  buffered last-error/warning/info event log
//   - pkg/persistence: methodology/agency YAML snapshots
package agerun
