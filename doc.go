// Package taskgate provides a background orchestrator that gates selected
// tasks behind synchronous human approval.
//
// Frontend contexts connect to a shared message channel and submit tasks;
// the orchestrator consults a static policy and a store of remembered
// decisions, and when neither settles the question it suspends the task on
// a FIFO gate, broadcasts a prompt to a human decision surface and resumes
// exactly the suspended flow once the correlated response arrives.
// Pluggable layers:
//
//   - channel   – typed-message transport with last-message coalescing
//   - gate      – prompt-section mutex plus the prompt/response resolver table
//   - approval  – permission records and the durable prompt journal
//   - datastore – generic key/value store and the outbound endpoint list
//   - policy    – declarative per-task-type decisions
//
// End users typically interact via the Service facade exposed by this
// package:
//
//	srv, _ := taskgate.New()
//	_ = srv.Start(ctx)
//	conn := srv.Connect()
//	_ = conn.Send(ctx, &protocol.Message{Type: protocol.TypeTask, Task: aTask, RequiresApproval: true})
package taskgate
