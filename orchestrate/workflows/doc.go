// Package workflows provides generic execution patterns for multi-step
// and multi-agent work.
//
// Two patterns are implemented:
//
//   - ProcessChain: sequential fold with accumulated state, fail-fast,
//     optional intermediate state capture.
//   - ProcessParallel: worker-pool fan-out with order-preserving result
//     collection and a choice between fail-fast and collect-all-errors.
//
// Both are generic over item and result types and take their observer
// from the configuration by registry name, so callers wire observability
// without importing a concrete implementation. The orchestrator fans a
// classified command out to its agents with ProcessParallel in
// collect-all-errors mode, which is what makes partial answers possible
// when a specialist fails.
package workflows
