// Package messaging provides structured message primitives for
// orchestrator-to-agent communication.
//
// # Message Types
//
// The package defines three core message types:
//
//   - Request: Expects a response from the recipient
//   - Response: Reply to a previous request
//   - Notification: One-way message requiring no response
//
// # Message Construction
//
// Messages are constructed using a fluent builder API:
//
//	msg := messaging.NewRequest("orchestrator", "financial", subrequest).
//	    Session(sessionID).
//	    Headers(map[string]string{"correlation-id": "123"}).
//	    Build()
//
// # Message Metadata
//
// Each message includes:
//
//   - ID: UUIDv7 providing time-sortable unique identification
//   - Timestamp: Creation time for ordering
//   - SessionID: The conversation the exchange belongs to
//   - Headers: Extensible key-value metadata
//   - ReplyTo: Reference to the original request for responses
//
// # Topology
//
// Delivery follows a strict tree: the orchestrator addresses agents and
// agents reply to the orchestrator. Agents never address each other; shared
// state flows through the memory gateway instead.
package messaging
