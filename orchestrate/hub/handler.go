package hub

import (
	"context"

	"github.com/tailored-agentic-units/foreman/agent"
	"github.com/tailored-agentic-units/foreman/orchestrate/messaging"
)

// MessageContext carries hub-level context into a message handler.
type MessageContext struct {
	HubName string
	Agent   agent.Agent
}

// MessageHandler processes one inbound message for a registered agent.
// Returning a non-nil message routes it: responses travel back to the
// waiting requester via ReplyTo, anything else is delivered to message.To.
type MessageHandler func(
	ctx context.Context,
	message *messaging.Message,
	context *MessageContext,
) (*messaging.Message, error)

// AgentHandler adapts an agent's Execute method into a MessageHandler.
// Request payloads are decoded into a Subrequest when the data is a
// *agent.Subrequest, otherwise the data's string form becomes the input.
// Execution failures still produce a response message so the requester
// receives the error status instead of a timeout.
func AgentHandler(ag agent.Agent) MessageHandler {
	return func(ctx context.Context, message *messaging.Message, _ *MessageContext) (*messaging.Message, error) {
		if !message.IsRequest() {
			return nil, nil
		}

		sub := subrequestFrom(message)

		response, err := ag.Execute(ctx, sub)
		if err != nil {
			response = agent.Failure(ag.Name(), err)
		}

		return messaging.NewResponse(ag.Name(), message.From, message.ID, response).
			Session(message.SessionID).
			Build(), nil
	}
}

func subrequestFrom(message *messaging.Message) *agent.Subrequest {
	if sub, ok := message.Data.(*agent.Subrequest); ok {
		if sub.ID == "" {
			sub.ID = message.ID
		}
		if sub.SessionID == "" {
			sub.SessionID = message.SessionID
		}
		return sub
	}

	input := ""
	if s, ok := message.Data.(string); ok {
		input = s
	}

	return &agent.Subrequest{
		ID:        message.ID,
		SessionID: message.SessionID,
		Input:     input,
	}
}
