package approval

import (
	"context"

	"github.com/taskgate/taskgate/protocol"
	"github.com/taskgate/taskgate/service/channel"
)

// DecisionFunc decides a pending request: the first return approves or
// rejects, the second asks the orchestrator to remember the decision.
type DecisionFunc func(r *Request) (approved, remember bool)

// AutoResponder answers every prompt broadcast on conn by applying fn and
// sending the matching response back. It returns stop(). Useful for tests
// and for unattended deployments that still want the full gate flow.
func AutoResponder(ctx context.Context, conn *channel.Conn, fn DecisionFunc) (stop func()) {
	return conn.OnMessage(func(ctx context.Context, message *protocol.Message) {
		if message.Type != protocol.TypePrompt {
			return
		}
		approved, remember := fn(&Request{ID: message.PromptID, Task: message.Task})
		response := &protocol.Response{Approved: approved}
		if remember {
			value := true
			response.Remember = &value
		}
		_ = conn.Send(ctx, &protocol.Message{
			Type:     protocol.TypePromptResponse,
			PromptID: message.PromptID,
			Response: response,
		})
	})
}

// AutoApprove approves every prompt without remembering.
func AutoApprove(ctx context.Context, conn *channel.Conn) func() {
	return AutoResponder(ctx, conn, func(*Request) (bool, bool) { return true, false })
}

// AutoReject rejects every prompt without remembering.
func AutoReject(ctx context.Context, conn *channel.Conn) func() {
	return AutoResponder(ctx, conn, func(*Request) (bool, bool) { return false, false })
}
