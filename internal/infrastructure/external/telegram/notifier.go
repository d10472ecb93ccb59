package telegram

import (
	"context"

	"github.com/alem-hub/homework-bot/internal/domain/homework"
)

// ChatNotifier delivers messages to one fixed chat.
type ChatNotifier struct {
	client *Client
	chatID string
}

// NewChatNotifier binds the client to chatID.
func NewChatNotifier(client *Client, chatID string) *ChatNotifier {
	return &ChatNotifier{client: client, chatID: chatID}
}

// Notify sends text to the chat. Failures are returned as *homework.DeliveryError.
func (n *ChatNotifier) Notify(ctx context.Context, text string) error {
	msg, err := n.client.SendText(ctx, n.chatID, text)
	if err != nil {
		return &homework.DeliveryError{ChatID: n.chatID, Err: err}
	}
	n.client.logger.Debug("message delivered", "chat_id", n.chatID, "message_id", msg.MessageID)
	return nil
}

// ChatID returns the target chat.
func (n *ChatNotifier) ChatID() string {
	return n.chatID
}
