package model

// WebhookPayload is the top-level platform callback body.
type WebhookPayload struct {
	Object string         `json:"object"`
	Entry  []WebhookEntry `json:"entry"`
}

// WebhookEntry groups the messaging events delivered for one page.
type WebhookEntry struct {
	ID        string           `json:"id"`
	Messaging []MessagingEvent `json:"messaging,omitempty"`
}

// MessagingEvent is one raw messaging callback for a page.
type MessagingEvent struct {
	Sender  EventParticipant `json:"sender"`
	Message *EventMessage    `json:"message,omitempty"`
}

// EventParticipant identifies a conversation participant.
type EventParticipant struct {
	ID string `json:"id"`
}

// EventMessage carries the inbound message content, if any.
type EventMessage struct {
	Text string `json:"text"`
}
