package realtime

// Event types pushed over a board's channel.
const (
	EventTaskCreated   = "task:created"
	EventTaskUpdated   = "task:updated"
	EventTaskDeleted   = "task:deleted"
	EventBoardUpdated  = "board:updated"
	EventBoardDeleted  = "board:deleted"
	EventColumnChanged = "column:changed"
	EventMemberAdded   = "member:added"
	EventMemberUpdated = "member:updated"
	EventMemberRemoved = "member:removed"
)

// Event is a mutation notification. Delivery is fire-and-forget,
// at-most-once: a subscriber that is offline at publish time never sees
// the event.
type Event struct {
	Type    string `json:"type"`
	User    string `json:"user,omitempty"`
	Action  string `json:"action,omitempty"`
	Target  string `json:"target,omitempty"`
	Payload any    `json:"payload,omitempty"`
}
