package domain

import "time"

// DeliveryState is the terminal state of one transport delivery.
type DeliveryState string

const (
	// StateNoContent means there was nothing to send.
	StateNoContent DeliveryState = "NO_CONTENT"
	// StateUnsupportedAction means the action type cannot be delivered.
	StateUnsupportedAction DeliveryState = "UNSUPPORTED_ACTION"
	// StateInvalid means the delivery document lacks routing metadata.
	StateInvalid DeliveryState = "INVALID"
	// StateNoHandler means no transport plugin claims the document.
	StateNoHandler DeliveryState = "NO_HANDLER"
	// StateDelivered means matching transport plugins ran.
	StateDelivered DeliveryState = "DELIVERED"
)

// HTTP-style result codes reported back to the replication queue.
const (
	CodeDone          = 0
	CodeOK            = 200
	CodeNoContent     = 204
	CodeBadRequest    = 400
	CodeGone          = 410
	CodeUnprocessable = 422
)

// ReplicationResult is the outcome of a delivery.
type ReplicationResult struct {
	State      DeliveryState `json:"state"`
	Success    bool          `json:"success"`
	StatusCode int           `json:"code"`
	Message    string        `json:"message"`
}

// HistoryRecord is one stored replication run.
type HistoryRecord struct {
	ID          string
	Path        string
	Action      ActionType
	InstanceID  string
	State       DeliveryState
	Success     bool
	StatusCode  int
	Message     string
	StartedAt   time.Time
	FinishedAt  time.Time
}
