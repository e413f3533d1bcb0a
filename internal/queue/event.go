// Package queue defines the message payloads exchanged over the message
// broker and the background consumer that records them.
package queue

// Queue names.  Both queues are durable and fed through the default
// exchange, so the routing key is the queue name.
const (
    ReservationConfirmedQueue = "reservation.confirmed"
    OrderPlacedQueue          = "order.placed"
)

// ReservationConfirmedEvent is published after a reservation commits.
// It carries enough context for downstream consumers to log or notify
// without querying the primary database.  Timestamps are RFC3339 UTC.
type ReservationConfirmedEvent struct {
    ReservationID string `json:"reservation_id"`
    MemberID      string `json:"member_id"`
    BranchID      string `json:"branch_id"`
    BranchName    string `json:"branch_name"`
    People        int    `json:"people"`
    ReservedAt    string `json:"reserved_at"`
    ConfirmedAt   string `json:"confirmed_at"`
}

// OrderPlacedEvent is published after a recipe order or a customized
// order commits.  Exactly one of OrderIDs and CustomizedOrderID is set.
type OrderPlacedEvent struct {
    OrderIDs          []string `json:"order_ids,omitempty"`
    CustomizedOrderID string   `json:"customized_order_id,omitempty"`
    MemberID          string   `json:"member_id"`
    BranchID          string   `json:"branch_id,omitempty"`
    Type              string   `json:"type"`
    Concentration     int      `json:"concentration"`
    PlacedAt          string   `json:"placed_at"`
}
