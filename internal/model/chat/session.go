package chat

import "time"

// Session captures a transient anonymous negotiation.
type Session struct {
	ID          string    `json:"id"`
	ProductName string    `json:"productName"`
	CreatedAt   time.Time `json:"createdAt"`
}
