package models

import "time"

// User represents an account within the FriendPost platform.
type User struct {
	ID        string
	Username  string
	FirstName string
	Surname   string
	Email     string
	Password  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FriendRequests groups the pending invitations for a user, split by
// direction from that user's point of view.
type FriendRequests struct {
	Sent     []string `json:"sent"`
	Received []string `json:"received"`
}

// FriendGraph is a user's view of the friend relation: accepted friends plus
// pending requests in both directions. The lists never overlap and never
// contain the user's own id.
type FriendGraph struct {
	Friends  []string
	Requests FriendRequests
}

// Friend edge statuses.
const (
	EdgeStatusPending  = "pending"
	EdgeStatusAccepted = "accepted"
)

// FriendEdge is the single stored record for a pair of users: a pending
// request from Requester to Receiver, or an accepted friendship.
type FriendEdge struct {
	Requester   string
	Receiver    string
	Status      string
	CreatedAt   time.Time
	RespondedAt *time.Time
}

// Message is a short post, public or addressed to a single recipient.
// Author and recipient display names are captured at post time and never
// re-synced; they are historical snapshots.
type Message struct {
	ID            string    `json:"id"`
	AuthorID      string    `json:"uid"`
	AuthorName    string    `json:"name"`
	Body          string    `json:"body"`
	RecipientID   string    `json:"recipient"`
	RecipientName string    `json:"recipientName"`
	Date          string    `json:"date"`
	UsersRead     []string  `json:"usersRead"`
	PostedAt      time.Time `json:"-"`
}

// MaxMessageLength bounds the trimmed body of a post.
const MaxMessageLength = 140

// Identity is the caller information the session guard attaches to an
// authenticated request.
type Identity struct {
	UserID         string         `json:"uid"`
	Username       string         `json:"username"`
	Name           string         `json:"name"`
	Friends        []string       `json:"friends"`
	FriendRequests FriendRequests `json:"friendRequests"`
}
