package social

const (
	statusPending  = "pending"
	statusAccepted = "accepted"
)

// FriendUser is the public shape of another user in friend listings.
type FriendUser struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
}

type PendingRequests struct {
	Received []FriendUser `json:"received"`
	Sent     []FriendUser `json:"sent"`
}
