package user

// Principal is the already-authenticated identity attached to a request.
type Principal struct {
	UserID string
	Email  string
}
