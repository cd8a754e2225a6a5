package user

// Principal is the authenticated caller resolved from a bearer token. UserID
// doubles as the actor id.
type Principal struct {
	UserID string
	Email  string
}
