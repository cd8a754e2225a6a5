package ledger

import "errors"

// ErrInsufficientBalance is returned by stores when a debit would drive the
// balance negative.
var ErrInsufficientBalance = errors.New("insufficient balance")
