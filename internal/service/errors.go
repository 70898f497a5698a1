package service

import "errors"

// Business-rule failures. These are expected outcomes of valid requests: the
// handler maps them to client-correctable responses and they are never logged
// as application errors. Anything not matching IsBusinessError is treated as
// an infrastructure failure.
var (
	ErrInvalidOrder       = errors.New("invalid order")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInsufficientShares = errors.New("insufficient shares")
	ErrNoPosition         = errors.New("no position")
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateWatchlist = errors.New("symbol already in watchlist")
	ErrInvalidSymbol      = errors.New("invalid symbol")
	ErrInvalidTimeframe   = errors.New("invalid timeframe")
)

func IsBusinessError(err error) bool {
	for _, target := range []error{
		ErrInvalidOrder,
		ErrInsufficientFunds,
		ErrInsufficientShares,
		ErrNoPosition,
		ErrUserNotFound,
		ErrDuplicateWatchlist,
		ErrInvalidSymbol,
		ErrInvalidTimeframe,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
