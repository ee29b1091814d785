package billing

import "errors"

// Expected failures of the checkout and reconciliation flows. Controllers
// translate these into HTTP statuses; everything else is a 500.
var (
	// ErrPackageNotFound: the requested package is not in the catalog.
	ErrPackageNotFound = errors.New("subscription package not found")

	// ErrSellerOnly: the caller does not hold the seller role.
	ErrSellerOnly = errors.New("only sellers can subscribe")

	// ErrInvalidOrigin: the checkout return origin is not an absolute URL.
	ErrInvalidOrigin = errors.New("invalid origin url")

	// ErrTransactionNotFound: no ledger entry for this session and user.
	// Also returned for sessions owned by someone else, so probing a
	// foreign session id does not confirm it exists.
	ErrTransactionNotFound = errors.New("payment transaction not found")

	// ErrPaymentUnavailable: the gateway is unreachable or not configured.
	// Local state is untouched; the caller may safely retry.
	ErrPaymentUnavailable = errors.New("payment system unavailable")
)
