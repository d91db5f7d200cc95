package profile

import "errors"

var (
	ErrNotFound           = errors.New("factor source not found")
	ErrAlreadyPresent     = errors.New("factor source already present")
	ErrMainFactorSource   = errors.New("the main factor source cannot be flagged for deletion")
	ErrEmptyRegistry      = errors.New("profile has no factor sources")
	ErrMainInvariant      = errors.New("profile must have exactly one main device factor source")
	ErrDuplicateID        = errors.New("duplicate factor source id")
	ErrWrongSecurityState = errors.New("entity is not controlled by an unsecured security state")
	ErrNetworkMismatch    = errors.New("entity belongs to a different network")
	ErrDeleted            = errors.New("factor source is flagged for deletion")
	ErrKindMismatch       = errors.New("factor source id kind does not match its variant")
)
