package session

import "errors"

// Resolution error taxonomy. Every failure in the resolution pipeline degrades
// to an unauthenticated terminal state; these sentinels tell the initiating
// caller which user-facing condition applies.
var (
	// ErrInvalidCredential means the email/secret pair was rejected by the
	// provider. Recoverable; the user retries.
	ErrInvalidCredential = errors.New("invalid credential")

	// ErrProviderUnavailable means the identity provider could not be reached.
	ErrProviderUnavailable = errors.New("identity provider unavailable")

	// ErrProviderTimeout means a provider call exceeded its deadline. Treated
	// like a lookup failure, never like a hang.
	ErrProviderTimeout = errors.New("identity provider timeout")

	// ErrProfileLoad means the credential is valid but the tenant context
	// failed to load. Distinct from bad credentials on purpose.
	ErrProfileLoad = errors.New("profile load failed")

	// ErrZombieSession means a verified external credential has no matching
	// tenant-side record. The credential is revoked and the user sees an
	// ordinary logout.
	ErrZombieSession = errors.New("no account for verified credential")

	// ErrPartnerSuspended means a partner operator's owning partner is not
	// active. The credential is revoked and the condition surfaced as an
	// account suspension, not a generic auth failure.
	ErrPartnerSuspended = errors.New("partner account suspended")

	// ErrTenantInactive means a PIN login targeted a deactivated tenant.
	ErrTenantInactive = errors.New("tenant inactive")

	// ErrPINNotFound means the tenant code + PIN pair matched no active
	// employee.
	ErrPINNotFound = errors.New("pin not recognized")

	// ErrResolutionInFlight means a login was attempted while another
	// resolution attempt holds the session.
	ErrResolutionInFlight = errors.New("session resolution already in flight")

	// ErrNoStoreConfig means a PIN operation ran before any tenant code was
	// resolved on this terminal.
	ErrNoStoreConfig = errors.New("no store configured")
)
