package identity

// Principal is an authenticated identity as established by the session
// layer. The optional Hint carries role facts cached in the session token;
// it is advisory only and must never be used to decide access (see
// ClaimsHint).
type Principal struct {
	ID    string
	Email string
	Hint  *ClaimsHint
}

// ClaimsHint is the session-cached snapshot of previously computed role
// facts. It exists so callers can skip work when it agrees with resolved
// authority (and so disagreement can be logged), but it is read-only input:
// no authority decision may be based on it. Keeping it as a distinct type
// makes it hard to accidentally feed into an access check.
type ClaimsHint struct {
	Roles             []Role
	SharerPartitionID string
	DelegationCount   int
}
