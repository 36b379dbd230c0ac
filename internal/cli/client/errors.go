package client

import "errors"

// Login failures. Bad credentials are an expected outcome, not a fault;
// everything else the login call returns is transport.
var (
	ErrBadCredentials = errors.New("invalid email or password")
)

// Verification failures. Callers must distinguish the three: only
// ErrVerifyInvalid means the credential itself is stale. A timeout or an
// unreachable server says nothing about the credential.
var (
	ErrVerifyInvalid     = errors.New("credential rejected by server")
	ErrVerifyTimeout     = errors.New("verification timed out")
	ErrVerifyUnreachable = errors.New("verification endpoint unreachable")
)
