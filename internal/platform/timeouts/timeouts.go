// Package timeouts defines shared timeout and interval defaults.
// Centralizing these values keeps the engine, the authority client and the
// watch command in agreement and makes the durations discoverable.
package timeouts

import "time"

// AuthorityRequest caps a single request to the move authority.
const AuthorityRequest = 10 * time.Second

// PollInterval is the base delay between refreshes while waiting on the
// opponent or the setup phase.
const PollInterval = 5 * time.Second

// PollMaxBackoff caps the poll delay after repeated network failures.
const PollMaxBackoff = time.Minute

// PreviewDebounce is the quiet period before a preview request is issued.
const PreviewDebounce = 300 * time.Millisecond

// CredentialSkew is how long before access token expiry a refresh is
// performed proactively.
const CredentialSkew = 30 * time.Second

// Shutdown limits how long telemetry flushing may take on exit.
const Shutdown = 5 * time.Second
