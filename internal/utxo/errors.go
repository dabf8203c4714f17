package utxo

import "errors"

// ErrBackendUnavailable wraps any persistence-backend failure during a
// batch commit, mapped at the RPC boundary to a retryable server error.
var ErrBackendUnavailable = errors.New("BackendUnavailable")
