package query

import (
	"time"

	"github.com/google/uuid"
)

// callIDLength truncates the UUID to a short, log-friendly call ID.
const callIDLength = 8

// traced wraps one public engine operation with entry/exit diagnostics:
// a per-call ID, the elapsed time, and the failure if one occurred. It is
// applied uniformly at the facade rather than inlined per operation.
func traced[T any](log Logger, op string, fn func() (T, error)) (T, error) {
	callID := uuid.NewString()[:callIDLength]
	log.Debug("operation started", "op", op, "call_id", callID)

	start := time.Now()
	result, err := fn()
	elapsed := time.Since(start)

	if err != nil {
		log.Error("operation failed",
			"op", op,
			"call_id", callID,
			"elapsed_ms", elapsed.Milliseconds(),
			"error", err,
		)
		return result, err
	}

	log.Debug("operation finished",
		"op", op,
		"call_id", callID,
		"elapsed_ms", elapsed.Milliseconds(),
	)
	return result, nil
}
