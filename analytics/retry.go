package analytics

// maxAttempts bounds every windowed fetch. A retry is a full re-execution
// of the window-specific fetch, not a resume.
const maxAttempts = 3

// withRetry runs fn up to attempts times and returns the first successful
// result, or the last error once attempts are exhausted. No delay between
// attempts.
func withRetry[T any](attempts int, fn func() (T, error)) (T, error) {
	var result T
	var err error
	for i := 0; i < attempts; i++ {
		result, err = fn()
		if err == nil {
			return result, nil
		}
	}
	return result, err
}
