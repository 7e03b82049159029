// Package resilience holds the failure policies applied to backend calls:
// a bounded exponential-backoff Retry and a per-backend CircuitBreaker.
//
// Both are off by default. A gateway with retry.max_attempts <= 1 and
// circuit_breaker.enabled = false makes exactly one call per backend.
//
//	cb := resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig("transformer"))
//	out, err := resilience.Execute(cb, func() (Result, error) {
//		return resilience.Retry(ctx, retryCfg, call)
//	})
package resilience
