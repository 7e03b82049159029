// Package dispatch routes a validated prediction request to its backend.
//
// A named model goes to the single matching backend. The "all" model goes
// to the Aggregator, which calls every configured backend concurrently and
// waits for all of them; one backend failing never hides the others'
// results.
package dispatch
