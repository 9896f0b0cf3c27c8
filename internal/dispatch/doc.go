// Package dispatch runs notification and email delivery off the request
// path.
//
// Push and mail providers are slow, external and occasionally down. The
// dispatcher accepts jobs on a bounded queue and works them with a small
// pool of goroutines, so an HTTP handler can hand off a delivery and return
// immediately. When the queue is full the job is dropped and logged rather
// than blocking the caller.
package dispatch
