// Package runtime abstracts the container runtime behind a narrow
// interface so the lifecycle controller, readiness prober, and
// reconciliation engine can be tested without a live daemon.
//
// The only real implementation shells out to the docker CLI through the
// command executor; inspect output is decoded with the Docker API type
// definitions rather than hand-rolled structs.
package runtime
