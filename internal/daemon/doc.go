// Package daemon runs the triage engine as a long-lived process: a
// continuous triage pass over the configured source plus a periodic sort
// pass, with flock-based locking to prevent multiple instances from
// fighting over the same project.
package daemon
