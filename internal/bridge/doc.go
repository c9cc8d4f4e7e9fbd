// Package bridge wires a pipeline run to its process surroundings: run IDs,
// the optional archive and reporters, logging, and the policy that turns a
// finished run into an exit status.
package bridge
