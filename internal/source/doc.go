// Package source feeds the engine the tasks it should look at. A source is
// a project plus a pull strategy: everything once, everything on a repeat
// interval, or only what changed since the previous pull.
package source
