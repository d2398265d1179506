// Package policy provides an optional declarative approval layer evaluated
// ahead of the permission store: a coarse mode (ask/auto/deny), allow and
// block lists, and a compact rule syntax for per-task-type decisions.
package policy
