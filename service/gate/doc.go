// Package gate holds the approval-gate primitives: a strict-FIFO mutex that
// serialises the visible prompt section, and a typed resolver table that
// correlates each prompt id with exactly one suspended waiter.
package gate
