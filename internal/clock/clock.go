// Package clock funnels time reads through one overridable function so tests
// can pin DecidedAt stamps and prompt deadlines.
package clock

import "time"

// NowFunc returns the current time. Tests swap it for a fixed value.
var NowFunc = time.Now

// Now reports the current time via NowFunc.
func Now() time.Time { return NowFunc() }
