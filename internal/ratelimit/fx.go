package ratelimit

import "go.uber.org/fx"

// Module provides the write limiter. It resolves to nil when redis is not
// configured, and a nil limiter lets every write through.
var Module = fx.Module("ratelimit",
	fx.Provide(NewWriteLimiter),
)
