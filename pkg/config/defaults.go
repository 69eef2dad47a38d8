package config

// Reader defaults.
const (
	DefaultCommentMarker      = "#"
	DefaultUniformTolerance   = 1e-6
	DefaultRejectUnknownLines = false
	DefaultMaxFileSize        = "64MB"
)

// Batch defaults. Zero workers means one per CPU.
const (
	DefaultBatchWorkers = 0
)

// Logging defaults.
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Observability defaults.
const (
	DefaultEnvironment  = "development"
	DefaultSampleRatio  = 1.0
	DefaultOTLPInsecure = false
)
