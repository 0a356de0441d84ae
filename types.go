package fasttranslator

import "time"

// Request is a single translation request. It is immutable once created;
// the dispatcher resolves effective languages into its own bookkeeping and
// never mutates the request.
type Request struct {
	SourceLang  string    // Source language code, or LangAuto to detect
	TargetLang  string    // Target language code (never LangAuto)
	Text        string    // Text to translate
	SubmittedAt time.Time // Optional submission time, for caller bookkeeping
}

// Config holds construction-time settings for a Dispatcher. Credential and
// default languages are consumed once; changing them means building a new
// dispatcher, not mutating a running one.
type Config struct {
	DefaultSourceLang string        // Source used when a request leaves it empty (default "es")
	DefaultTargetLang string        // Target used when a request leaves it empty (default "en")
	Workers           int           // Fixed worker pool size (default 4)
	QueueSize         int           // Pending jobs buffered before Submit blocks (default 64)
	CallSpacing       time.Duration // Global minimum spacing between provider calls (default 200ms)
	Retry             RetryPolicy
}

// DefaultConfig returns the defaults used for unset Config fields.
func DefaultConfig() Config {
	return Config{
		DefaultSourceLang: "es",
		DefaultTargetLang: "en",
		Workers:           4,
		QueueSize:         64,
		CallSpacing:       200 * time.Millisecond,
		Retry:             DefaultRetryPolicy(),
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.DefaultSourceLang == "" {
		c.DefaultSourceLang = def.DefaultSourceLang
	}
	if c.DefaultTargetLang == "" {
		c.DefaultTargetLang = def.DefaultTargetLang
	}
	if c.Workers <= 0 {
		c.Workers = def.Workers
	}
	if c.QueueSize <= 0 {
		c.QueueSize = def.QueueSize
	}
	if c.CallSpacing < 0 {
		c.CallSpacing = 0
	}
	if c.Retry.MaxAttempts <= 0 {
		c.Retry = def.Retry
	}
	return c
}
