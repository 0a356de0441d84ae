package fasttranslator

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// TranslateClient is the external translate capability the dispatcher
// depends on. Implementations live in the provider package; the dispatcher
// is independent of the wire format and only sees the raw response text
// and typed errors.
type TranslateClient interface {
	Translate(ctx context.Context, sourceLang, targetLang, text string) (string, error)
}

// Cache is the dispatcher's view of the translation cache. Both operations
// are atomic; Record inserts or increments the entry's hit count.
type Cache interface {
	Lookup(key string) (string, bool)
	Record(key, text, translation string)
}

// ErrClosed is returned by Submit after Close.
var ErrClosed = errors.New("dispatcher closed")

// inflightCall tracks the single outstanding network call for a key and
// the callers waiting on it. At most one exists per key at any instant.
type inflightCall struct {
	key        string
	sourceLang string
	targetLang string
	text       string
	waiters    []chan outcome // guarded by Dispatcher.mu
}

// Dispatcher turns translation requests into deduplicated, cached,
// rate-limited provider calls. A fixed pool of workers executes the
// network calls; callers block only on their Pending handle, never on
// network I/O.
type Dispatcher struct {
	cfg      Config
	client   TranslateClient
	cache    Cache
	detector Detector
	pacer    *Pacer
	clock    Clock
	log      zerolog.Logger

	mu       sync.Mutex
	inflight map[string]*inflightCall
	closed   bool

	jobs       chan *inflightCall
	shutdown   chan struct{}
	wg         sync.WaitGroup
	submitting sync.WaitGroup // Submits past the closed check, still enqueueing
}

// Option is a functional option for configuring the Dispatcher.
type Option func(*Dispatcher)

// WithCache sets the translation cache.
func WithCache(c Cache) Option {
	return func(d *Dispatcher) { d.cache = c }
}

// WithDetector sets the language detector used for auto-swap resolution.
func WithDetector(det Detector) Option {
	return func(d *Dispatcher) { d.detector = det }
}

// WithClock injects the clock driving retry backoff and call pacing.
func WithClock(clock Clock) Option {
	return func(d *Dispatcher) { d.clock = clock }
}

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(d *Dispatcher) { d.log = log }
}

// New creates a Dispatcher around the given translate client and starts
// its worker pool. The pool size is fixed for the dispatcher's lifetime;
// excess concurrent requests queue rather than spawning extra workers.
func New(client TranslateClient, cfg Config, opts ...Option) *Dispatcher {
	cfg = cfg.withDefaults()

	d := &Dispatcher{
		cfg:      cfg,
		client:   client,
		clock:    SystemClock,
		log:      zerolog.Nop(),
		inflight: make(map[string]*inflightCall),
		jobs:     make(chan *inflightCall, cfg.QueueSize),
		shutdown: make(chan struct{}),
	}

	for _, opt := range opts {
		opt(d)
	}

	d.pacer = NewPacer(cfg.CallSpacing, d.clock)

	d.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go d.worker()
	}

	return d
}

// Submit validates and dispatches a request, returning a handle the caller
// waits on. Identical concurrent requests coalesce onto one network call;
// a cache hit resolves immediately and still counts as a usage increment.
func (d *Dispatcher) Submit(req Request) (*Pending, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, &ValidationError{Message: "text is empty"}
	}

	sourceLang := req.SourceLang
	if sourceLang == "" {
		sourceLang = d.cfg.DefaultSourceLang
	}
	targetLang := req.TargetLang
	if targetLang == "" {
		targetLang = d.cfg.DefaultTargetLang
	}
	if NormalizeLang(targetLang) == LangAuto {
		return nil, &ValidationError{Message: "target language cannot be auto"}
	}

	detected := ""
	if d.detector != nil {
		detected = d.detector.Detect(req.Text)
	}
	sourceLang, targetLang = Resolve(detected, sourceLang, targetLang)

	key := Key(sourceLang, targetLang, req.Text)
	text := NormalizeText(req.Text)

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil, ErrClosed
	}

	// Lookup-then-register is atomic under the lock: either the key is
	// cached, or exactly one in-flight call exists for it.
	if d.cache != nil {
		if translation, ok := d.cache.Lookup(key); ok {
			d.mu.Unlock()
			d.cache.Record(key, text, translation)
			return newResolvedPending(key, translation), nil
		}
	}

	ch := make(chan outcome, 1)
	pending := &Pending{d: d, key: key, ch: ch}

	if call, ok := d.inflight[key]; ok {
		call.waiters = append(call.waiters, ch)
		d.mu.Unlock()
		return pending, nil
	}

	call := &inflightCall{
		key:        key,
		sourceLang: sourceLang,
		targetLang: targetLang,
		text:       text,
		waiters:    []chan outcome{ch},
	}
	d.inflight[key] = call
	d.submitting.Add(1)
	d.mu.Unlock()

	select {
	case d.jobs <- call:
	case <-d.shutdown:
		d.fail(call, ErrClosed)
	}
	d.submitting.Done()

	return pending, nil
}

// Translate is a convenience wrapper: submit and wait.
func (d *Dispatcher) Translate(ctx context.Context, req Request) (string, error) {
	pending, err := d.Submit(req)
	if err != nil {
		return "", err
	}
	return pending.Wait(ctx)
}

// Close stops accepting requests and waits for in-flight work to finish.
// Requests still queued when the workers stop are failed with ErrClosed, so
// every accepted submission resolves exactly once.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.mu.Unlock()

	// Submissions that passed the closed check may still be enqueueing;
	// they finish before the workers are told to stop, so anything they
	// queued is visible to the drain below.
	d.submitting.Wait()

	close(d.shutdown)
	d.wg.Wait()

	// A worker can exit on shutdown with jobs still queued behind it.
	for {
		select {
		case call := <-d.jobs:
			d.fail(call, ErrClosed)
		default:
			return
		}
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for {
		select {
		case <-d.shutdown:
			return
		case call := <-d.jobs:
			d.process(call)
		}
	}
}

// process runs the full dispatch for one in-flight key: pacing, provider
// call, retry, parse, cache record, fan-out.
func (d *Dispatcher) process(call *inflightCall) {
	d.mu.Lock()
	if len(call.waiters) == 0 {
		// Every caller cancelled before pickup; skip the network call.
		delete(d.inflight, call.key)
		d.mu.Unlock()
		return
	}
	d.mu.Unlock()

	// The network call itself is not cancellable: a caller abandoning its
	// Pending must not corrupt the shared outcome for remaining waiters.
	ctx := context.Background()

	translation, err := WithRetry(ctx, d.cfg.Retry, d.clock, func() (string, error) {
		if err := d.pacer.Wait(ctx); err != nil {
			return "", err
		}
		raw, callErr := d.client.Translate(ctx, call.sourceLang, call.targetLang, call.text)
		if callErr != nil {
			return "", callErr
		}
		return ExtractTranslation(raw)
	})

	if err != nil {
		var parseErr *ParseError
		if errors.As(err, &parseErr) {
			err = &TranslationError{Message: "uninterpretable response", Cause: err}
		}
		d.log.Warn().Err(err).
			Str("source", call.sourceLang).
			Str("target", call.targetLang).
			Msg("translation dispatch failed")
		d.fail(call, err)
		return
	}

	if d.cache != nil {
		d.cache.Record(call.key, call.text, translation)
	}
	d.resolve(call, outcome{translation: translation})
}

// fail fans a typed failure out to every waiter. Nothing is cached.
func (d *Dispatcher) fail(call *inflightCall, err error) {
	d.resolve(call, outcome{err: err})
}

func (d *Dispatcher) resolve(call *inflightCall, out outcome) {
	d.mu.Lock()
	waiters := call.waiters
	call.waiters = nil
	delete(d.inflight, call.key)
	d.mu.Unlock()

	for _, ch := range waiters {
		ch <- out // buffered; each waiter receives exactly once
	}
}

// detach removes one waiter from an in-flight call, if it still exists.
func (d *Dispatcher) detach(key string, ch chan outcome) {
	d.mu.Lock()
	defer d.mu.Unlock()

	call, ok := d.inflight[key]
	if !ok {
		return
	}
	for i, w := range call.waiters {
		if w == ch {
			call.waiters = append(call.waiters[:i], call.waiters[i+1:]...)
			break
		}
	}
}
