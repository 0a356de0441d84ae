package fasttranslator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

type stubCall struct {
	sourceLang string
	targetLang string
	text       string
}

// stubClient answers with the uppercased input wrapped in delimiters, or
// consumes errors from its script one call at a time.
type stubClient struct {
	mu     sync.Mutex
	calls  []stubCall
	script []error
}

func (s *stubClient) Translate(ctx context.Context, sourceLang, targetLang, text string) (string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, stubCall{sourceLang, targetLang, text})
	var err error
	if len(s.script) > 0 {
		err = s.script[0]
		s.script = s.script[1:]
	}
	s.mu.Unlock()

	if err != nil {
		return "", err
	}
	return Delimiter + strings.ToUpper(text) + Delimiter, nil
}

func (s *stubClient) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *stubClient) lastCall() (stubCall, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.calls) == 0 {
		return stubCall{}, false
	}
	return s.calls[len(s.calls)-1], true
}

// gatedClient blocks each call until released, so tests can hold a call
// in flight while they arrange the rest of the scenario.
type gatedClient struct {
	started chan string
	release chan struct{}
}

func newGatedClient() *gatedClient {
	return &gatedClient{
		started: make(chan string, 8),
		release: make(chan struct{}),
	}
}

func (g *gatedClient) Translate(ctx context.Context, sourceLang, targetLang, text string) (string, error) {
	g.started <- text
	<-g.release
	return Delimiter + strings.ToUpper(text) + Delimiter, nil
}

// rawClient returns a fixed raw response, useful for parse failures.
type rawClient struct {
	mu    sync.Mutex
	raw   string
	calls int
}

func (r *rawClient) Translate(ctx context.Context, sourceLang, targetLang, text string) (string, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	return r.raw, nil
}

func (r *rawClient) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

type stubCache struct {
	mu      sync.Mutex
	entries map[string]string
	records int
}

func newStubCache() *stubCache {
	return &stubCache{entries: make(map[string]string)}
}

func (c *stubCache) Lookup(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	translation, ok := c.entries[key]
	return translation, ok
}

func (c *stubCache) Record(key, text, translation string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = translation
	c.records++
}

func (c *stubCache) recordCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.records
}

type stubDetector struct {
	code string
}

func (d *stubDetector) Detect(text string) string { return d.code }

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.CallSpacing = 0
	return cfg
}

func TestDispatcher_Translate(t *testing.T) {
	client := &stubClient{}
	d := New(client, testConfig())
	defer d.Close()

	got, err := d.Translate(context.Background(), Request{
		SourceLang: "es",
		TargetLang: "en",
		Text:       "hola mundo",
	})
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if got != "HOLA MUNDO" {
		t.Errorf("Translate = %q, want %q", got, "HOLA MUNDO")
	}

	call, ok := client.lastCall()
	if !ok {
		t.Fatal("Expected a provider call")
	}
	if call.sourceLang != "es" || call.targetLang != "en" {
		t.Errorf("Provider saw direction %s->%s, want es->en", call.sourceLang, call.targetLang)
	}
}

func TestDispatcher_EmptyTextRejectedSynchronously(t *testing.T) {
	client := &stubClient{}
	cache := newStubCache()
	d := New(client, testConfig(), WithCache(cache))
	defer d.Close()

	for _, text := range []string{"", "   ", "\n\t"} {
		pending, err := d.Submit(Request{Text: text})
		if pending != nil {
			t.Errorf("Submit(%q) returned a pending handle", text)
		}
		var valErr *ValidationError
		if !errors.As(err, &valErr) {
			t.Errorf("Submit(%q) error = %v, want ValidationError", text, err)
		}
	}

	if n := client.callCount(); n != 0 {
		t.Errorf("Provider called %d times for rejected requests, want 0", n)
	}
	if n := cache.recordCount(); n != 0 {
		t.Errorf("Cache recorded %d times for rejected requests, want 0", n)
	}
}

func TestDispatcher_AutoTargetRejected(t *testing.T) {
	client := &stubClient{}
	d := New(client, testConfig())
	defer d.Close()

	_, err := d.Submit(Request{SourceLang: "es", TargetLang: "auto", Text: "hola"})
	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("Submit error = %v, want ValidationError", err)
	}
	if n := client.callCount(); n != 0 {
		t.Errorf("Provider called %d times, want 0", n)
	}
}

func TestDispatcher_DefaultLanguages(t *testing.T) {
	client := &stubClient{}
	cfg := testConfig()
	cfg.DefaultSourceLang = "fr"
	cfg.DefaultTargetLang = "de"
	d := New(client, cfg)
	defer d.Close()

	if _, err := d.Translate(context.Background(), Request{Text: "bonjour tout le monde"}); err != nil {
		t.Fatalf("Translate failed: %v", err)
	}

	call, _ := client.lastCall()
	if call.sourceLang != "fr" || call.targetLang != "de" {
		t.Errorf("Provider saw direction %s->%s, want fr->de", call.sourceLang, call.targetLang)
	}
}

func TestDispatcher_DetectorSwapsDirection(t *testing.T) {
	client := &stubClient{}
	d := New(client, testConfig(), WithDetector(&stubDetector{code: "en"}))
	defer d.Close()

	// The text turns out to already be in the target language, so the
	// direction flips.
	if _, err := d.Translate(context.Background(), Request{
		SourceLang: "es",
		TargetLang: "en",
		Text:       "hello there friend",
	}); err != nil {
		t.Fatalf("Translate failed: %v", err)
	}

	call, _ := client.lastCall()
	if call.sourceLang != "en" || call.targetLang != "es" {
		t.Errorf("Provider saw direction %s->%s, want en->es", call.sourceLang, call.targetLang)
	}
}

func TestDispatcher_CacheHitSkipsProvider(t *testing.T) {
	client := &stubClient{}
	cache := newStubCache()
	key := Key("es", "en", "hola")
	cache.entries[key] = "hello"

	d := New(client, testConfig(), WithCache(cache))
	defer d.Close()

	got, err := d.Translate(context.Background(), Request{
		SourceLang: "es",
		TargetLang: "en",
		Text:       "hola",
	})
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if got != "hello" {
		t.Errorf("Translate = %q, want cached %q", got, "hello")
	}
	if n := client.callCount(); n != 0 {
		t.Errorf("Provider called %d times on a cache hit, want 0", n)
	}
	// A hit still counts as a usage.
	if n := cache.recordCount(); n != 1 {
		t.Errorf("Cache recorded %d times on a hit, want 1", n)
	}
}

func TestDispatcher_CoalescesIdenticalRequests(t *testing.T) {
	client := newGatedClient()
	d := New(client, testConfig())
	defer d.Close()

	req := Request{SourceLang: "es", TargetLang: "en", Text: "hola mundo"}

	// The first submit starts the call; it blocks inside the client while
	// the rest attach to the same in-flight entry.
	pendings := make([]*Pending, 0, 5)
	for i := 0; i < 5; i++ {
		p, err := d.Submit(req)
		if err != nil {
			t.Fatalf("Submit %d failed: %v", i, err)
		}
		pendings = append(pendings, p)
	}

	<-client.started
	close(client.release)

	for i, p := range pendings {
		got, err := p.Wait(context.Background())
		if err != nil {
			t.Fatalf("Wait %d failed: %v", i, err)
		}
		if got != "HOLA MUNDO" {
			t.Errorf("Wait %d = %q, want %q", i, got, "HOLA MUNDO")
		}
	}

	// Exactly one network call served all five waiters.
	select {
	case text := <-client.started:
		t.Errorf("Unexpected second provider call for %q", text)
	default:
	}
}

func TestDispatcher_RetriesThrottlingThenCachesOnce(t *testing.T) {
	throttled := &ProviderError{Kind: KindThrottled, Message: "quota exceeded"}
	client := &stubClient{script: []error{throttled, throttled}}
	cache := newStubCache()
	d := New(client, testConfig(), WithCache(cache), WithClock(newFakeClock()))
	defer d.Close()

	got, err := d.Translate(context.Background(), Request{
		SourceLang: "es",
		TargetLang: "en",
		Text:       "buenos dias",
	})
	if err != nil {
		t.Fatalf("Translate failed after throttling: %v", err)
	}
	if got != "BUENOS DIAS" {
		t.Errorf("Translate = %q, want %q", got, "BUENOS DIAS")
	}
	if n := client.callCount(); n != 3 {
		t.Errorf("Provider called %d times, want 3 (two throttled, one success)", n)
	}
	if n := cache.recordCount(); n != 1 {
		t.Errorf("Cache recorded %d entries, want exactly 1", n)
	}
}

func TestDispatcher_ExhaustedThrottlingSurfacesRateLimit(t *testing.T) {
	throttled := &ProviderError{Kind: KindThrottled, Message: "quota exceeded"}
	client := &stubClient{script: []error{throttled, throttled, throttled}}
	cache := newStubCache()
	d := New(client, testConfig(), WithCache(cache), WithClock(newFakeClock()))
	defer d.Close()

	_, err := d.Translate(context.Background(), Request{
		SourceLang: "es",
		TargetLang: "en",
		Text:       "hola",
	})
	var rateErr *RateLimitError
	if !errors.As(err, &rateErr) {
		t.Fatalf("Translate error = %v, want RateLimitError", err)
	}
	if rateErr.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", rateErr.Attempts)
	}
	if n := cache.recordCount(); n != 0 {
		t.Errorf("Cache recorded %d entries for a failed request, want 0", n)
	}
}

func TestDispatcher_AuthFailureNotRetried(t *testing.T) {
	authErr := &ProviderError{Kind: KindAuth, Message: "invalid api key"}
	client := &stubClient{script: []error{authErr}}
	d := New(client, testConfig())
	defer d.Close()

	_, err := d.Translate(context.Background(), Request{
		SourceLang: "es",
		TargetLang: "en",
		Text:       "hola",
	})
	var provErr *ProviderError
	if !errors.As(err, &provErr) || provErr.Kind != KindAuth {
		t.Fatalf("Translate error = %v, want auth ProviderError", err)
	}
	if n := client.callCount(); n != 1 {
		t.Errorf("Provider called %d times for a fatal error, want 1", n)
	}
}

func TestDispatcher_ParseFailureNotCached(t *testing.T) {
	client := &rawClient{raw: "a response without any markers"}
	cache := newStubCache()
	d := New(client, testConfig(), WithCache(cache))
	defer d.Close()

	_, err := d.Translate(context.Background(), Request{
		SourceLang: "es",
		TargetLang: "en",
		Text:       "hola",
	})
	var transErr *TranslationError
	if !errors.As(err, &transErr) {
		t.Fatalf("Translate error = %v, want TranslationError", err)
	}
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Errorf("Expected TranslationError to wrap the ParseError, got %v", err)
	}
	if n := client.callCount(); n != 1 {
		t.Errorf("Provider called %d times for a parse failure, want 1", n)
	}
	if n := cache.recordCount(); n != 0 {
		t.Errorf("Cache recorded %d entries for a parse failure, want 0", n)
	}
}

func TestDispatcher_CancelBeforePickupSkipsCall(t *testing.T) {
	client := newGatedClient()
	cfg := testConfig()
	cfg.Workers = 1
	d := New(client, cfg)

	// Occupy the single worker so the second job stays queued.
	first, err := d.Submit(Request{SourceLang: "es", TargetLang: "en", Text: "primer trabajo en cola"})
	if err != nil {
		t.Fatalf("Submit first failed: %v", err)
	}
	<-client.started

	second, err := d.Submit(Request{SourceLang: "es", TargetLang: "en", Text: "trabajo cancelado"})
	if err != nil {
		t.Fatalf("Submit second failed: %v", err)
	}
	second.Cancel()

	close(client.release)
	if _, err := first.Wait(context.Background()); err != nil {
		t.Fatalf("Wait first failed: %v", err)
	}
	d.Close()

	// The cancelled job must have been dropped without a provider call.
	select {
	case text := <-client.started:
		t.Errorf("Provider called for cancelled request %q", text)
	default:
	}
}

func TestDispatcher_WaitHonorsContext(t *testing.T) {
	client := newGatedClient()
	d := New(client, testConfig())

	pending, err := d.Submit(Request{SourceLang: "es", TargetLang: "en", Text: "hola mundo"})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	<-client.started

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := pending.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait error = %v, want deadline exceeded", err)
	}

	close(client.release)
	d.Close()
}

func TestDispatcher_CloseResolvesQueuedWaiters(t *testing.T) {
	client := newGatedClient()
	cfg := testConfig()
	cfg.Workers = 1
	d := New(client, cfg)

	// Occupy the single worker so the second job sits in the queue.
	first, err := d.Submit(Request{SourceLang: "es", TargetLang: "en", Text: "primer trabajo ocupado"})
	if err != nil {
		t.Fatalf("Submit first failed: %v", err)
	}
	<-client.started

	second, err := d.Submit(Request{SourceLang: "es", TargetLang: "en", Text: "segundo trabajo en cola"})
	if err != nil {
		t.Fatalf("Submit second failed: %v", err)
	}

	closed := make(chan struct{})
	go func() {
		d.Close()
		close(closed)
	}()
	close(client.release)

	if _, err := first.Wait(context.Background()); err != nil {
		t.Fatalf("Wait first failed: %v", err)
	}

	// The queued waiter must resolve: either a worker drained the job
	// before stopping, or Close failed it with ErrClosed. It must never
	// hang.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err = second.Wait(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		t.Fatal("Queued waiter never resolved after Close")
	}
	if err != nil && !errors.Is(err, ErrClosed) {
		t.Fatalf("Queued waiter resolved with unexpected error: %v", err)
	}

	<-closed
}

func TestDispatcher_SubmitAfterClose(t *testing.T) {
	client := &stubClient{}
	d := New(client, testConfig())
	d.Close()
	d.Close() // idempotent

	_, err := d.Submit(Request{SourceLang: "es", TargetLang: "en", Text: "hola"})
	if !errors.Is(err, ErrClosed) {
		t.Errorf("Submit after Close = %v, want ErrClosed", err)
	}
}

func TestDispatcher_ConcurrentDistinctRequests(t *testing.T) {
	client := &stubClient{}
	d := New(client, testConfig())
	defer d.Close()

	texts := []string{
		"la casa es grande",
		"el perro corre rapido",
		"me gusta el cafe",
		"hasta luego amigo",
	}

	var wg sync.WaitGroup
	results := make([]string, len(texts))
	errs := make([]error, len(texts))
	for i, text := range texts {
		wg.Add(1)
		go func(i int, text string) {
			defer wg.Done()
			results[i], errs[i] = d.Translate(context.Background(), Request{
				SourceLang: "es",
				TargetLang: "en",
				Text:       text,
			})
		}(i, text)
	}
	wg.Wait()

	for i, text := range texts {
		if errs[i] != nil {
			t.Errorf("Translate(%q) failed: %v", text, errs[i])
			continue
		}
		if want := strings.ToUpper(text); results[i] != want {
			t.Errorf("Translate(%q) = %q, want %q", text, results[i], want)
		}
	}
	if n := client.callCount(); n != len(texts) {
		t.Errorf("Provider called %d times, want %d", n, len(texts))
	}
}
