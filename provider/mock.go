package provider

import (
	"context"
	"fmt"
	"sync"

	fasttranslator "github.com/futurediffusion/fast-translator"
)

// MockClient is a scriptable translate client for testing. It is safe for
// concurrent use, so dispatcher coalescing tests can count calls exactly.
type MockClient struct {
	mu           sync.Mutex
	Translations map[string]string // Source text to translation
	Script       []error           // Errors returned, one per call, before successes resume
	CallCount    int
	LastSource   string
	LastTarget   string
	LastText     string
}

// NewMockClient creates a mock with a few default translations.
func NewMockClient() *MockClient {
	return &MockClient{
		Translations: map[string]string{
			"Hola, ¿cómo estás?": "Hello, how are you?",
			"buenos días":        "good morning",
			"gracias":            "thank you",
		},
	}
}

// Translate returns the scripted error for this call, or the mock
// translation wrapped in the delimiter pair the parser expects.
func (m *MockClient) Translate(ctx context.Context, sourceLang, targetLang, text string) (string, error) {
	m.mu.Lock()
	m.CallCount++
	m.LastSource = sourceLang
	m.LastTarget = targetLang
	m.LastText = text

	var err error
	if len(m.Script) > 0 {
		err = m.Script[0]
		m.Script = m.Script[1:]
	}
	translation, known := m.Translations[text]
	m.mu.Unlock()

	if err != nil {
		return "", err
	}

	if !known {
		translation = fmt.Sprintf("[%s]", text)
	}
	return fasttranslator.Delimiter + translation + fasttranslator.Delimiter, nil
}

// Calls returns the number of Translate invocations so far.
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CallCount
}

// Reset clears the call count and scripted errors.
func (m *MockClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallCount = 0
	m.Script = nil
	m.LastSource, m.LastTarget, m.LastText = "", "", ""
}

// Verify MockClient implements Client
var _ Client = (*MockClient)(nil)
