package testsupport

import (
	"context"
	"sync"
)

// FakeOracle returns canned responses and records each request.
type FakeOracle struct {
	mu       sync.Mutex
	reply    func(request string) (string, error)
	requests []string
	// Block, when set, is waited on before replying.
	Block chan struct{}
}

// NewFakeOracle replies with text to every request.
func NewFakeOracle(text string) *FakeOracle {
	return &FakeOracle{reply: func(string) (string, error) { return text, nil }}
}

// NewFailingOracle fails every request with err.
func NewFailingOracle(err error) *FakeOracle {
	return &FakeOracle{reply: func(string) (string, error) { return "", err }}
}

// NewScriptedOracle computes the reply from the request text.
func NewScriptedOracle(fn func(request string) (string, error)) *FakeOracle {
	return &FakeOracle{reply: fn}
}

// Classify implements oracle.Oracle.
func (f *FakeOracle) Classify(ctx context.Context, request string) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, request)
	block := f.Block
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.reply(request)
}

// Calls returns how many requests were made.
func (f *FakeOracle) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

// LastRequest returns the most recent request text.
func (f *FakeOracle) LastRequest() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return ""
	}
	return f.requests[len(f.requests)-1]
}
