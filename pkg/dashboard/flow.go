package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/illegalcall/codecraft/internal/models"
)

const (
	// LoginPath is where an expired session is sent.
	LoginPath = "/api/login"

	DefaultRedirectDelay = 500 * time.Millisecond
)

var ErrGenerationInProgress = errors.New("a generation is already in progress")

type FlowState int

const (
	StateIdle FlowState = iota
	StateSubmitting
	StateSucceeded
	StateFailed
)

func (s FlowState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Generator produces code for a generation form. *Client implements it.
type Generator interface {
	Generate(ctx context.Context, req models.GenerateRequest) (*models.GenerationResult, error)
}

type Notification struct {
	Title       string
	Description string
	Destructive bool
}

type Notifier interface {
	Notify(n Notification)
}

type Navigator interface {
	Navigate(path string)
}

// PreviewSurface displays a result: the preview HTML in an isolated frame and
// the code in a read-only pane.
type PreviewSurface interface {
	RenderPreview(html string)
	ShowCode(code string)
}

type nopNotifier struct{}

func (nopNotifier) Notify(Notification) {}

type nopNavigator struct{}

func (nopNavigator) Navigate(string) {}

// GenerationFlow drives one code generation form through
// idle -> submitting -> succeeded | failed.
type GenerationFlow struct {
	generator     Generator
	surface       PreviewSurface
	notifier      Notifier
	navigator     Navigator
	redirectDelay time.Duration
	afterFunc     func(time.Duration, func())

	mu      sync.Mutex
	state   FlowState
	pending bool
	result  *models.GenerationResult
	lastErr error
}

type FlowOption func(*GenerationFlow)

func WithNotifier(n Notifier) FlowOption {
	return func(f *GenerationFlow) { f.notifier = n }
}

func WithNavigator(n Navigator) FlowOption {
	return func(f *GenerationFlow) { f.navigator = n }
}

func WithRedirectDelay(d time.Duration) FlowOption {
	return func(f *GenerationFlow) { f.redirectDelay = d }
}

func NewGenerationFlow(generator Generator, surface PreviewSurface, opts ...FlowOption) *GenerationFlow {
	f := &GenerationFlow{
		generator:     generator,
		surface:       surface,
		notifier:      nopNotifier{},
		navigator:     nopNavigator{},
		redirectDelay: DefaultRedirectDelay,
		afterFunc: func(d time.Duration, fn func()) {
			time.AfterFunc(d, fn)
		},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *GenerationFlow) State() FlowState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Loading is true exactly while a Generate call is outstanding.
func (f *GenerationFlow) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pending
}

// Result returns the last successful result, or nil.
func (f *GenerationFlow) Result() *models.GenerationResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.result
}

func (f *GenerationFlow) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

// Submit validates req and, if it is complete, runs one generation. An
// incomplete form never reaches the Generator and leaves the state as it was.
func (f *GenerationFlow) Submit(ctx context.Context, req models.GenerateRequest) (*models.GenerationResult, error) {
	if err := req.Validate(); err != nil {
		f.notifier.Notify(Notification{
			Title:       "Error",
			Description: "Please fill in all required fields",
			Destructive: true,
		})
		return nil, err
	}

	f.mu.Lock()
	if f.pending {
		f.mu.Unlock()
		return nil, ErrGenerationInProgress
	}
	f.pending = true
	f.state = StateSubmitting
	f.mu.Unlock()

	result, err := f.generator.Generate(ctx, req)

	f.mu.Lock()
	f.pending = false
	if err != nil {
		f.state = StateFailed
		f.lastErr = err
		f.mu.Unlock()
		f.fail(err)
		return nil, err
	}
	f.state = StateSucceeded
	f.result = result
	f.lastErr = nil
	f.mu.Unlock()

	f.surface.RenderPreview(result.Preview)
	f.surface.ShowCode(result.Code)
	f.notifier.Notify(Notification{
		Title:       "Success",
		Description: "Code generated successfully!",
	})
	return result, nil
}

func (f *GenerationFlow) fail(err error) {
	if errors.Is(err, ErrUnauthorized) {
		f.notifier.Notify(Notification{
			Title:       "Unauthorized",
			Description: "You are logged out. Logging in again...",
			Destructive: true,
		})
		f.afterFunc(f.redirectDelay, func() {
			f.navigator.Navigate(LoginPath)
		})
		return
	}

	f.notifier.Notify(Notification{
		Title:       "Error",
		Description: err.Error(),
		Destructive: true,
	})
}
