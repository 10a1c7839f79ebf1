package notify

import (
	"log/slog"
	"sync"
)

// Notifier shows transient messages to the patient.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

type Toast struct {
	Level   Level
	Message string
}

// Flash queues toasts until the next render drains them.
type Flash struct {
	mu     sync.Mutex
	toasts []Toast
}

func NewFlash() *Flash {
	return &Flash{}
}

func (f *Flash) Success(msg string) { f.push(LevelSuccess, msg) }

func (f *Flash) Error(msg string) { f.push(LevelError, msg) }

func (f *Flash) push(level Level, msg string) {
	f.mu.Lock()
	f.toasts = append(f.toasts, Toast{Level: level, Message: msg})
	f.mu.Unlock()
}

// Drain returns queued toasts oldest first and empties the queue.
func (f *Flash) Drain() []Toast {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.toasts
	f.toasts = nil
	return out
}

// Logging writes every toast to logger before passing it on.
type Logging struct {
	Next   Notifier
	Logger *slog.Logger
}

func (l Logging) Success(msg string) {
	if l.Logger != nil {
		l.Logger.Info("notify", "kind", LevelSuccess, "message", msg)
	}
	if l.Next != nil {
		l.Next.Success(msg)
	}
}

func (l Logging) Error(msg string) {
	if l.Logger != nil {
		l.Logger.Warn("notify", "kind", LevelError, "message", msg)
	}
	if l.Next != nil {
		l.Next.Error(msg)
	}
}
