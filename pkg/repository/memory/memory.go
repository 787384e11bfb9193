package memory

import (
	"time"

	"github.com/secmon-lab/deckmemo/pkg/domain/interfaces"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

// Memory keeps all records in process memory. It is intended for development and tests.
type Memory struct {
	content *contentRepository
}

var _ interfaces.Repository = &Memory{}

type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces the time source of CreatedAt and UpdatedAt
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func New(opts ...Option) *Memory {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Memory{
		content: newContentRepository(o.now),
	}
}

func (m *Memory) Content() interfaces.ContentRepository {
	return m.content
}

func (m *Memory) Close() error {
	return nil
}
