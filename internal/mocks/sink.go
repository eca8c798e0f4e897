package mocks

import (
	"context"

	"github.com/brettbedarf/dirshell"
	"github.com/stretchr/testify/mock"
)

// MockSink implements dirshell.Sink for testing across packages
type MockSink struct {
	mock.Mock
}

func (m *MockSink) Echo(c byte) {
	m.Called(c)
}

func (m *MockSink) Println(line string) {
	m.Called(line)
}

func (m *MockSink) Clear() {
	m.Called()
}

var _ dirshell.Sink = (*MockSink)(nil)

// MockKeySource implements dirshell.KeySource for testing across packages
type MockKeySource struct {
	mock.Mock
}

func (m *MockKeySource) Next(ctx context.Context) (dirshell.Key, error) {
	args := m.Called(ctx)

	// Handle function return types (for tests that block on ctx)
	if fn, ok := args.Get(0).(func(context.Context) dirshell.Key); ok {
		return fn(ctx), args.Error(1)
	}

	if args.Get(0) == nil {
		return dirshell.Key{}, args.Error(1)
	}
	return args.Get(0).(dirshell.Key), args.Error(1)
}

var _ dirshell.KeySource = (*MockKeySource)(nil)
