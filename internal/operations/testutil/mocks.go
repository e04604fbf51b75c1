package testutil

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"fxcpi/internal/operations"
)

// MockStage is a configurable mock implementation of the step interface
type MockStage struct {
	IDValue           string
	NameValue         string
	DependenciesValue []string

	// Configurable functions
	ExecuteFunc  func(ctx context.Context, state *operations.OperationState) error
	ValidateFunc func(state *operations.OperationState) error

	// Call tracking
	mu            sync.Mutex
	ExecuteCalls  int
	ExecuteTimes  []time.Time
	ValidateCalls int
}

// ID returns the step ID
func (m *MockStage) ID() string {
	return m.IDValue
}

// Name returns the step name
func (m *MockStage) Name() string {
	return m.NameValue
}

// GetDependencies returns the step dependencies
func (m *MockStage) GetDependencies() []string {
	if m.DependenciesValue == nil {
		return []string{}
	}
	return m.DependenciesValue
}

// Execute runs the mock execute function
func (m *MockStage) Execute(ctx context.Context, state *operations.OperationState) error {
	m.mu.Lock()
	m.ExecuteCalls++
	m.ExecuteTimes = append(m.ExecuteTimes, time.Now())
	m.mu.Unlock()

	if m.ExecuteFunc != nil {
		return m.ExecuteFunc(ctx, state)
	}
	return nil
}

// Validate runs the mock validate function
func (m *MockStage) Validate(state *operations.OperationState) error {
	m.mu.Lock()
	m.ValidateCalls++
	m.mu.Unlock()

	if m.ValidateFunc != nil {
		return m.ValidateFunc(state)
	}
	return nil
}

// GetExecuteCalls returns the number of Execute calls
func (m *MockStage) GetExecuteCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ExecuteCalls
}

// GetValidateCalls returns the number of Validate calls
func (m *MockStage) GetValidateCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ValidateCalls
}

// MockSlogHandler captures slog messages for testing
type MockSlogHandler struct {
	mu      *sync.Mutex
	records *[]MockLogRecord
	attrs   []slog.Attr
}

// MockLogRecord represents a captured slog record
type MockLogRecord struct {
	Level   slog.Level
	Message string
	Attrs   map[string]interface{}
	Time    time.Time
}

// NewMockSlogHandler creates a new mock slog handler
func NewMockSlogHandler() *MockSlogHandler {
	return &MockSlogHandler{
		mu:      &sync.Mutex{},
		records: &[]MockLogRecord{},
	}
}

// Handle implements slog.Handler interface
func (h *MockSlogHandler) Handle(ctx context.Context, record slog.Record) error {
	attrs := make(map[string]interface{})
	for _, a := range h.attrs {
		attrs[a.Key] = a.Value.Any()
	}
	record.Attrs(func(attr slog.Attr) bool {
		attrs[attr.Key] = attr.Value.Any()
		return true
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	*h.records = append(*h.records, MockLogRecord{
		Level:   record.Level,
		Message: record.Message,
		Attrs:   attrs,
		Time:    record.Time,
	})
	return nil
}

// Enabled implements slog.Handler interface
func (h *MockSlogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return true
}

// WithAttrs returns a handler sharing the same record store
func (h *MockSlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &MockSlogHandler{mu: h.mu, records: h.records, attrs: merged}
}

// WithGroup implements slog.Handler interface. Groups are flattened.
func (h *MockSlogHandler) WithGroup(name string) slog.Handler {
	return h
}

// GetRecords returns all captured log records
func (h *MockSlogHandler) GetRecords() []MockLogRecord {
	h.mu.Lock()
	defer h.mu.Unlock()

	records := make([]MockLogRecord, len(*h.records))
	copy(records, *h.records)
	return records
}

// GetRecordsByLevel returns records filtered by level
func (h *MockSlogHandler) GetRecordsByLevel(level slog.Level) []MockLogRecord {
	var filtered []MockLogRecord
	for _, record := range h.GetRecords() {
		if record.Level == level {
			filtered = append(filtered, record)
		}
	}
	return filtered
}

// GetRecordsByMessage returns the records with the given message
func (h *MockSlogHandler) GetRecordsByMessage(message string) []MockLogRecord {
	var filtered []MockLogRecord
	for _, record := range h.GetRecords() {
		if record.Message == message {
			filtered = append(filtered, record)
		}
	}
	return filtered
}

// HasMessage checks if any record carries the given message
func (h *MockSlogHandler) HasMessage(message string) bool {
	return len(h.GetRecordsByMessage(message)) > 0
}

// HasAttr checks if any record contains the given attribute
func (h *MockSlogHandler) HasAttr(key string, value interface{}) bool {
	for _, record := range h.GetRecords() {
		if attrValue, exists := record.Attrs[key]; exists && attrValue == value {
			return true
		}
	}
	return false
}

// Clear removes all captured records
func (h *MockSlogHandler) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	*h.records = nil
}

// CreateTestSlogLogger creates a slog.Logger with MockSlogHandler for testing
func CreateTestSlogLogger() (*slog.Logger, *MockSlogHandler) {
	handler := NewMockSlogHandler()
	return slog.New(handler), handler
}
