package logging

import (
	"testing"
)

func TestBufferAdapterKeepsOrder(t *testing.T) {
	buffer := NewBufferAdapter("test")
	logger := NewMultiLogger()
	if err := logger.AddAdapter(buffer); err != nil {
		t.Fatalf("AddAdapter returned error: %v", err)
	}

	logger.Info("first")
	logger.Info("second")
	logger.Warn("third")

	lines := buffer.Lines()
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3", len(lines))
	}
	if lines[0] != "first" || lines[1] != "second" {
		t.Errorf("order not preserved: %v", lines)
	}
	if lines[2] != "[warn] third" {
		t.Errorf("warn line = %q, want prefixed", lines[2])
	}
}

func TestBufferAdapterRespectsLevel(t *testing.T) {
	buffer := NewBufferAdapter("test")
	logger := NewMultiLogger()
	logger.SetLevel(InfoLevel)
	if err := logger.AddAdapter(buffer); err != nil {
		t.Fatal(err)
	}

	logger.Debug("invisible")
	logger.Error("visible")

	lines := buffer.Lines()
	if len(lines) != 1 {
		t.Fatalf("lines = %d, want 1: %v", len(lines), lines)
	}
	if lines[0] != "[error] visible" {
		t.Errorf("line = %q", lines[0])
	}
}

func TestBufferAdapterLinesIsACopy(t *testing.T) {
	buffer := NewBufferAdapter("test")
	logger := NewMultiLogger()
	if err := logger.AddAdapter(buffer); err != nil {
		t.Fatal(err)
	}

	logger.Info("one")
	first := buffer.Lines()
	logger.Info("two")

	if len(first) != 1 {
		t.Errorf("earlier snapshot grew: %v", first)
	}
	if len(buffer.Lines()) != 2 {
		t.Errorf("buffer lines = %d, want 2", len(buffer.Lines()))
	}
}

func TestMultiLoggerWithFields(t *testing.T) {
	buffer := NewBufferAdapter("test")
	logger := NewMultiLogger()
	if err := logger.AddAdapter(buffer); err != nil {
		t.Fatal(err)
	}

	child := logger.WithField("run_id", "r-1")
	child.Info("scoped")
	logger.Info("unscoped")

	if len(buffer.Lines()) != 2 {
		t.Errorf("both loggers should share the adapter, lines = %v", buffer.Lines())
	}
}
