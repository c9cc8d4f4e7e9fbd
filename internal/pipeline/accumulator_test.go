package pipeline_test

import (
	"bytes"
	"testing"

	"github.com/glizzus/opus-bridge/internal/pipeline"
)

func TestAccumulator(t *testing.T) {
	acc := pipeline.NewAccumulator(4)

	acc.Write([]byte{1, 2, 3})
	if _, ok := acc.Next(); ok {
		t.Fatal("Next returned a block from 3 bytes")
	}

	acc.Write([]byte{4, 5, 6, 7, 8, 9})
	b, ok := acc.Next()
	if !ok || !bytes.Equal(b, []byte{1, 2, 3, 4}) {
		t.Fatalf("first block = %v, %v; want [1 2 3 4], true", b, ok)
	}
	b, ok = acc.Next()
	if !ok || !bytes.Equal(b, []byte{5, 6, 7, 8}) {
		t.Fatalf("second block = %v, %v; want [5 6 7 8], true", b, ok)
	}
	if acc.Len() != 1 {
		t.Errorf("Len() = %d, want 1", acc.Len())
	}

	acc.Write([]byte{10})
	if acc.Len() != 2 {
		t.Errorf("Len() after compaction = %d, want 2", acc.Len())
	}

	tail, ok := acc.Flush()
	if !ok || !bytes.Equal(tail, []byte{9, 10, 0, 0}) {
		t.Fatalf("Flush() = %v, %v; want [9 10 0 0], true", tail, ok)
	}
	if _, ok := acc.Flush(); ok {
		t.Error("second Flush returned a block")
	}
}

func TestAccumulatorFlushEmpty(t *testing.T) {
	acc := pipeline.NewAccumulator(4)
	acc.Write([]byte{1, 2, 3, 4})
	if _, ok := acc.Next(); !ok {
		t.Fatal("Next did not return the full block")
	}
	if b, ok := acc.Flush(); ok {
		t.Errorf("Flush on empty accumulator returned %v", b)
	}
}

func TestAccumulatorBlockSurvivesNext(t *testing.T) {
	acc := pipeline.NewAccumulator(2)
	acc.Write([]byte{1, 2, 3, 4})
	first, _ := acc.Next()
	second, _ := acc.Next()
	if !bytes.Equal(first, []byte{1, 2}) || !bytes.Equal(second, []byte{3, 4}) {
		t.Errorf("blocks = %v %v, want [1 2] [3 4]", first, second)
	}
}
