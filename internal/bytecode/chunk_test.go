package bytecode

import (
	"strings"
	"testing"
)

func TestWriteTracksLinesInParallel(t *testing.T) {
	c := New()
	c.WriteOp(OpNil, 1)
	c.WriteOp(OpTrue, 1)
	c.WriteOp(OpReturn, 2)

	if len(c.Code) != len(c.Lines) {
		t.Fatalf("code/lines length mismatch: %d vs %d", len(c.Code), len(c.Lines))
	}
	if c.Lines[2] != 2 {
		t.Errorf("expected third instruction on line 2, got %d", c.Lines[2])
	}
}

func TestAddConstantIndexesAndCaps(t *testing.T) {
	c := New()
	idx, err := c.AddConstant(1.0)
	if err != nil || idx != 0 {
		t.Fatalf("first constant: idx=%d err=%v", idx, err)
	}

	for i := 0; i < MaxConstants-1; i++ {
		if _, err := c.AddConstant(float64(i)); err != nil {
			t.Fatalf("unexpected error filling constant pool: %v", err)
		}
	}
	if _, err := c.AddConstant(0); err != ErrTooManyConstants {
		t.Fatalf("expected ErrTooManyConstants once the pool is full, got %v", err)
	}
}

func TestDisassembleInstruction(t *testing.T) {
	c := New()
	idx, _ := c.AddConstant(3.0)
	c.WriteOp(OpConstant, 1)
	c.Write(byte(idx), 1)
	c.WriteOp(OpReturn, 1)

	out := DisassembleChunk(c, "test chunk")
	if !strings.Contains(out, "OP_CONSTANT") {
		t.Errorf("expected disassembly to mention OP_CONSTANT, got:\n%s", out)
	}
	if !strings.Contains(out, "OP_RETURN") {
		t.Errorf("expected disassembly to mention OP_RETURN, got:\n%s", out)
	}
}

func TestDisassembleJumpShowsTarget(t *testing.T) {
	c := New()
	c.WriteOp(OpJump, 1)
	c.Write(0, 1)
	c.Write(0, 1)
	c.WriteOp(OpReturn, 1)

	out := DisassembleChunk(c, "jump")
	if !strings.Contains(out, "OP_JUMP") || !strings.Contains(out, "->") {
		t.Errorf("expected jump disassembly to show a target, got:\n%s", out)
	}
}
