package pipeline

// Accumulator re-chunks an arbitrary byte stream into fixed-size blocks.
// Consumed bytes are tracked with a read cursor and the unread tail is moved
// to the front of the buffer on the next Write, so the buffer never grows
// beyond one block plus the largest write.
type Accumulator struct {
	buf       []byte
	off       int
	blockSize int
	flushed   bool
}

// NewAccumulator returns an empty accumulator for blocks of blockSize bytes.
func NewAccumulator(blockSize int) *Accumulator {
	return &Accumulator{
		buf:       make([]byte, 0, 2*blockSize),
		blockSize: blockSize,
	}
}

// Write appends p after any unread bytes.
func (a *Accumulator) Write(p []byte) {
	if a.off > 0 {
		n := copy(a.buf, a.buf[a.off:])
		a.buf = a.buf[:n]
		a.off = 0
	}
	a.buf = append(a.buf, p...)
}

// Len is the number of unread bytes.
func (a *Accumulator) Len() int {
	return len(a.buf) - a.off
}

// Next removes and returns the next full block. The returned slice is only
// valid until the next call to Write.
func (a *Accumulator) Next() ([]byte, bool) {
	if a.Len() < a.blockSize {
		return nil, false
	}
	block := a.buf[a.off : a.off+a.blockSize : a.off+a.blockSize]
	a.off += a.blockSize
	return block, true
}

// Flush returns the unread remainder zero-padded to one block. It returns
// false if nothing is left or if Flush was already called.
func (a *Accumulator) Flush() ([]byte, bool) {
	if a.flushed {
		return nil, false
	}
	a.flushed = true

	rest := a.Len()
	if rest == 0 {
		return nil, false
	}
	block := make([]byte, a.blockSize)
	copy(block, a.buf[a.off:])
	a.off = len(a.buf)
	return block, true
}
