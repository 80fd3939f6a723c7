package capture

import (
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// FrameBuffer keeps the most recent frame as JPEG so that viewers of the
// preview stream never read from the camera the detection loop owns.
type FrameBuffer struct {
	mu   sync.RWMutex
	data []byte
	seq  uint64
}

// NewFrameBuffer creates an empty buffer.
func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{}
}

// PublishMat encodes frame as JPEG and stores it.
func (b *FrameBuffer) PublishMat(frame *gocv.Mat) error {
	if frame == nil || frame.Empty() {
		return ErrEmptyFrame
	}

	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	data := make([]byte, buf.Len())
	copy(data, buf.GetBytes())
	b.Publish(data)
	return nil
}

// Publish stores an already encoded JPEG image.
func (b *FrameBuffer) Publish(jpeg []byte) {
	b.mu.Lock()
	b.data = jpeg
	b.seq++
	b.mu.Unlock()
}

// Latest returns the stored image and its sequence number. The sequence is
// zero until the first Publish.
func (b *FrameBuffer) Latest() ([]byte, uint64) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.data, b.seq
}
