// Package pipeline runs one conversion stage per channel and queues each
// channel's output until the caller has room for it.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/tphakala/go-soxr/internal/engine"
)

// ErrFixedRatio is returned by SetRatio when the stages cannot change ratio.
var ErrFixedRatio = errors.New("stage ratio is fixed")

// Channel pairs a stage with the FIFO its output drains into.
type Channel struct {
	Stage engine.Stage
	FIFO  *RingBuffer
}

// Bank is the per-channel state of one conversion.
type Bank struct {
	channels []Channel
	threads  int
}

// NewBank builds n channels. build is called once; the other channels are
// clones sharing its filter tables. threads bounds how many channels are
// converted concurrently; values below 2 convert in the calling goroutine.
func NewBank(n, threads int, build func() (engine.Stage, error)) (*Bank, error) {
	b := &Bank{
		channels: make([]Channel, n),
		threads:  max(1, min(threads, n)),
	}
	if n == 0 {
		return b, nil
	}
	first, err := build()
	if err != nil {
		return nil, fmt.Errorf("build stage: %w", err)
	}
	for ch := range b.channels {
		stage := first
		if ch > 0 {
			stage = first.Clone()
		}
		b.channels[ch] = Channel{Stage: stage, FIFO: NewRingBuffer(0)}
	}
	return b, nil
}

// NumChannels returns the channel count.
func (b *Bank) NumChannels() int {
	return len(b.channels)
}

// Threads returns the effective worker bound.
func (b *Bank) Threads() int {
	return b.threads
}

// Name returns the stage identifier shared by every channel.
func (b *Bank) Name() string {
	if len(b.channels) == 0 {
		return ""
	}
	return b.channels[0].Stage.Name()
}

// Feed converts inputs[ch] on every channel and queues the results.
func (b *Bank) Feed(ctx context.Context, inputs [][]float64) error {
	if len(inputs) != len(b.channels) {
		return fmt.Errorf("expected %d channels, got %d", len(b.channels), len(inputs))
	}
	return b.each(ctx, func(c Channel, ch int) error {
		out, err := c.Stage.Process(inputs[ch])
		if err != nil {
			return err
		}
		c.FIFO.Write(out)
		return nil
	})
}

// Flush drains every stage's tail into the FIFOs.
func (b *Bank) Flush(ctx context.Context) error {
	return b.each(ctx, func(c Channel, _ int) error {
		out, err := c.Stage.Flush()
		if err != nil {
			return err
		}
		c.FIFO.Write(out)
		return nil
	})
}

func (b *Bank) each(ctx context.Context, fn func(c Channel, ch int) error) error {
	if b.threads < 2 {
		for ch, c := range b.channels {
			if err := fn(c, ch); err != nil {
				return fmt.Errorf("channel %d: %w", ch, err)
			}
		}
		return nil
	}

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(b.threads)
	for ch, c := range b.channels {
		g.Go(func() error {
			if err := fn(c, ch); err != nil {
				return fmt.Errorf("channel %d: %w", ch, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Pending returns the number of frames queued on every channel.
func (b *Bank) Pending() int {
	if len(b.channels) == 0 {
		return 0
	}
	n := b.channels[0].FIFO.Available()
	for _, c := range b.channels[1:] {
		n = min(n, c.FIFO.Available())
	}
	return n
}

// Read moves up to len(dst) queued samples of channel ch into dst.
func (b *Bank) Read(ch int, dst []float64) int {
	return b.channels[ch].FIFO.ReadInto(dst)
}

// Delay returns the frames owed for received input: stage history plus
// queued output.
func (b *Bank) Delay() float64 {
	if len(b.channels) == 0 {
		return 0
	}
	c := b.channels[0]
	return c.Stage.Delay() + float64(c.FIFO.Available())
}

// Reset returns every stage and FIFO to its initial state.
func (b *Bank) Reset() {
	for _, c := range b.channels {
		c.Stage.Reset()
		c.FIFO.Clear()
	}
}

// Restart resets every stage for a new stream but keeps queued output, so
// the tail of the previous stream is still delivered first.
func (b *Bank) Restart() {
	for _, c := range b.channels {
		c.Stage.Reset()
	}
}

// SetRatio changes the ratio of every stage. It fails without touching any
// stage when the stages have a fixed ratio.
func (b *Bank) SetRatio(ratio float64, slewLen int) error {
	setters := make([]engine.RatioSetter, 0, len(b.channels))
	for _, c := range b.channels {
		rs, ok := c.Stage.(engine.RatioSetter)
		if !ok {
			return ErrFixedRatio
		}
		setters = append(setters, rs)
	}
	for _, rs := range setters {
		if err := rs.SetRatio(ratio, slewLen); err != nil {
			return err
		}
	}
	return nil
}
