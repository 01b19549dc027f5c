package feed

import (
	"container/ring"
	"context"
	"sync"

	"github.com/rileyhilliard/stripchart/internal/chart"
	"github.com/rileyhilliard/stripchart/internal/logger"
)

// DefaultReplay is how many recent frames a new client receives.
const DefaultReplay = 120

// Broadcaster caches recent messages and forwards new ones to every
// registered channel.
//
// A single mutex covers both the cache and the channel list, so a channel
// registered between two publishes gets the whole cache followed by every
// later message, with nothing missed or repeated.
type Broadcaster struct {
	mu       sync.Mutex
	buffer   *ring.Ring
	buffered int
	replay   int
	latest   *Message
	channels []chan<- Message
	dropped  map[chan<- Message]int
	log      logger.Logger
}

// NewBroadcaster keeps the last replay messages (DefaultReplay when <= 0).
func NewBroadcaster(replay int, log logger.Logger) *Broadcaster {
	if replay <= 0 {
		replay = DefaultReplay
	}
	if log == nil {
		log = logger.Noop()
	}
	return &Broadcaster{
		buffer:  ring.New(replay),
		replay:  replay,
		dropped: make(map[chan<- Message]int),
		log:     log,
	}
}

// Replay returns the size of the replay buffer. Channels passed to Register
// need at least this much capacity to receive the whole replay.
func (b *Broadcaster) Replay() int {
	return b.replay
}

// Publish caches m and sends it to every registered channel. A channel that
// is full misses the message instead of stalling the chart.
func (b *Broadcaster) Publish(m Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.buffer = b.buffer.Next()
	b.buffer.Value = m
	if b.buffered < b.replay {
		b.buffered++
	}
	b.latest = &m

	for _, c := range b.channels {
		select {
		case c <- m:
		default:
			b.dropped[c]++
			b.log.Debug("client behind, dropped tick %d (%d dropped)", m.Tick, b.dropped[c])
		}
	}
}

// Register pushes the buffered messages (oldest first) to c and then adds
// it to the live channels.
func (b *Broadcaster) Register(c chan<- Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, m := range b.orderedLocked() {
		select {
		case c <- m:
		default:
		}
	}
	b.channels = append(b.channels, c)
	b.log.Info("client registered (%d connected)", len(b.channels))
}

// Deregister stops sending to c. The caller may close c once this returns.
func (b *Broadcaster) Deregister(c chan<- Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	kept := b.channels[:0]
	for _, ch := range b.channels {
		if ch != c {
			kept = append(kept, ch)
		}
	}
	b.channels = kept
	delete(b.dropped, c)
	b.log.Info("client deregistered (%d connected)", len(b.channels))
}

// Latest returns the newest published message.
func (b *Broadcaster) Latest() (Message, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.latest == nil {
		return Message{}, false
	}
	return *b.latest, true
}

// Buffered returns the cached messages, oldest first.
func (b *Broadcaster) Buffered() []Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.orderedLocked()
}

// Clients returns the number of registered channels.
func (b *Broadcaster) Clients() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.channels)
}

func (b *Broadcaster) orderedLocked() []Message {
	out := make([]Message, 0, b.buffered)
	// b.buffer points at the newest entry; its Next is the oldest slot
	r := b.buffer.Next()
	for i := 0; i < b.replay; i++ {
		if m, ok := r.Value.(Message); ok {
			out = append(out, m)
		}
		r = r.Next()
	}
	return out
}

// Run publishes every frame from frames until ctx is done.
func (b *Broadcaster) Run(ctx context.Context, frames <-chan chart.Frame) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case f := <-frames:
			b.Publish(FromFrame(f))
		}
	}
}
