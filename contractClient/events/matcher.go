package events

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
	"github.com/rs/zerolog"

	"github.com/Rasm-P/Event-Ticket-Smart-Contract/contractClient/abi"
	cerrors "github.com/Rasm-P/Event-Ticket-Smart-Contract/contractClient/errors"
)

const (
	DefaultMaxBlockSpan       = 2000
	defaultResubscribeDelay   = time.Second
	defaultMaxResubscribeWait = 30 * time.Second
	liveBufferSize            = 128
)

// LogSource is the part of the transport the matcher needs.
type LogSource interface {
	ethereum.LogFilterer
	BlockNumber(ctx context.Context) (uint64, error)
}

// Matcher pulls and decodes the logs of a single event.
type Matcher struct {
	source           LogSource
	sig              abi.EventSignature
	maxBlockSpan     uint64
	resubscribeDelay time.Duration
	maxResubscribe   time.Duration
	logger           zerolog.Logger
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithMaxBlockSpan limits the number of blocks requested per FilterLogs call.
func WithMaxBlockSpan(span uint64) Option {
	return func(m *Matcher) {
		if span > 0 {
			m.maxBlockSpan = span
		}
	}
}

// WithResubscribeDelay sets the first and the largest wait between
// resubscription attempts.
func WithResubscribeDelay(initial, max time.Duration) Option {
	return func(m *Matcher) {
		if initial > 0 {
			m.resubscribeDelay = initial
		}
		if max >= initial {
			m.maxResubscribe = max
		}
	}
}

// NewMatcher creates a matcher for sig over source.
func NewMatcher(source LogSource, sig abi.EventSignature, logger zerolog.Logger, opts ...Option) *Matcher {
	m := &Matcher{
		source:           source,
		sig:              sig,
		maxBlockSpan:     DefaultMaxBlockSpan,
		resubscribeDelay: defaultResubscribeDelay,
		maxResubscribe:   defaultMaxResubscribeWait,
		logger: logger.With().
			Str("component", "event_matcher").
			Str("event", sig.Name).
			Logger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Signature returns the event this matcher decodes.
func (m *Matcher) Signature() abi.EventSignature {
	return m.sig
}

// Query builds the filter for this event at address.
func (m *Matcher) Query(address common.Address, r BlockRange, indexed ...[]common.Hash) ethereum.FilterQuery {
	if !m.sig.Anonymous {
		return BuildFilter(m.sig.Topic0(), address, r, indexed...)
	}
	return ethereum.FilterQuery{
		Addresses: []common.Address{address},
		Topics:    trimWildcards(indexed),
		FromBlock: new(big.Int).SetUint64(r.From),
		ToBlock:   toBlock(r.To),
	}
}

// LiveQuery builds an unbounded filter for Watch. Nothing mined before the
// subscription is replayed.
func (m *Matcher) LiveQuery(address common.Address, indexed ...[]common.Hash) ethereum.FilterQuery {
	q := m.Query(address, BlockRange{}, indexed...)
	q.FromBlock = nil
	return q
}

// Range returns a lazy iterator over the matching logs of q. Nothing is
// fetched until the first call to Next. Iterators are independent of each
// other and may be consumed concurrently.
func (m *Matcher) Range(ctx context.Context, q ethereum.FilterQuery) *Iterator {
	it := &Iterator{ctx: ctx, m: m, query: q}
	if q.FromBlock != nil {
		it.next = q.FromBlock.Uint64()
	}
	if q.ToBlock != nil {
		it.end = q.ToBlock.Uint64()
		it.resolved = true
	}
	return it
}

// Iterator walks a bounded block range page by page.
type Iterator struct {
	ctx   context.Context
	m     *Matcher
	query ethereum.FilterQuery

	next     uint64
	end      uint64
	resolved bool

	buf     []*TypedEvent
	current *TypedEvent
	err     error
	done    bool
}

// Next advances to the next event. It returns false at the end of the range
// or on error; check Err afterwards.
func (it *Iterator) Next() bool {
	for {
		if it.err != nil {
			return false
		}
		if len(it.buf) > 0 {
			it.current, it.buf = it.buf[0], it.buf[1:]
			return true
		}
		if it.done {
			return false
		}
		if err := it.fetchPage(); err != nil {
			it.err = err
			return false
		}
	}
}

func (it *Iterator) fetchPage() error {
	if !it.resolved {
		latest, err := it.m.source.BlockNumber(it.ctx)
		if err != nil {
			return cerrors.NewRemoteError("", "get latest block", err)
		}
		it.end = latest
		it.resolved = true
	}
	if it.next > it.end {
		it.done = true
		return nil
	}

	pageEnd := it.end
	if span := it.m.maxBlockSpan; it.end-it.next >= span {
		pageEnd = it.next + span - 1
	}

	q := it.query
	q.FromBlock = new(big.Int).SetUint64(it.next)
	q.ToBlock = new(big.Int).SetUint64(pageEnd)

	logs, err := it.m.source.FilterLogs(it.ctx, q)
	if err != nil {
		return cerrors.NewRemoteError("", "filter logs", err).
			WithContext("from_block", it.next).
			WithContext("to_block", pageEnd)
	}

	it.m.logger.Debug().
		Uint64("from_block", it.next).
		Uint64("to_block", pageEnd).
		Int("logs", len(logs)).
		Msg("fetched log page")

	for _, l := range logs {
		if l.Removed {
			continue
		}
		ev, err := Decode(it.m.sig, l)
		if err != nil {
			return err
		}
		it.buf = append(it.buf, ev)
	}

	it.next = pageEnd + 1
	if pageEnd == it.end {
		it.done = true
	}
	return nil
}

// Event returns the event produced by the last successful Next.
func (it *Iterator) Event() *TypedEvent {
	return it.current
}

// Err returns the error that stopped iteration, if any.
func (it *Iterator) Err() error {
	return it.err
}

// Close stops the iterator. Pending buffered events are dropped.
func (it *Iterator) Close() error {
	it.done = true
	it.buf = nil
	return nil
}

// Collect drains the iterator.
func (it *Iterator) Collect() ([]*TypedEvent, error) {
	defer it.Close()
	var out []*TypedEvent
	for it.Next() {
		out = append(out, it.Event())
	}
	return out, it.Err()
}

// cursor remembers the position of the last delivered log.
type cursor struct {
	block uint64
	index uint
	set   bool
}

func (c *cursor) after(l types.Log) bool {
	if !c.set {
		return true
	}
	return l.BlockNumber > c.block || (l.BlockNumber == c.block && l.Index > c.index)
}

func (c *cursor) advance(l types.Log) {
	c.block, c.index, c.set = l.BlockNumber, l.Index, true
}

// Watch streams decoded events of q into sink until the returned
// subscription is unsubscribed. ctx only bounds establishing the first
// subscription.
//
// If q.FromBlock is set, logs from that block on are backfilled before live
// delivery. When the transport drops the subscription, Watch resubscribes
// with backoff and backfills from the last delivered log so nothing is
// missed or delivered twice. A log that fails to decode ends the
// subscription with that error.
func (m *Matcher) Watch(ctx context.Context, q ethereum.FilterQuery, sink chan<- *TypedEvent) (event.Subscription, error) {
	var (
		pos      cursor
		backfill = q.FromBlock != nil
		from     uint64
	)
	if backfill {
		from = q.FromBlock.Uint64()
	} else {
		// Anything mined up to now is history; a later backfill starts after it.
		latest, err := m.source.BlockNumber(ctx)
		if err != nil {
			return nil, cerrors.NewRemoteError("", "get latest block", err)
		}
		from = latest + 1
	}

	live := q
	live.FromBlock, live.ToBlock = nil, nil

	logs := make(chan types.Log, liveBufferSize)
	rsub, err := m.source.SubscribeFilterLogs(ctx, live, logs)
	if err != nil {
		return nil, cerrors.NewRemoteError("", "subscribe logs", err)
	}

	return event.NewSubscription(func(quit <-chan struct{}) error {
		delay := m.resubscribeDelay
		for {
			err := m.stream(q, from, backfill, &pos, rsub, logs, sink, quit)
			if err == nil || !cerrors.IsCode(err, cerrors.ErrCodeRemote) {
				return err
			}

			m.logger.Warn().Err(err).
				Uint64("last_block", pos.block).
				Dur("retry_in", delay).
				Msg("log subscription dropped, resubscribing")

			for {
				select {
				case <-quit:
					return nil
				case <-time.After(delay):
				}
				delay = cerrors.NextDelay(delay, 2, m.maxResubscribe)

				logs = make(chan types.Log, liveBufferSize)
				subCtx, cancel := context.WithTimeout(context.Background(), m.maxResubscribe)
				rsub, err = m.source.SubscribeFilterLogs(subCtx, live, logs)
				cancel()
				if err == nil {
					break
				}
				m.logger.Warn().Err(err).Dur("retry_in", delay).Msg("resubscribe failed")
			}

			delay = m.resubscribeDelay
			backfill = true
			if pos.set {
				from = pos.block
			}
		}
	}), nil
}

// stream runs one transport subscription. It returns nil when quit closes,
// a remote error when the transport drops, and any decode error as is.
func (m *Matcher) stream(
	q ethereum.FilterQuery,
	from uint64,
	backfill bool,
	pos *cursor,
	rsub ethereum.Subscription,
	logs <-chan types.Log,
	sink chan<- *TypedEvent,
	quit <-chan struct{},
) error {
	defer rsub.Unsubscribe()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-quit:
			cancel()
		case <-ctx.Done():
		}
	}()

	emit := func(ev *TypedEvent) bool {
		select {
		case sink <- ev:
			pos.advance(ev.Log)
			return true
		case <-quit:
			return false
		}
	}

	if backfill {
		hist := q
		hist.FromBlock = new(big.Int).SetUint64(from)
		hist.ToBlock = nil
		it := m.Range(ctx, hist)
		for it.Next() {
			ev := it.Event()
			if !pos.after(ev.Log) {
				continue
			}
			if !emit(ev) {
				it.Close()
				return nil
			}
		}
		if err := it.Err(); err != nil {
			select {
			case <-quit:
				return nil
			default:
				return err
			}
		}
	}

	for {
		select {
		case <-quit:
			return nil
		case err := <-rsub.Err():
			return cerrors.NewRemoteError("", "log subscription failed", err)
		case l := <-logs:
			if l.Removed || !pos.after(l) {
				continue
			}
			ev, err := Decode(m.sig, l)
			if err != nil {
				return err
			}
			if !emit(ev) {
				return nil
			}
		}
	}
}
