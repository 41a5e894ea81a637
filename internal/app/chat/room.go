/*
Package chat contains the core of the chat system: rooms and their broadcast fan-out,
the room registry (Manager), and the per-connection protocol state machine (Session).

This file defines Room, a named member set with one fan-out, and Subscription, a member's
bounded receive queue.
*/
package chat

import (
	"slices"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"roomchat/internal/pkg/errs"
	"roomchat/internal/pkg/logx"
	"roomchat/internal/pkg/naming"
)

const (
	// DefaultSubscriberBuffer is the per-subscription queue length.
	DefaultSubscriberBuffer = 32

	// MaxRoomNameLength is the maximum room name length in runes.
	MaxRoomNameLength = naming.MaxRoomNameLength
)

// ValidateRoomName checks that name can be used as a room name.
func ValidateRoomName(name string) *errs.CustomError {
	if !naming.ValidRoomName(name) {
		return errs.NewError(errs.ErrRoomNameInvalid)
	}
	return nil
}

// Subscription is one member's receive side of a room's fan-out.
// When the queue is full the oldest queued message is dropped to make room,
// so a slow reader never blocks the publisher or other members.
type Subscription struct {
	room *Room

	// member is the display name the subscription is keyed by; guarded by room.mu.
	member string

	ch        chan Message
	dropped   atomic.Uint64
	closeOnce sync.Once
}

// C returns the receive channel. It is closed when the subscription leaves its room
// or the Manager shuts down.
func (s *Subscription) C() <-chan Message {
	return s.ch
}

// Room returns the room the subscription belongs to.
func (s *Subscription) Room() *Room {
	return s.room
}

// Dropped returns how many messages were discarded for this subscriber.
func (s *Subscription) Dropped() uint64 {
	return s.dropped.Load()
}

// deliver enqueues msg, evicting the oldest queued messages while the queue is full.
// Callers hold room.publishMu, so there is a single sender per channel.
func (s *Subscription) deliver(msg Message) bool {
	droppedAny := false
	for {
		select {
		case s.ch <- msg:
			return droppedAny
		default:
		}

		select {
		case <-s.ch:
			s.dropped.Add(1)
			droppedAny = true
		default:
		}
	}
}

func (s *Subscription) close() {
	s.closeOnce.Do(func() { close(s.ch) })
}

// Room is a named group of members sharing one broadcast fan-out.
// Rooms are created and destroyed only by the Manager.
type Room struct {
	// name is the current room name; guarded by mu.
	name string

	// members maps a display name to its subscription; guarded by mu.
	members map[string]*Subscription

	// bufferSize is the queue length of new subscriptions.
	bufferSize int

	// mu protects name and members.
	mu sync.RWMutex

	// publishMu serializes Publish so every member sees one order.
	publishMu sync.Mutex

	logger zerolog.Logger
}

func newRoom(name string, bufferSize int) *Room {
	if bufferSize <= 0 {
		bufferSize = DefaultSubscriberBuffer
	}

	return &Room{
		name:       name,
		members:    make(map[string]*Subscription),
		bufferSize: bufferSize,
		logger:     logx.Component("Room").With().Str("room", name).Logger(),
	}
}

// Name returns the current room name.
func (r *Room) Name() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.name
}

// Len returns the number of members.
func (r *Room) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

// Members returns a sorted snapshot of member names.
func (r *Room) Members() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.members))
	for name := range r.members {
		names = append(names, name)
	}
	r.mu.RUnlock()

	slices.Sort(names)
	return names
}

// Publish delivers msg to every current member, including the sender.
// It never blocks on a slow member.
func (r *Room) Publish(msg Message) {
	r.publishMu.Lock()
	defer r.publishMu.Unlock()

	r.mu.RLock()
	defer r.mu.RUnlock()

	for name, sub := range r.members {
		if sub.deliver(msg) {
			r.logger.Debug().
				Str("user", name).
				Uint64("dropped_total", sub.Dropped()).
				Msg("Subscriber queue full, dropped oldest message.")
		}
	}
}

// subscribe adds userName with a fresh subscription. Caller holds r.mu.
func (r *Room) subscribe(userName string) (*Subscription, *errs.CustomError) {
	if _, exists := r.members[userName]; exists {
		return nil, errs.NewError(errs.ErrAlreadyInRoom)
	}

	sub := &Subscription{
		room:   r,
		member: userName,
		ch:     make(chan Message, r.bufferSize),
	}
	r.members[userName] = sub
	return sub, nil
}

// unsubscribe removes sub and closes it. Caller holds r.mu.
// It reports false when sub is not a current member.
func (r *Room) unsubscribe(sub *Subscription) bool {
	if current, ok := r.members[sub.member]; !ok || current != sub {
		return false
	}

	delete(r.members, sub.member)
	sub.close()
	return true
}

// closeAll removes and closes every subscription.
func (r *Room) closeAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for name, sub := range r.members {
		sub.close()
		delete(r.members, name)
	}
}
