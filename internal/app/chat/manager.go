/*
Package chat contains the core of the chat system: rooms and their broadcast fan-out,
the room registry (Manager), and the per-connection protocol state machine (Session).

This file defines the Manager struct, the registry of all live rooms. Rooms are created on
first join and removed the moment their last member leaves.
*/
package chat

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"roomchat/internal/configs"
	"roomchat/internal/pkg/errs"
	"roomchat/internal/pkg/logx"
)

// RoomInfo is a point-in-time view of one room.
type RoomInfo struct {
	Name    string `json:"name"`
	Members int    `json:"members"`
}

// Manager coordinates all live rooms.
//
// Lock order is user.Registry before Manager.mu before Room.mu. A room is only removed from the map while
// Manager.mu is write-locked, so holding the read lock pins every room in the map.
type Manager struct {
	// rooms maps a room name to its Room.
	rooms map[string]*Room

	// config holds the application's read-only configuration settings.
	config *configs.AppConfig

	// mu protects rooms and closed.
	mu sync.RWMutex

	// closed is set once Shutdown starts; no joins or sessions are accepted afterwards.
	closed bool

	// sessions tracks running Session goroutines for Shutdown.
	sessions sync.WaitGroup

	// structured logger with Manager context.
	logger zerolog.Logger
}

// NewManager constructs and returns a new Manager instance.
func NewManager(cfg *configs.AppConfig) *Manager {
	return &Manager{
		rooms:  make(map[string]*Room),
		config: cfg,
		logger: logx.Component("Manager"),
	}
}

// Config returns the configuration the Manager was built with.
func (m *Manager) Config() *configs.AppConfig {
	return m.config
}

// Join adds userName to roomName, creating the room if needed, and returns the new
// subscription and whether the room was created by this call.
func (m *Manager) Join(roomName, userName string) (*Subscription, bool, *errs.CustomError) {
	if customErr := ValidateRoomName(roomName); customErr != nil {
		return nil, false, customErr
	}

	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return nil, false, errs.NewError(errs.ErrServerClosing)
	}
	if room, ok := m.rooms[roomName]; ok {
		room.mu.Lock()
		sub, customErr := room.subscribe(userName)
		room.mu.Unlock()
		m.mu.RUnlock()
		return sub, false, customErr
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, false, errs.NewError(errs.ErrServerClosing)
	}

	room, exists := m.rooms[roomName]
	if !exists {
		room = newRoom(roomName, m.config.SubscriberBuffer)
		m.rooms[roomName] = room
	}

	room.mu.Lock()
	sub, customErr := room.subscribe(userName)
	room.mu.Unlock()

	if customErr != nil {
		return nil, false, customErr
	}

	if !exists {
		m.logger.Info().Str("room", roomName).Str("user", userName).Msg("Room created.")
	}
	return sub, !exists, nil
}

// LeaveSubscription removes sub from its room and closes it. The room is removed when
// sub was its last member. It reports whether the room still exists afterwards and is a
// no-op on a subscription that already left.
func (m *Manager) LeaveSubscription(sub *Subscription) bool {
	if sub == nil {
		return false
	}
	room := sub.room

	m.mu.RLock()
	if m.rooms[room.Name()] == room {
		room.mu.Lock()
		if len(room.members) > 1 {
			room.unsubscribe(sub)
			room.mu.Unlock()
			m.mu.RUnlock()
			return true
		}
		room.mu.Unlock()
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	room.mu.Lock()
	defer room.mu.Unlock()

	room.unsubscribe(sub)

	if m.rooms[room.name] != room {
		sub.close()
		return false
	}

	if len(room.members) > 0 {
		return true
	}

	delete(m.rooms, room.name)
	m.logger.Info().Str("room", room.name).Msg("Room removed, last member left.")
	return false
}

// Leave removes userName from roomName. It reports whether the room still exists afterwards.
func (m *Manager) Leave(roomName, userName string) bool {
	m.mu.RLock()
	room, ok := m.rooms[roomName]
	var sub *Subscription
	if ok {
		room.mu.RLock()
		sub = room.members[userName]
		room.mu.RUnlock()
	}
	m.mu.RUnlock()

	if !ok {
		return false
	}
	if sub == nil {
		return true
	}
	return m.LeaveSubscription(sub)
}

// RenameRoom moves the room registered as oldName to newName. Members and their
// subscriptions carry over unchanged.
func (m *Manager) RenameRoom(oldName, newName string) *errs.CustomError {
	if customErr := ValidateRoomName(newName); customErr != nil {
		return customErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	room, ok := m.rooms[oldName]
	if !ok {
		return errs.NewError(errs.ErrRoomNotFound)
	}

	if oldName == newName {
		return nil
	}

	if _, taken := m.rooms[newName]; taken {
		return errs.NewError(errs.ErrRoomAlreadyExists)
	}

	room.mu.Lock()
	room.name = newName
	room.logger = logx.Component("Room").With().Str("room", newName).Logger()
	room.mu.Unlock()

	delete(m.rooms, oldName)
	m.rooms[newName] = room

	m.logger.Info().Str("old_room", oldName).Str("new_room", newName).Msg("Room renamed.")
	return nil
}

// RenameMember re-keys sub inside its room under newName. Sessions call it from the commit
// step of user.Registry.Rename so the old display name is not released before the re-key.
func (m *Manager) RenameMember(sub *Subscription, newName string) *errs.CustomError {
	m.mu.RLock()
	defer m.mu.RUnlock()

	room := sub.room
	room.mu.Lock()
	defer room.mu.Unlock()

	if room.members[sub.member] != sub {
		return errs.NewError(errs.ErrInternalState, errors.New("subscription is not a member of its room"))
	}

	if sub.member == newName {
		return nil
	}

	if _, taken := room.members[newName]; taken {
		return errs.NewError(errs.ErrNameInUse)
	}

	delete(room.members, sub.member)
	sub.member = newName
	room.members[newName] = sub
	return nil
}

// Room retrieves a room by name, or nil.
func (m *Manager) Room(name string) *Room {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.rooms[name]
}

// Members returns the sorted member names of roomName.
func (m *Manager) Members(roomName string) ([]string, *errs.CustomError) {
	room := m.Room(roomName)
	if room == nil {
		return nil, errs.NewError(errs.ErrRoomNotFound)
	}
	return room.Members(), nil
}

// Len returns the number of live rooms.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.rooms)
}

// List returns every room with its member count, busiest first, ties by name.
func (m *Manager) List() []RoomInfo {
	m.mu.RLock()
	infos := make([]RoomInfo, 0, len(m.rooms))
	for name, room := range m.rooms {
		infos = append(infos, RoomInfo{Name: name, Members: room.Len()})
	}
	m.mu.RUnlock()

	slices.SortFunc(infos, func(a, b RoomInfo) int {
		if c := cmp.Compare(b.Members, a.Members); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return infos
}

// beginSession registers a running session. It fails once Shutdown has started.
func (m *Manager) beginSession() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return false
	}
	m.sessions.Add(1)
	return true
}

func (m *Manager) endSession() {
	m.sessions.Done()
}

// Shutdown stops accepting joins, closes every subscription so their sessions exit,
// and waits for running sessions until ctx is done.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.logger.Info().Msg("Shutting down Manager...")

	m.mu.Lock()
	m.closed = true
	for _, room := range m.rooms {
		room.closeAll()
	}
	clear(m.rooms)
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		m.sessions.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.logger.Info().Msg("Manager shutdown complete.")
		return nil
	case <-ctx.Done():
		m.logger.Warn().Err(ctx.Err()).Msg("Manager shutdown timed out waiting for sessions.")
		return ctx.Err()
	}
}
