/*
Package chat contains the core of the chat system: rooms and their broadcast fan-out,
the room registry (Manager), and the per-connection protocol state machine (Session).

This file defines the Session struct, which drives one WebSocket connection through
Connecting, Active, Closing and Closed. Its goroutine is the connection's only writer of
data frames; a helper goroutine reads frames and hands them over on a channel.
*/
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"roomchat/internal/app/command"
	"roomchat/internal/app/user"
	"roomchat/internal/configs"
	"roomchat/internal/pkg/errs"
	"roomchat/internal/pkg/logx"
	"roomchat/internal/pkg/randx"
)

// State is the lifecycle phase of a Session.
type State int32

const (
	StateConnecting State = iota
	StateActive
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateActive:
		return "active"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Session is one client connection.
type Session struct {
	// id identifies the session in logs.
	id string

	// underlying WebSocket connection object.
	conn *websocket.Conn

	manager *Manager
	names   *user.Registry
	config  *configs.AppConfig

	// envelope is the encoding used for room broadcasts.
	envelope EnvelopeMode

	// name is the held display name; owned by the Run goroutine.
	name string

	// sub is the membership in the current room; owned by the Run goroutine.
	sub *Subscription

	state atomic.Int32

	// limiter throttles inbound frames.
	limiter *rate.Limiter

	// inbound carries text frames from readLoop.
	inbound chan string

	// readErr receives the error that ended readLoop.
	readErr chan error

	// done is closed when the session starts closing and stops readLoop.
	done chan struct{}

	closeOnce sync.Once

	// structured logger with session context.
	logger zerolog.Logger
}

// NewSession constructs a Session for an upgraded connection.
func NewSession(conn *websocket.Conn, manager *Manager, names *user.Registry) *Session {
	cfg := manager.Config()
	id := randx.SessionID()

	envelope, err := ParseEnvelopeMode(cfg.Envelope)
	if err != nil {
		envelope = EnvelopeJSON
	}

	limit := rate.Inf
	if cfg.MessageRate > 0 {
		limit = rate.Limit(cfg.MessageRate)
	}

	return &Session{
		id:       id,
		conn:     conn,
		manager:  manager,
		names:    names,
		config:   cfg,
		envelope: envelope,
		limiter:  rate.NewLimiter(limit, max(cfg.MessageBurst, 1)),
		inbound:  make(chan string),
		readErr:  make(chan error, 1),
		done:     make(chan struct{}),
		logger:   logx.Component("Session").With().Str("session_id", id).Logger(),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// State returns the current lifecycle phase.
func (s *Session) State() State {
	return State(s.state.Load())
}

// Run drives the session until the client leaves, the connection fails, ctx is cancelled
// or the Manager shuts down. The connection is always closed when Run returns. A nil
// error means the session ended normally.
func (s *Session) Run(ctx context.Context) (err error) {
	if !s.manager.beginSession() {
		s.setState(StateClosing)
		s.writeClose(websocket.CloseTryAgainLater, errs.NewError(errs.ErrServerClosing).Message)
		s.closeConn()
		s.setState(StateClosed)
		return errs.NewError(errs.ErrServerClosing)
	}
	defer s.manager.endSession()
	defer s.close()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Interface("panic", r).Msg("Recovered from panic in session.")
			err = errs.NewError(errs.ErrInternalState, fmt.Errorf("session panic: %v", r))
		}
	}()

	if customErr := s.connect(); customErr != nil {
		return customErr
	}

	s.setState(StateActive)
	go s.readLoop()

	return s.loop(ctx)
}

// connect acquires a display name, joins the default room and greets the client.
func (s *Session) connect() *errs.CustomError {
	name, customErr := s.names.Acquire("")
	if customErr != nil {
		s.logger.Error().Err(customErr).Msg("Failed to acquire a display name.")
		return customErr
	}
	s.name = name
	s.logger = s.logger.With().Str("user", name).Logger()

	sub, _, customErr := s.manager.Join(s.config.DefaultRoom, name)
	if customErr != nil {
		s.logger.Error().Err(customErr).Str("room", s.config.DefaultRoom).Msg("Failed to join default room.")
		return customErr
	}
	s.sub = sub

	s.logger.Info().Str("room", s.config.DefaultRoom).Msg("Session connected.")

	sub.Room().Publish(NewMessage(fmt.Sprintf("%s has joined the chat.", name)))

	if err := s.reply(command.HelpText); err != nil {
		return errs.NewError(errs.ErrTransport)
	}
	return nil
}

// readLoop reads frames until the connection fails or the session closes.
// Binary frames are ignored.
func (s *Session) readLoop() {
	s.conn.SetReadLimit(s.config.MaxMessageBytes)

	if err := s.conn.SetReadDeadline(time.Now().Add(s.config.PongWait)); err != nil {
		s.readErr <- err
		return
	}

	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(s.config.PongWait))
	})

	for {
		messageType, data, err := s.conn.ReadMessage()
		if err != nil {
			s.readErr <- err
			return
		}

		if messageType != websocket.TextMessage {
			continue
		}

		select {
		case s.inbound <- string(data):
		case <-s.done:
			return
		}
	}
}

// loop is the Active phase. It returns nil for a normal end of session.
func (s *Session) loop(ctx context.Context) error {
	ticker := time.NewTicker(s.config.HeartbeatInterval)
	defer ticker.Stop()

	var idle <-chan time.Time
	var idleTimer *time.Timer
	if s.config.IdleTimeout > 0 {
		idleTimer = time.NewTimer(s.config.IdleTimeout)
		defer idleTimer.Stop()
		idle = idleTimer.C
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Session context cancelled.")
			return nil

		case err := <-s.readErr:
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				s.logger.Info().Msg("Client closed the connection.")
				return nil
			}
			s.logger.Info().Err(err).Msg("Error reading from client.")
			return errs.NewError(errs.ErrTransport)

		case line := <-s.inbound:
			if idleTimer != nil {
				idleTimer.Reset(s.config.IdleTimeout)
			}

			if !s.limiter.Allow() {
				if err := s.replyError(errs.NewError(errs.ErrRateLimitExceeded)); err != nil {
					return err
				}
				continue
			}

			quit, err := s.handleLine(line)
			if err != nil {
				return err
			}
			if quit {
				s.logger.Info().Msg("Client quit.")
				return nil
			}

		case msg, ok := <-s.sub.C():
			if !ok {
				s.logger.Info().Msg("Subscription closed by server.")
				return errs.NewError(errs.ErrServerClosing)
			}
			if err := s.writeBroadcast(msg); err != nil {
				return err
			}

		case <-ticker.C:
			deadline := time.Now().Add(s.config.WriteWait)
			if err := s.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				s.logger.Info().Err(err).Msg("Error writing ping.")
				return errs.NewError(errs.ErrTransport)
			}

		case <-idle:
			s.logger.Info().Dur("idle_timeout", s.config.IdleTimeout).Msg("Session idle, closing.")
			return nil
		}
	}
}

// handleLine applies one inbound line. It reports whether the client asked to quit; a
// non-nil error ends the session.
func (s *Session) handleLine(line string) (bool, *errs.CustomError) {
	var customErr *errs.CustomError

	switch cmd := command.Parse(line).(type) {
	case command.Chat:
		if cmd.Text == "" {
			return false, nil
		}
		s.sub.Room().Publish(NewMessage(fmt.Sprintf("%s: %s", s.name, cmd.Text)))

	case command.Name:
		customErr = s.handleName(cmd.Name)

	case command.Join:
		customErr = s.handleJoin(cmd.Room)

	case command.RenameRoom:
		customErr = s.handleRenameRoom(cmd.Name)

	case command.Users:
		customErr = s.replyText("Users in current room: " + formatNames(s.sub.Room().Members()))

	case command.AllUsers:
		customErr = s.replyText("All users: " + formatNames(s.names.List()))

	case command.Rooms:
		customErr = s.replyText("Current rooms: " + formatRooms(s.manager.List()))

	case command.Help:
		customErr = s.replyText(command.HelpText)

	case command.Quit:
		return true, nil

	case command.Unrecognized:
		if customErr = s.replyError(errs.NewError(errs.ErrUnknownCommand, cmd.Name)); customErr == nil {
			customErr = s.replyText(command.HelpText)
		}

	case command.Malformed:
		customErr = s.replyError(errs.NewError(errs.ErrMalformedCommand, cmd.Usage))
	}

	if customErr == nil {
		return false, nil
	}

	if customErr.Fatal() {
		return false, customErr
	}

	return false, s.replyError(customErr)
}

// handleName renames the session. An empty name asks for a generated one.
func (s *Session) handleName(newName string) *errs.CustomError {
	oldName := s.name

	if newName == oldName {
		return s.replyText(fmt.Sprintf("You are already %s.", oldName))
	}

	var customErr *errs.CustomError
	if newName == "" {
		newName, customErr = s.renameGenerated()
	} else {
		customErr = s.rename(newName)
	}
	if customErr != nil {
		return customErr
	}

	s.logger = s.logger.With().Str("user", newName).Logger()
	s.logger.Info().Str("old_name", oldName).Msg("User renamed.")

	room := s.sub.Room()
	room.Publish(NewMessage(fmt.Sprintf("%s is now %s", oldName, newName)))
	room.Publish(NewMessage("Current names in room: " + formatNames(room.Members())))
	return nil
}

// rename swaps the held name for newName. The room entry is re-keyed inside the registry's
// rename, so the old name stays held until the room no longer lists it.
func (s *Session) rename(newName string) *errs.CustomError {
	customErr := s.names.Rename(s.name, newName, func() *errs.CustomError {
		return s.manager.RenameMember(s.sub, newName)
	})
	if customErr != nil {
		return customErr
	}

	s.name = newName
	return nil
}

// renameGenerated swaps the held name for a fresh generated one.
func (s *Session) renameGenerated() (string, *errs.CustomError) {
	for {
		candidate, customErr := s.names.Generate()
		if customErr != nil {
			return "", customErr
		}

		customErr = s.rename(candidate)
		if customErr == nil {
			return candidate, nil
		}
		if customErr.Code != errs.ErrNameInUse {
			return "", customErr
		}
	}
}

// handleJoin moves the session from its current room to roomName.
func (s *Session) handleJoin(roomName string) *errs.CustomError {
	oldRoom := s.sub.Room()
	oldName := oldRoom.Name()

	if roomName == oldName {
		return errs.NewError(errs.ErrAlreadyInRoom)
	}

	sub, created, customErr := s.manager.Join(roomName, s.name)
	if customErr != nil {
		return customErr
	}

	oldRoom.Publish(NewMessage(fmt.Sprintf("%s has left %s.", s.name, oldName)))
	s.manager.LeaveSubscription(s.sub)
	s.sub = sub

	s.logger.Info().
		Str("old_room", oldName).
		Str("room", roomName).
		Bool("created", created).
		Msg("User changed rooms.")

	sub.Room().Publish(NewMessage(fmt.Sprintf("%s has joined %s.", s.name, roomName)))
	return nil
}

// handleRenameRoom renames the current room and announces it to its members.
func (s *Session) handleRenameRoom(newName string) *errs.CustomError {
	room := s.sub.Room()
	oldName := room.Name()

	if customErr := s.manager.RenameRoom(oldName, newName); customErr != nil {
		return customErr
	}

	if oldName != newName {
		room.Publish(NewMessage(fmt.Sprintf("Room %s has been renamed to %s.", oldName, newName)))
	}
	return nil
}

// writeBroadcast encodes a room message with the configured envelope and writes it.
func (s *Session) writeBroadcast(msg Message) *errs.CustomError {
	data, err := msg.Encode(s.envelope)
	if err != nil {
		return errs.NewError(errs.ErrInternalState, err)
	}

	if err := s.write(data); err != nil {
		return errs.NewError(errs.ErrTransport)
	}
	return nil
}

// replyText writes a local reply to this client only.
func (s *Session) replyText(text string) *errs.CustomError {
	if err := s.reply(text); err != nil {
		return errs.NewError(errs.ErrTransport)
	}
	return nil
}

// replyError sends a recoverable error's message to this client only.
func (s *Session) replyError(customErr *errs.CustomError) *errs.CustomError {
	return s.replyText(customErr.Message)
}

func (s *Session) reply(text string) error {
	return s.write([]byte(text))
}

func (s *Session) write(data []byte) error {
	if err := s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteWait)); err != nil {
		s.logger.Error().Err(err).Msg("Failed to set write deadline")
		return err
	}

	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		s.logger.Info().Err(err).Msg("Error writing message")
		return err
	}
	return nil
}

// close runs the Closing phase exactly once: announce the departure, leave the room,
// release the name, send a close frame and close the socket.
func (s *Session) close() {
	s.closeOnce.Do(func() {
		s.setState(StateClosing)
		close(s.done)

		if s.sub != nil {
			s.sub.Room().Publish(NewMessage(fmt.Sprintf("%s has left the chat.", s.name)))
			s.manager.LeaveSubscription(s.sub)
		}

		if s.name != "" {
			s.names.Release(s.name)
		}

		s.writeClose(websocket.CloseNormalClosure, "")
		s.closeConn()

		s.setState(StateClosed)
		s.logger.Info().Msg("Session closed.")
	})
}

func (s *Session) writeClose(code int, text string) {
	deadline := time.Now().Add(s.config.WriteWait)
	err := s.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), deadline)
	if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
		s.logger.Debug().Err(err).Msg("Failed to send close frame.")
	}
}

func (s *Session) closeConn() {
	if err := s.conn.Close(); err != nil {
		s.logger.Debug().Err(err).Msg("Connection close error")
	}
}

func (s *Session) setState(state State) {
	s.state.Store(int32(state))
}

// formatNames renders names as "[a, b]".
func formatNames(names []string) string {
	return "[" + strings.Join(names, ", ") + "]"
}

// formatRooms renders rooms as "a (2), b (1)".
func formatRooms(rooms []RoomInfo) string {
	parts := make([]string, len(rooms))
	for i, room := range rooms {
		parts[i] = fmt.Sprintf("%s (%d)", room.Name, room.Members)
	}
	return strings.Join(parts, ", ")
}
