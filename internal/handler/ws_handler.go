/*
Package handler provides the HTTP handler function for WebSocket connection upgrading and initialization.

This file contains the HandleWebSocket function, which upgrades the HTTP connection to WebSocket
and runs the chat session on the request goroutine until it ends.
*/
package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"roomchat/internal/app/chat"
	"roomchat/internal/pkg/logx"
)

// HandleWebSocket creates an HTTP HandlerFunc to process WebSocket connection requests.
func HandleWebSocket(deps *AppDeps, upgrader websocket.Upgrader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		session := chat.NewSession(conn, deps.Manager, deps.Names)

		logx.Info("WebSocket connection established", "session_id", session.ID(), "ip", logx.AnonymizeIP(conn.RemoteAddr().String()))

		if err := session.Run(r.Context()); err != nil {
			logx.Info("WebSocket session ended with error", "session_id", session.ID(), "error", err.Error())
			return
		}

		logx.Info("WebSocket session ended", "session_id", session.ID())
	}
}
