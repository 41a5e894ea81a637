/*
Package handler provides HTTP handler functions for the read-only room and user listings.
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"roomchat/internal/app/chat"
	"roomchat/internal/pkg/errs"
	"roomchat/internal/pkg/resp"
)

// HandleListRooms lists every room with its member count, busiest first.
func HandleListRooms(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := map[string]any{
			"rooms": deps.Manager.List(),
		}
		resp.RespondSuccess(w, r, data)
	}
}

// HandleRoomUsers lists the members of one room.
func HandleRoomUsers(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomName := chi.URLParam(r, "room")
		if customErr := chat.ValidateRoomName(roomName); customErr != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		members, customErr := deps.Manager.Members(roomName)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		data := map[string]any{
			"room":  roomName,
			"users": members,
		}
		resp.RespondSuccess(w, r, data)
	}
}

// HandleListUsers lists every connected display name.
func HandleListUsers(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := map[string]any{
			"users": deps.Names.List(),
		}
		resp.RespondSuccess(w, r, data)
	}
}
