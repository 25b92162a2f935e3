package controller

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sharetube/jukebox/internal/service/room"
)

type createRoomInput struct {
	AdminName string `json:"admin_name" validate:"required,max=32"`
}

type createRoomOutput struct {
	RoomId    string `json:"room_id"`
	AuthToken string `json:"auth_token"`
}

func (c controller) createRoom(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var input createRoomInput
	if err := readJSON(r, &input); err != nil {
		c.logger.InfoContext(ctx, "failed to read json", "error", err)
		writeJSON(w, http.StatusUnprocessableEntity, envelope{"error": err.Error()})
		return
	}

	if validationErrors, ok := c.validate.Validate(input); !ok {
		c.logger.InfoContext(ctx, "validation failed", "errors", validationErrors)
		writeJSON(w, http.StatusBadRequest, envelope{"errors": validationErrors})
		return
	}

	resp, err := c.roomService.CreateRoom(ctx, &room.CreateRoomParams{
		AdminName: input.AdminName,
	})
	if err != nil {
		if errors.Is(err, room.ErrInvalidInput) {
			writeJSON(w, http.StatusBadRequest, envelope{"error": err.Error()})
			return
		}

		c.logger.ErrorContext(ctx, "failed to create room", "error", err)
		writeJSON(w, http.StatusInternalServerError, envelope{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusCreated, envelope{"data": createRoomOutput{
		RoomId:    resp.RoomId,
		AuthToken: resp.AuthToken,
	}})
}

func (c controller) getRoomTracks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	roomId := chi.URLParam(r, "room-id")

	tracks, err := c.roomService.GetRoomTracks(ctx, roomId)
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			writeJSON(w, http.StatusNotFound, envelope{"error": "room not found"})
			return
		}

		c.logger.ErrorContext(ctx, "failed to get room tracks", "room_id", roomId, "error", err)
		writeJSON(w, http.StatusInternalServerError, envelope{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, envelope{"data": tracks})
}
