package controller

import (
	"github.com/sharetube/jukebox/pkg/wsrouter"
)

func (c controller) getWSRouter() *wsrouter.WSRouter {
	mux := wsrouter.New()
	mux.Use(c.wsRequestIdMw, c.wsLoggerMw)
	mux.OnError(c.handleWSError)

	wsrouter.Handle(mux, "ALIVE", c.handleAlive)

	// queue
	wsrouter.Handle(mux, "ADD_TRACK", c.handleAddTrack)
	wsrouter.Handle(mux, "UPVOTE", c.handleUpvote)
	wsrouter.Handle(mux, "DOWNVOTE", c.handleDownvote)
	wsrouter.Handle(mux, "TRACK_COMPLETED", c.handleTrackCompleted)

	// admin
	wsrouter.Handle(mux, "ADMIN_HEARTBEAT", c.handleAdminHeartbeat)
	wsrouter.Handle(mux, "CONTROL", c.handleControl)
	wsrouter.Handle(mux, "SEEK", c.handleSeek)
	wsrouter.Handle(mux, "SKIP", c.handleSkip)
	wsrouter.Handle(mux, "END_ROOM", c.handleEndRoom)

	return mux
}
