package controller

import (
	"context"

	"github.com/sharetube/jukebox/internal/hub"
)

type contextKey int

const (
	roomIdCtxKey contextKey = iota
	memberIdCtxKey
	sessionCtxKey
)

func (c controller) getRoomIdFromCtx(ctx context.Context) string {
	roomId, ok := ctx.Value(roomIdCtxKey).(string)
	if !ok {
		return ""
	}

	return roomId
}

func (c controller) getMemberIdFromCtx(ctx context.Context) string {
	memberId, ok := ctx.Value(memberIdCtxKey).(string)
	if !ok {
		return ""
	}

	return memberId
}

func (c controller) getSessionFromCtx(ctx context.Context) *hub.Session {
	session, ok := ctx.Value(sessionCtxKey).(*hub.Session)
	if !ok {
		return nil
	}

	return session
}
