package catalog

import "errors"

var ErrRoomNotFound = errors.New("room not found")
