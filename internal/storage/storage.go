package storage

import "errors"

var (
	ErrTokenNotFound = errors.New("token not found")
	ErrRoomExists    = errors.New("room already exists")
	ErrRoomNotFound  = errors.New("room not found")
	ErrInvalidTTL    = errors.New("ttl must be positive")
)
