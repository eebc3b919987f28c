package model

import "time"

// RoomRole determines the capabilities granted by a room access token.
type RoomRole string

const (
	RoomRoleTeacher RoomRole = "teacher"
	RoomRoleStudent RoomRole = "student"
)

// Valid reports whether the role is a known one.
func (r RoomRole) Valid() bool {
	return r == RoomRoleTeacher || r == RoomRoleStudent
}

// RoomTokenRequest is the payload for minting a room access credential.
type RoomTokenRequest struct {
	RoomName string `json:"room_name" binding:"required,min=1,max=128"`
	Identity string `json:"identity" binding:"required,min=1,max=128"`
	Role     string `json:"role" binding:"required,oneof=teacher student"`
}

// RoomTokenResponse carries the signed credential back to the client.
type RoomTokenResponse struct {
	Token     string    `json:"token"`
	RoomName  string    `json:"room_name"`
	Identity  string    `json:"identity"`
	Role      RoomRole  `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}
