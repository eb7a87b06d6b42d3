/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package spyfall

import "errors"

var (
	ErrEmptyName        = errors.New("no name provided")
	ErrNameTooLong      = errors.New("name too long")
	ErrEmptyCode        = errors.New("code not provided")
	ErrRoomNotFound     = errors.New("room not found")
	ErrPlayerNotFound   = errors.New("player not found")
	ErrNotOwner         = errors.New("player is not the room owner")
	ErrNameTaken        = errors.New("name is not unique")
	ErrUnknownLocation  = errors.New("unknown location")
	ErrCodeExhausted    = errors.New("unable to allocate a unique room code")
	ErrOwnerCannotLeave = errors.New("room owner cannot leave")
	ErrInvalidDuration  = errors.New("invalid round duration")
	ErrNotDeliverable   = errors.New("no connection attached")
	ErrNoPlayers        = errors.New("room has no players")
)

// UserMessage converts an error returned by this package into text that
// can be shown to a player.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyName):
		return "No name provided"
	case errors.Is(err, ErrNameTooLong):
		return "Name is too long"
	case errors.Is(err, ErrEmptyCode):
		return "Code not provided"
	case errors.Is(err, ErrRoomNotFound):
		return "Room not found."
	case errors.Is(err, ErrPlayerNotFound):
		return "You are not part of this room."
	case errors.Is(err, ErrNotOwner):
		return "Only the room owner can do that."
	case errors.Is(err, ErrNameTaken):
		return "Name is not unique"
	case errors.Is(err, ErrOwnerCannotLeave):
		return "The room owner cannot leave."
	case errors.Is(err, ErrInvalidDuration):
		return "Round duration must be at least one second."
	default:
		return "An error has occurred. Please try again."
	}
}

// IsValidation reports whether err was caused by bad caller input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrEmptyName) ||
		errors.Is(err, ErrNameTooLong) ||
		errors.Is(err, ErrEmptyCode) ||
		errors.Is(err, ErrInvalidDuration)
}

// IsNotFound reports whether err refers to a missing room or player.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRoomNotFound) || errors.Is(err, ErrPlayerNotFound)
}
