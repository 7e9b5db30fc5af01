package domain

import "errors"

var (
	ErrAreaNotFound       = errors.New("area not found")
	ErrDroneNotFound      = errors.New("drone not found")
	ErrMissionNotFound    = errors.New("mission not found")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrInvalidCoordinates = errors.New("invalid coordinates")
)
