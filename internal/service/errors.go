package service

import "errors"

var (
	ErrSlotNotFound   = errors.New("session slot not found")
	ErrAlreadyStarted = errors.New("session has already started")
	ErrRoleTaken      = errors.New("role already claimed for this session")
	ErrAlreadyHolding = errors.New("claimant already holds a role in this session")
	ErrAllClaimed     = errors.New("all roles for this session are claimed")
	ErrInvalidRole    = errors.New("unknown role")
	ErrNoDisplay      = errors.New("sessions display is not published")
	ErrRenderFailure  = errors.New("sessions display could not be updated")
)
