package service

import (
	"errors"

	"github.com/nurpe/maintenance-tracker/internal/syncstore"
)

var (
	ErrNotFound     = syncstore.ErrNotFound
	ErrInvalidInput = errors.New("invalid input")
)
