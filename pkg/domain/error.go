package domain

import "github.com/m-mizutani/goerr/v2"

var (
	ErrAPIRequest      = goerr.New("API request failed")
	ErrConfiguration   = goerr.New("configuration error")
	ErrRepository      = goerr.New("repository error")
	ErrInvalidDuration = goerr.New("run finished before it was created")
)
