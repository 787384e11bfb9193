package model

import "github.com/m-mizutani/goerr/v2"

// Error taxonomy shared by every layer. The HTTP controller maps these to status codes.
var (
	ErrInvalidInput = goerr.New("invalid input")
	ErrNotFound     = goerr.New("not found")
	ErrUpstream     = goerr.New("upstream service failed")
	ErrConflict     = goerr.New("conflict")
)

// goerr value keys used to pass provider detail through to the error response
const (
	StatusKey = "status"
	DetailKey = "detail"
)
