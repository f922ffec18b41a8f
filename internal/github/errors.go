package github

import "errors"

var (
	ErrInvalidRemoteURL   = errors.New("invalid remote URL")
	ErrMergeConflict      = errors.New("pull request has merge conflicts")
	ErrNoToken            = errors.New("no GitHub token available")
	ErrPRClosed           = errors.New("pull request is closed")
	ErrPRNotFound         = errors.New("pull request not found")
	ErrUnknownMergeMethod = errors.New("unknown merge method")
)
