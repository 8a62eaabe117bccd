package credstore

import "errors"

var (
	ErrEmptyKey       = errors.New("credstore: key cannot be empty")
	ErrNoRefreshToken = errors.New("credstore: no refresh token stored")
	ErrSealKeySize    = errors.New("credstore: seal key must be 32 bytes")
	ErrSealOpen       = errors.New("credstore: cannot decrypt stored data")
)
