package secrets

import "errors"

var (
	ErrInvalidKey       = errors.New("secrets: invalid key")
	ErrCipherText       = errors.New("secrets: invalid ciphertext")
	ErrUnredactablePath = errors.New("secrets: unredactable secret path")
)
