package utils

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const referenceAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// GenerateID returns a short alphanumeric code used as the human-facing
// booking reference. Uniqueness is enforced by the database constraint.
func GenerateID() string {
	id, err := gonanoid.Generate(referenceAlphabet, 7)
	if err != nil {
		return ""
	}
	return id
}
