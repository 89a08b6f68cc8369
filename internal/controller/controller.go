// Package controller holds the two page controllers of the link-shortener
// frontend. Both talk to the gateway, keep the bearer token in a session
// and report every outcome through their view.
package controller

import (
	"context"

	validator "github.com/go-playground/validator/v10"

	"github.com/patric-chuzhbe/linkshrink/internal/models"
)

// User visible texts.
const (
	MsgSignupSucceeded  = "Signup successful! Please log in."
	MsgSignupFailed     = "Signup failed: "
	MsgLoginFailed      = "Login failed: "
	MsgGenericFailure   = "An error occurred. Please try again."
	MsgFetchLinksFailed = "Could not fetch links."
	MsgLinkCreated      = "Link created successfully!"
	MsgCreateLinkFailed = "Error: "
	MsgCreateLinkError  = "An error occurred."
	MsgRequiredFields   = "Please fill in all required fields."
)

type tokenKeeper interface {
	Token(ctx context.Context) (string, error)
	SaveToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error
}

var validate = validator.New()

func successMessage(text string) models.Message {
	return models.Message{Text: text, Kind: models.MessageSuccess}
}

func errorMessage(text string) models.Message {
	return models.Message{Text: text, Kind: models.MessageError}
}
