package auth

import (
	"context"
	"encoding/base64"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// Verifier validates a bearer credential and returns the principal's email
type Verifier interface {
	Verify(ctx context.Context, idToken string) (string, error)
}

// FirebaseVerifier implements Verifier against Firebase Auth
type FirebaseVerifier struct {
	client *auth.Client
}

// NewFirebaseVerifier builds a verifier from a base64-encoded service
// account key. A key that does not decode or parse is a startup failure.
func NewFirebaseVerifier(ctx context.Context, serviceKeyB64 string) (*FirebaseVerifier, error) {
	if serviceKeyB64 == "" {
		return nil, fmt.Errorf("firebase service key is not configured")
	}

	raw, err := base64.StdEncoding.DecodeString(serviceKeyB64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode firebase service key: %w", err)
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsJSON(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase auth client: %w", err)
	}

	return &FirebaseVerifier{client: client}, nil
}

// Verify validates an ID token and returns the verified email claim
func (v *FirebaseVerifier) Verify(ctx context.Context, idToken string) (string, error) {
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return "", fmt.Errorf("failed to verify id token: %w", err)
	}

	email, ok := token.Claims["email"].(string)
	if !ok || email == "" {
		return "", fmt.Errorf("token has no email claim")
	}
	return email, nil
}
