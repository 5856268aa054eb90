// README: Firebase Admin SDK app; hands out the ID-token verifier, Firestore and FCM clients.
package infra

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// FirebaseToken is the subset of a verified ID token the auth middleware reads.
// Claims carries custom claims such as role and stationId.
type FirebaseToken struct {
	UID    string
	Claims map[string]interface{}
}

type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*FirebaseToken, error)
}

type Firebase struct {
	app *firebase.App
}

// NewFirebase builds the admin app for projectID. An empty credentialsFile
// falls back to application default credentials.
func NewFirebase(ctx context.Context, projectID, credentialsFile string) (*Firebase, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	return &Firebase{app: app}, nil
}

func (f *Firebase) Verifier(ctx context.Context) (TokenVerifier, error) {
	client, err := f.app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase auth client: %w", err)
	}
	return idTokenVerifier{client: client}, nil
}

// Firestore returns a new client; the caller closes it.
func (f *Firebase) Firestore(ctx context.Context) (*firestore.Client, error) {
	client, err := f.app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("firestore client: %w", err)
	}
	return client, nil
}

func (f *Firebase) Messaging(ctx context.Context) (*messaging.Client, error) {
	client, err := f.app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("fcm client: %w", err)
	}
	return client, nil
}

type idTokenVerifier struct {
	client *auth.Client
}

func (v idTokenVerifier) VerifyIDToken(ctx context.Context, idToken string) (*FirebaseToken, error) {
	tok, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, err
	}
	return &FirebaseToken{UID: tok.UID, Claims: tok.Claims}, nil
}
