package firebase

import (
	"context"
	"errors"
	"sync"

	fb "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"

	"github.com/bryanwahyu/aio-strategy/internal/domain/analysis"
)

type idTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// Verifier checks Firebase ID tokens with the Admin SDK.
// The Firebase app is initialised once, on the first Verify call.
type Verifier struct {
	ProjectID       string
	CredentialsFile string
	Log             logrus.FieldLogger

	once   sync.Once
	client idTokenVerifier
	err    error
}

func NewVerifier(projectID, credentialsFile string, log logrus.FieldLogger) *Verifier {
	return &Verifier{ProjectID: projectID, CredentialsFile: credentialsFile, Log: log}
}

func (v *Verifier) authClient(ctx context.Context) (idTokenVerifier, error) {
	v.once.Do(func() {
		if v.client != nil {
			return
		}
		if v.ProjectID == "" && v.CredentialsFile == "" {
			v.err = errors.New("firebase admin credentials not found")
			return
		}
		var opts []option.ClientOption
		if v.CredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(v.CredentialsFile))
		}
		app, err := fb.NewApp(ctx, &fb.Config{ProjectID: v.ProjectID}, opts...)
		if err != nil {
			v.err = err
			return
		}
		client, err := app.Auth(ctx)
		if err != nil {
			v.err = err
			return
		}
		v.client = client
	})
	return v.client, v.err
}

// Verify never fails loudly: any problem, including a missing
// configuration, yields nil.
func (v *Verifier) Verify(ctx context.Context, token string) *analysis.Caller {
	if token == "" {
		return nil
	}
	client, err := v.authClient(ctx)
	if err != nil {
		v.log().WithError(err).Warn("firebase auth unavailable")
		return nil
	}
	decoded, err := client.VerifyIDToken(ctx, token)
	if err != nil {
		v.log().WithError(err).Debug("id token rejected")
		return nil
	}
	email, _ := decoded.Claims["email"].(string)
	return &analysis.Caller{Subject: decoded.UID, Email: email}
}

func (v *Verifier) log() logrus.FieldLogger {
	if v.Log == nil {
		return logrus.StandardLogger()
	}
	return v.Log
}
