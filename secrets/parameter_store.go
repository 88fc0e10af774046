// Package secrets reads api credentials from aws ssm parameter store.
package secrets

import (
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/client"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ssm"
	"github.com/aws/aws-sdk-go/service/ssm/ssmiface"
	"github.com/pkg/errors"
)

// ErrParameterNotFound is returned when the named parameter does not exist.
var ErrParameterNotFound = errors.New("parameter not found")

// ParameterStore fetches decrypted SecureString parameters. An empty Region
// falls back to the sdk's default resolution (AWS_REGION in lambda).
type ParameterStore struct {
	Region string

	svcFunc func(client.ConfigProvider) ssmiface.SSMAPI
}

// NewParameterStore returns a parameter store for region.
func NewParameterStore(region string) *ParameterStore {
	return &ParameterStore{Region: region}
}

// svc is used internally to assist stubs on ssm for testing
func (store *ParameterStore) svc(p client.ConfigProvider) ssmiface.SSMAPI {
	if store.svcFunc != nil {
		return store.svcFunc(p)
	}

	return ssm.New(p)
}

func (store *ParameterStore) session() (*session.Session, error) {
	cfg := &aws.Config{}
	if store.Region != "" {
		cfg.Region = aws.String(store.Region)
	}

	s, err := session.NewSession(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed getting session")
	}

	return s, nil
}

// Get returns the decrypted value of the parameter called name.
func (store *ParameterStore) Get(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", errors.New("parameter name is required")
	}

	s, err := store.session()
	if err != nil {
		return "", err
	}

	out, err := store.svc(s).GetParameterWithContext(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})

	if err != nil {
		aerr, ok := err.(awserr.Error)
		if ok && aerr.Code() == ssm.ErrCodeParameterNotFound {
			return "", errors.Wrapf(ErrParameterNotFound, "'%s'", name)
		}

		return "", errors.Wrapf(err, "failed getting parameter '%s'", name)
	}

	if out == nil || out.Parameter == nil {
		return "", errors.Wrapf(ErrParameterNotFound, "'%s'", name)
	}

	return aws.StringValue(out.Parameter.Value), nil
}
