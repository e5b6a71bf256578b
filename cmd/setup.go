package cmd

import (
	"context"

	"github.com/isometry/country-gateway/internal/config"
	"github.com/isometry/country-gateway/internal/controllers/aws"
	"github.com/isometry/country-gateway/internal/controllers/countries"
	"github.com/isometry/country-gateway/internal/handler"
	"github.com/pkg/errors"
)

type secretGetter interface {
	GetSecret(ctx context.Context, key string, encrypted bool) (string, error)
}

// setup builds the lookup handler from the current configuration.
func setup(ctx context.Context) (*handler.Handler, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var (
		awsCtl *aws.Controller
		getter secretGetter
	)
	if needsAWS() {
		logger.Debug("creating AWS controller...")
		var err error
		awsCtl, err = aws.NewController(ctx,
			aws.WithLogger(logger.With("component", "aws-controller")))
		if err != nil {
			return nil, err
		}
		getter = awsCtl
	}

	secret, err := resolveSigningSecret(ctx, getter)
	if err != nil {
		return nil, err
	}

	options := []handler.Option{
		handler.WithLogger(logger.With("component", "lookup-handler")),
		handler.WithSigningSecret(secret),
		handler.WithUpstream(countries.NewController(
			countries.WithEndpoint(config.Upstream.Endpoint),
			countries.WithTimeout(config.Upstream.Timeout),
			countries.WithLogger(logger.With("component", "countries-controller")))),
	}
	if archiveEnabled() {
		logger.Info("archiving accepted continent requests", "bucket", config.Global.S3.Archive.BucketName)
		options = append(options, handler.WithArchive(awsCtl, config.Global.S3.Archive.BucketName))
	}

	logger.Debug("creating lookup handler...")
	return handler.NewLookupHandler(options...), nil
}

func archiveEnabled() bool {
	return config.Global.S3.Archive.Enabled && config.Global.S3.Archive.BucketName != ""
}

func needsAWS() bool {
	return config.Signing.Source == config.SecretSourceSSM || archiveEnabled()
}

// resolveSigningSecret returns the signing secret from the configured source.
func resolveSigningSecret(ctx context.Context, getter secretGetter) (string, error) {
	switch config.Signing.Source {
	case config.SecretSourceEnv:
		return config.Signing.Secret, nil
	case config.SecretSourceSSM:
		if config.Signing.SSMKey == "" {
			return "", errors.New("an SSM key is required when the signing secret source is 'ssm'")
		}
		if getter == nil {
			return "", errors.New("no SSM client available")
		}
		logger.Debug("fetching signing secret from SSM...", "key", config.Signing.SSMKey)
		secret, err := getter.GetSecret(ctx, config.Signing.SSMKey, true)
		if err != nil {
			return "", errors.Wrap(err, "failed to fetch signing secret")
		}
		return secret, nil
	default:
		return "", errors.Errorf("unsupported signing secret source: %s", config.Signing.Source)
	}
}
