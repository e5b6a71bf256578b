package cmd

import (
	"time"

	"github.com/isometry/country-gateway/internal/config"
	"github.com/isometry/country-gateway/internal/helpers"
)

var envMapString = map[*string]boundEnvVar[string]{
	&config.Global.Mode: {
		Name:        "mode",
		Description: "The application runtime mode. Possible values are 'lambda' and 'service'",
		Short:       helpers.Ptr("m"),
	},
	&config.Signing.Source: {
		Name:        "signing-secret-source",
		Description: "Where the partner signing secret is read from. Supported values are 'env' and 'ssm'",
	},
	&config.Signing.Secret: {
		Name:        "signing-secret",
		Description: "The shared secret used to verify signed continent requests. If empty, every continent request is rejected",
		Hidden:      true,
	},
	&config.Signing.SSMKey: {
		Name:        "signing-secret-ssm-key",
		Description: "The SSM parameter holding the signing secret when the source is 'ssm'",
	},
	&config.Upstream.Endpoint: {
		Name:        "upstream-endpoint",
		Description: "The countries GraphQL endpoint",
	},
	&config.Global.S3.Archive.BucketName: {
		Name:        "archive-s3-bucket",
		Description: "The S3 bucket to use when archiving accepted continent requests",
		Env:         helpers.Ptr("ARCHIVE_S3_BUCKET"),
	},
}

var envMapBool = map[*bool]boundEnvVar[bool]{
	&config.Global.Logging.CallerTrace: {
		Name:        "verbosity-caller-trace",
		Description: "Enable caller trace in logs",
		Short:       helpers.Ptr("V"),
	},
	&config.Global.S3.Archive.Enabled: {
		Name:        "archive-s3",
		Description: "Enable S3 archiving of accepted continent requests",
		Env:         helpers.Ptr("ARCHIVE_S3"),
	},
}

var envMapCount = map[*int]boundEnvVar[int]{
	&config.Global.Logging.Verbosity: {
		Name:        "verbosity",
		Description: "Increase logger verbosity (default WarnLevel)",
		Short:       helpers.Ptr("v"),
	},
}

var envMapDuration = map[*time.Duration]boundEnvVar[time.Duration]{
	&config.Upstream.Timeout: {
		Name:        "upstream-timeout",
		Description: "The timeout for each upstream call. Zero disables it",
	},
}
