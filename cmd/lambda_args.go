package cmd

import (
	"github.com/isometry/country-gateway/internal/config"
)

var lambdaEnvMapString = map[*string]boundEnvVar[string]{
	&config.Lambda.PayloadType: {
		Name:        "lambda-payload-type",
		Description: "The payload type to expect when running in Lambda mode. Supported values are 'api-gateway-v1', 'api-gateway-v2' and 'lambda-url'",
	},
	&config.Lambda.Flow: {
		Name:        "lambda-flow",
		Description: "The flow served by the Lambda function. Supported values are 'country' and 'continent'",
	},
}
