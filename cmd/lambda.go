package cmd

import (
	"slices"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/isometry/country-gateway/internal/config"
	"github.com/isometry/country-gateway/internal/handler"
	"github.com/isometry/country-gateway/internal/runtime"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func cmdLambda() *cobra.Command {
	return &cobra.Command{
		Use: "lambda",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger = logger.With("mode", config.ModeLambda)

			rt, err := newLambdaRuntime(cmd)
			if err != nil {
				return errors.Wrap(err, "failed to setup lambda")
			}

			logger.Info("lambda starting...", "flow", rt.Flow(), "payloadType", config.Lambda.PayloadType)
			lambda.StartWithOptions(rt.Lambda,
				lambda.WithContext(cmd.Context()))

			return nil
		},
	}
}

func newLambdaRuntime(cmd *cobra.Command) (*runtime.Runtime, error) {
	flow, err := handler.ParseFlow(config.Lambda.Flow)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(runtime.PayloadTypes, config.Lambda.PayloadType) {
		return nil, errors.Errorf("unsupported lambda payload type: %s", config.Lambda.PayloadType)
	}

	hdl, err := setup(cmd.Context())
	if err != nil {
		return nil, err
	}

	logger.Debug("creating runtime...")
	return runtime.NewRuntime(hdl,
		runtime.WithFlow(flow),
		runtime.WithLambdaPayloadType(config.Lambda.PayloadType),
		runtime.WithLogger(logger.With("component", "runtime"))), nil
}
