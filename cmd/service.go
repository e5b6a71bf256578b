package cmd

import (
	"context"
	"net"
	"net/http"

	"github.com/isometry/country-gateway/internal/config"
	"github.com/isometry/country-gateway/internal/handler"
	"github.com/isometry/country-gateway/internal/runtime"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func cmdService() *cobra.Command {
	return &cobra.Command{
		Use:     "service",
		Aliases: []string{"s", "serve", "standalone", "server"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger = logger.With("mode", config.ModeService)
			logger.Info("spawning...")

			hdl, err := setup(cmd.Context())
			if err != nil {
				return errors.Wrap(err, "failed to setup service")
			}

			logger.Debug("creating HTTP server...")
			s := &http.Server{
				Handler:      newServeMux(hdl),
				Addr:         net.JoinHostPort(config.Service.Addr, config.Service.Port),
				WriteTimeout: config.Service.Timeout,
				ReadTimeout:  config.Service.Timeout,
				IdleTimeout:  config.Service.Timeout,
			}

			return serve(cmd.Context(), s)
		},
	}
}

// newServeMux mounts one runtime per flow on its configured path.
func newServeMux(hdl *handler.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	paths := map[handler.Flow]string{
		handler.FlowCountry:   config.Service.CountryPath,
		handler.FlowContinent: config.Service.ContinentPath,
	}
	for _, flow := range handler.Flows {
		mux.Handle(paths[flow], runtime.NewRuntime(hdl,
			runtime.WithFlow(flow),
			runtime.WithLogger(logger.With("component", "runtime"))))
	}
	return mux
}

// serve runs s until it fails or ctx is cancelled.
func serve(ctx context.Context, s *http.Server) error {
	if ctx == nil {
		ctx = context.Background()
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving...", "address", s.Addr,
			"countryPath", config.Service.CountryPath,
			"continentPath", config.Service.ContinentPath,
			"timeout", config.Service.Timeout.String())
		errCh <- s.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.Service.Timeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	}
}
