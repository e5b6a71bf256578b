package cmd

import (
	"time"

	"github.com/isometry/country-gateway/internal/config"
	"github.com/isometry/country-gateway/internal/helpers"
)

var svcEnvMapString = map[*string]boundEnvVar[string]{
	&config.Service.Addr: {
		Name:        "service-host-addr",
		Description: "The address to serve the service on (default all interfaces in dual-stack mode)",
		Short:       helpers.Ptr("H"),
	},
	&config.Service.Port: {
		Name:        "service-host-port",
		Description: "The port to serve the service on",
		Short:       helpers.Ptr("p"),
	},
	&config.Service.CountryPath: {
		Name:        "service-country-path",
		Description: "The path serving country lookups",
	},
	&config.Service.ContinentPath: {
		Name:        "service-continent-path",
		Description: "The path serving signed continent lookups",
	},
}

var svcEnvMapDuration = map[*time.Duration]boundEnvVar[time.Duration]{
	&config.Service.Timeout: {
		Name:        "service-io-timeout",
		Description: "The timeout for I/O operations",
		Short:       helpers.Ptr("t"),
	},
}
