package testing

import "os"

// IntegrationEnv enables the Docker-backed storage tests when set to a
// non-empty value.
const IntegrationEnv = "PIPEBENCH_INTEGRATION"

func IntegrationEnabled() bool {
	return os.Getenv(IntegrationEnv) != ""
}
