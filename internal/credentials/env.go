package credentials

import "os"

// EnvToken is the environment variable checked before the keyring
const EnvToken = "FITSYNC_TOKEN"

// tokenFromEnv returns the env override, empty when unset
func tokenFromEnv() string {
	return os.Getenv(EnvToken)
}
