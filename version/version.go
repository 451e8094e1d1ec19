package version

// Set with -ldflags "-X paidpiper.com/nonce-gateway/version.version=..."
var (
	version   = "dev"
	buildDate = "unknown"
)

func Version() string {
	return version
}

func BuildDate() string {
	return buildDate
}
