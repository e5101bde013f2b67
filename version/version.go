package version

// Set at build time with
// -ldflags "-X github.com/birc-stormtroopers/bucket-sort/version.Version=... -X github.com/birc-stormtroopers/bucket-sort/version.Date=..."
var (
	Version = "dev"
	Date    = ""
)
