package version

// Build information set by ldflags
var (
	Version = "dev"     // -X github.com/kbuild-tools/kconfig-select/internal/version.Version=...
	Commit  = "unknown" // -X github.com/kbuild-tools/kconfig-select/internal/version.Commit=...
	Date    = "unknown" // -X github.com/kbuild-tools/kconfig-select/internal/version.Date=...
)
