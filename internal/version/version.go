package version

// Overridden at build time with -ldflags "-X ely.by/textures/internal/version.version=..."
var (
	version = "dev"
	commit  = "unknown"
)

// MajorVersion is written into the issued tokens, so tokens of the incompatible releases can be told apart
const MajorVersion = 1

func Version() string {
	return version
}

func Commit() string {
	return commit
}
