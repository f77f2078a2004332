// Package version exposes the build version of the droughtwatch binary.
package version

// version is stamped at build time:
//
//	go build -ldflags "-X github.com/droughtwatch/droughtwatch/pkg/version.version=v1.2.3"
var version = "dev"

// GetVersion returns the version stamped into the binary.
func GetVersion() string {
	return version
}
