// Package version reports the build of the longscribe binary.
//
// Release builds set the values with -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/longscribe/version.Version=1.2.0 \
//	  -X github.com/kbukum/longscribe/version.Commit=$(git rev-parse HEAD)" ./cmd/longscribe
//
// Development builds fall back to the VCS stamp recorded by the toolchain.
package version
