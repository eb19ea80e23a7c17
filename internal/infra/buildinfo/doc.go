// Package buildinfo exposes build information injected via ldflags.
//
//	go build -ldflags "-X github.com/yndnr/certrotate-go/internal/infra/buildinfo.Version=v1.0.0"
package buildinfo
