// Package version reports the gateway build. Values are stamped with
// -ldflags and fall back to the module build info:
//
//	go build -ldflags "-X github.com/repronet/predict-gateway/version.Version=1.4.0" ./cmd/gateway
package version
