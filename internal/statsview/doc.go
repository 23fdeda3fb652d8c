// Package statsview serves live runtime statistics over HTTP while a long
// headless run is in progress. It is only functional when built with the
// statsview tag:
//
//	go build -tags statsview ./cmd/gbemu
//
// Charts are then served at
//
//	localhost:12600/debug/statsview
//
// and the standard pprof endpoints at
//
//	localhost:12600/debug/pprof/
package statsview
