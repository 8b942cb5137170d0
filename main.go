// Package main vcsbridge API
//
//	@title			vcsbridge API
//	@version		1.0.0
//	@description	Unified git and svn operations for local repositories
//
//	@license.name	MIT
//
//	@host			localhost:3000
//	@BasePath		/api/v1
package main

import "github.com/pmtools/vcsbridge/internal"

//go:generate swag init --parseDependency --outputTypes go -g ./main.go -o ./internal/server/docs

func main() {
	internal.Run()
}
