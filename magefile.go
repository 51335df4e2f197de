//go:build mage

package main

import (
	"fmt"
	"time"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Default target to run when none is specified
var Default = Build

const (
	binary      = "bin/udpbalancer"
	versionPkg  = "github.com/yourorg/udpbalancer/internal/version"
	mainPackage = "./cmd/udpbalancer"
)

// Build compiles the balancer binary with version metadata injected.
func Build() error {
	version, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil {
		version = "dev"
	}
	commit, err := sh.Output("git", "rev-parse", "--short", "HEAD")
	if err != nil {
		commit = "none"
	}
	date := time.Now().UTC().Format(time.RFC3339)

	ldflags := fmt.Sprintf("-X %s.version=%s -X %s.commit=%s -X %s.date=%s",
		versionPkg, version, versionPkg, commit, versionPkg, date)

	return sh.RunV("go", "build", "-ldflags", ldflags, "-o", binary, mainPackage)
}

// Test runs the full test suite with the race detector.
func Test() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Vet runs go vet across the module.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// CI runs vet, tests and a build, in that order.
func CI() error {
	mg.SerialDeps(Vet, Test)
	return Build()
}

// Clean removes build artifacts.
func Clean() error {
	return sh.Rm("bin")
}
