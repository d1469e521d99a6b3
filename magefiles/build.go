//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Builds the pipeline binary into bin/travaso.
func (Build) Binary() error {
	if _, err := executeCmd("go", withArgs("build", "-o", "bin/travaso", "."), withStream()); err != nil {
		return err
	}
	return nil
}

// Builds the binary with the unchecked buffer-access fast path enabled.
func (Build) Unsafe() error {
	if _, err := executeCmd("go", withArgs("build", "-tags", "meshunsafe", "-o", "bin/travaso-unsafe", "."), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs the full test suite.
func (Build) Test() error {
	if _, err := executeCmd("go", withArgs("test", "./..."), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs the codec and transcoder benchmarks.
func (Build) Bench() error {
	if _, err := executeCmd("go", withArgs("test", "-bench=.", "-benchmem", "-run=^$", "./pipeline/..."), withStream()); err != nil {
		return err
	}
	return nil
}
