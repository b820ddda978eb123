// Package magetasks provides the build, test and lint tasks used by the Magefile.
//
// Tasks shell out through internal/runner, the same process runner the action
// uses for dcd, so interrupts reach the whole go toolchain process group.
package magetasks
