// Package preflight provides readiness checks for the directories an apply
// run reads from and writes to.
//
// The CLI runs these before planning and before copying: the input directory
// must be readable and the output directory (or its nearest existing
// ancestor) must be writable with enough free space for the planned files.
package preflight
