// Package executor runs external commands for wslkit.
//
// Everything wslkit delegates to the system (apt-get, python3, udevadm,
// pamu2fcfg) goes through the types.Runner interface implemented here, so
// the configuration engine only ever observes captured output and exit
// status. Tests substitute a scripted runner from pkg/testutil.
package executor
