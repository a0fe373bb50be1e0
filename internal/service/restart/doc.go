// Package restart re-invokes the current executable with its original
// arguments.
//
// On unix the process image is replaced in place via exec, preserving the
// PID. On Windows a detached copy is spawned before the current process
// exits, so no gap without a running process exists beyond spawn latency.
package restart
