// Package daemon coordinates the long-running sync process: the serial frame
// pump, the clock-correction loop, the device hotplug monitor, and the HTTP
// API, with a file lock enforcing single-instance execution.
package daemon
