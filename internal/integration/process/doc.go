// Package process launches and supervises the commands started by
// RunCommand bindings.
//
// Binding commands are fire-and-forget: the caller never waits for them and
// their output is discarded. The Supervisor tracks them until they exit so
// that shutdown can terminate whatever is still running.
//
//	sup := process.NewSupervisor(process.WithExitCallback(logExit))
//	defer sup.Shutdown(5 * time.Second)
//
//	cmd, err := process.Command("xdg-open", "https://example.com")
//	if err != nil {
//	    return err
//	}
//	proc, err := sup.Start("xdg-open", cmd)
//
// # Graceful Shutdown
//
// Shutdown sends SIGTERM to every tracked process, waits up to the timeout,
// then sends SIGKILL to the rest.
//
// Both Supervisor and Process are safe for concurrent use.
package process
