// Package shutdown coordinates graceful process termination.
//
// Hooks run in reverse registration order under one timeout once
// SIGINT or SIGTERM arrives or the parent context is cancelled:
//
//	h := shutdown.NewHandler(30*time.Second, logger)
//	h.OnShutdown("http", srv.Shutdown)
//	err := h.Wait(ctx)
package shutdown
