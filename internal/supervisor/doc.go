// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

// Package supervisor provides the suture v4 supervision tree that keeps the
// duel service's long-running components alive.
//
// # Tree Structure
//
//	duel (root)
//	├── model-layer
//	│   └── model-trainer (feature space refresh + prefix factorization)
//	└── api-layer
//	    └── http-server
//
// Each layer is its own supervisor, so a panicking training cycle is
// restarted with backoff while the HTTP server keeps serving, and a crashed
// listener is restarted without interrupting a running training pass.
//
// # Configuration
//
// TreeConfig exposes suture's failure parameters; zero values fall back to
// suture's documented defaults (threshold 5, decay 30s, backoff 15s,
// shutdown timeout 10s):
//
//	tree, err := supervisor.NewSupervisorTree(logger, supervisor.DefaultTreeConfig())
//	if err != nil {
//	    return err
//	}
//	tree.AddModelService(trainer)
//	tree.AddAPIService(httpService)
//	errCh := tree.ServeBackground(ctx)
//
// # Logging
//
// Supervisor events (service start, failure, backoff, resume) are routed
// through sutureslog into the application's zerolog output via the slog
// adapter in internal/logging.
//
// # Shutdown
//
// Canceling the context passed to Serve/ServeBackground stops every service.
// After the error channel delivers, UnstoppedServiceReport names any service
// that ignored its shutdown deadline.
package supervisor
