// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

/*
Package main is the entry point for the Decidio duel server.

Decidio is a preference elicitation service: players play short duel games
(pick one of two items, ten rounds) and the service infers their taste from
the picks. The inferred profile drives per-round candidate selection, final
recommendations, and cross-session collaborative scoring.

# Application Architecture

The server implements a layered architecture with Suture v4 process supervision:

	RootSupervisor ("duel")
	├── ModelSupervisor ("model-layer")
	│   └── Trainer (catalog refresh + prefix-model retraining)
	└── APISupervisor ("api-layer")
	    └── HTTP Server (chi REST API)

Component initialization order:

 1. Configuration: Koanf v2 with environment variables and config files
 2. Logging: zerolog with JSON/console output modes
 3. MongoDB: Connection ping, products schema guard, index bootstrap
 4. Recommender: Feature space build, PCF online model, PBCF factorization
 5. Game Service: Session lifecycle and round orchestration
 6. Supervisor Tree: Suture v4 process supervision
 7. HTTP Server: Chi router with middleware stack

# Configuration

Configuration is loaded via Koanf v2 with layered sources (highest priority wins):

	Priority: Environment variables > Config file > Defaults

Core environment variables:

	# Server
	HTTP_PORT=8420               # HTTP server port
	HTTP_HOST=0.0.0.0            # Bind address
	LOG_LEVEL=info               # trace, debug, info, warn, error
	LOG_FORMAT=json              # json or console

	# MongoDB
	MONGODB_URL=mongodb://localhost:27017
	MONGODB_DB_NAME=decidio

	# Game tuning
	GAME_TOTAL_ROUNDS=10         # Duel rounds per session
	GAME_ONBOARDING_PICKS=10     # Popular items sampled for round one

	# Model tuning
	RECOMMEND_PBCF_LATENT_DIM=6  # NMF latent dimension cap
	RECOMMEND_RETRAIN_INTERVAL=1m

	# Security
	CORS_ORIGINS=*               # Comma-separated allowed origins
	RATE_LIMIT_REQS=100          # Requests per window per IP

See .env.example for the complete configuration reference.

# Signal Handling

The server handles graceful shutdown on SIGINT and SIGTERM:

 1. Stops accepting new HTTP connections
 2. Waits for in-flight requests (10s timeout)
 3. Stops the model trainer mid-cycle if needed
 4. Closes the MongoDB connection
 5. Reports any services that failed to stop

# Usage Examples

Development:

	export MONGODB_URL=mongodb://localhost:27017
	export LOG_FORMAT=console
	go run ./cmd/server

Production:

	export MONGODB_URL=mongodb://mongo:27017
	export CORS_ORIGINS=https://app.decidio.example
	./duel-server

Docker:

	docker run -d \
	  -e MONGODB_URL=mongodb://mongo:27017 \
	  -p 8420:8420 \
	  ghcr.io/decidio/duel

# See Also

  - internal/config: Configuration management
  - internal/supervisor: Process supervision
  - internal/api: HTTP handlers and routing
  - internal/game: Duel session orchestration
  - internal/recommend: Taste inference engine
  - cmd/ingest: TMDB catalog ingestion command
*/
package main
