// MoodTune - Mood Inference and Music Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodtune

/*
Package main is the entry point for the MoodTune server.

MoodTune infers a user's mood from webcam frames, recommends tracks for that
mood from the Spotify catalog and lets signed-in users chat with each other.

# Application Architecture

The server runs its long-lived services under a Suture v4 supervisor tree:

	RootSupervisor ("moodtune")
	├── MaintenanceSupervisor ("maintenance-layer")
	│   └── Cache Janitor (purges expired recommendations)
	└── APISupervisor ("api-layer")
	    └── HTTP Server (Chi router)

Component initialization order:

 1. Configuration: Koanf v2 with .env, config.yaml and environment variables
 2. Logging: zerolog with JSON/console output modes
 3. Storage: JSON files or BadgerDB for users and chat messages
 4. Inference: pigo face cascade and the configured classifier backend
 5. Recommendations: Spotify client behind a circuit breaker and TTL cache
 6. Authentication: JWT bearer tokens and session cookies
 7. Supervisor Tree: Suture v4 process supervision
 8. HTTP Server: Chi router with middleware stack

# Configuration

Configuration is loaded via Koanf v2 with layered sources (highest priority wins):

	Priority: Environment variables > Config file > Defaults

Core environment variables:

	# Server
	HTTP_PORT=5000
	LOG_LEVEL=info               # trace, debug, info, warn, error
	LOG_FORMAT=json              # json or console

	# Authentication
	JWT_SECRET=<32+ chars>       # generated per process outside production

	# Inference
	FACE_CASCADE_PATH=models/facefinder
	CLASSIFIER_BACKEND=hog       # hog or cnn
	MODEL_PATH=models/hog_linear.json

	# Catalog
	SPOTIFY_CLIENT_ID=<id>
	SPOTIFY_CLIENT_SECRET=<secret>

	# Storage
	STORAGE_BACKEND=file         # file or badger
	DATA_DIR=data

Without Spotify credentials the server still starts; every recommendation
then degrades to the fallback track.

# Signal Handling

The server handles graceful shutdown on SIGINT and SIGTERM:
  - Stops accepting new connections
  - Waits for in-flight requests up to SHUTDOWN_TIMEOUT
  - Closes the user and chat stores
*/
package main
