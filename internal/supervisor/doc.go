// MoodTune - Mood Inference and Music Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodtune

/*
Package supervisor runs MoodTune's long-lived services under a suture v4
tree.

	RootSupervisor ("moodtune")
	├── MaintenanceSupervisor ("maintenance-layer")
	│   └── CacheJanitorService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

A janitor crash restarts only the janitor; the HTTP server keeps serving.
Supervisor events are logged through sutureslog, bridged to zerolog by
logging.NewSlogLogger.
*/
package supervisor
