package handlers

import "net/http"

// Routes groups the API handlers
type Routes struct {
	Middleware  *Middleware
	Profiles    *ProfileHandler
	Collections *CollectionHandler
	Activity    *ActivityHandler
	Games       *GameHandler
	AI          *AIHandler
	Backup      *BackupHandler
	Caregiver   *CaregiverHandler
	Status      *StatusHandler
}

// Handler builds the API mux wrapped with rate limiting and request logging
func (rt *Routes) Handler() http.Handler {
	mw := rt.Middleware
	mux := http.NewServeMux()

	// Profiles
	mux.HandleFunc("GET /api/profiles", rt.Profiles.ListProfiles)
	mux.HandleFunc("POST /api/profiles", rt.Profiles.CreateProfile)
	mux.HandleFunc("GET /api/profiles/active", rt.Profiles.ActiveProfile)
	mux.HandleFunc("POST /api/profiles/{id}/select", rt.Profiles.SelectProfile)
	mux.HandleFunc("DELETE /api/profiles/{id}", mw.RequireCaregiver(rt.Profiles.DeleteProfile))

	// Profile-scoped collections
	mux.HandleFunc("GET /api/collections/{key}", rt.Collections.GetCollection)
	mux.HandleFunc("PUT /api/collections/{key}", rt.Collections.PutCollection)

	// Activity and reviews
	mux.HandleFunc("GET /api/activity", rt.Activity.GetLogs)
	mux.HandleFunc("POST /api/activity", rt.Activity.LogActivity)
	mux.HandleFunc("GET /api/reviews", rt.Activity.GetReviews)
	mux.HandleFunc("POST /api/reviews", rt.Activity.SaveReview)

	// Games
	mux.HandleFunc("GET /api/games/stats", rt.Games.GetStats)
	mux.HandleFunc("PATCH /api/games/stats", rt.Games.PatchStats)
	mux.HandleFunc("POST /api/games/simon", rt.Games.StartSimon)
	mux.HandleFunc("GET /api/games/simon", rt.Games.GetSimon)
	mux.HandleFunc("POST /api/games/simon/played", rt.Games.SimonPlayed)
	mux.HandleFunc("POST /api/games/simon/press", rt.Games.SimonPress)
	mux.HandleFunc("POST /api/games/memory", rt.Games.StartMemory)
	mux.HandleFunc("GET /api/games/memory", rt.Games.GetMemory)
	mux.HandleFunc("POST /api/games/memory/flip", rt.Games.FlipCard)
	mux.HandleFunc("POST /api/games/balloons", rt.Games.RecordBalloons)

	// Assistant
	mux.HandleFunc("POST /api/ai/text", rt.AI.Text)
	mux.HandleFunc("POST /api/ai/task", rt.AI.Task)
	mux.HandleFunc("POST /api/ai/image", rt.AI.Image)

	// Caregiver-only data management
	mux.HandleFunc("GET /api/backup", rt.Backup.Export)
	mux.HandleFunc("POST /api/backup", mw.RequireCaregiver(rt.Backup.Import))
	mux.HandleFunc("POST /api/reset", mw.RequireCaregiver(rt.Backup.Reset))
	mux.HandleFunc("POST /api/digest", mw.RequireCaregiver(rt.Backup.Digest))

	mux.HandleFunc("GET /api/caregiver", rt.Caregiver.Status)
	mux.HandleFunc("POST /api/caregiver/pin", mw.RequireCaregiver(rt.Caregiver.SetPIN))
	mux.HandleFunc("POST /api/caregiver/unlock", rt.Caregiver.Unlock)

	// Timers
	mux.HandleFunc("GET /api/presence", rt.Status.Presence)
	mux.HandleFunc("GET /api/alarms/fired", rt.Status.FiredAlarms)
	mux.HandleFunc("GET /api/breathing", rt.Status.Breathing)

	return Logging(mw.RateLimit(mux))
}
