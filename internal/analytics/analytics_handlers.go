package analytics

import (
	"database/sql"
	"encoding/json"
	"net/http"
)

// app_opened — baseline "opened the app" metric
func AppOpenedHandler(dbx *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var body struct {
			ColdStart bool   `json:"cold_start"`
			From      string `json:"from"` // push/deeplink/icon/unknown
		}
		_ = json.NewDecoder(r.Body).Decode(&body)

		env := FromRequest(r)
		env.UserID = uid

		props := map[string]any{
			"cold_start": body.ColdStart,
			"from":       body.From,
		}

		_ = Log(r.Context(), dbx, env, "app_opened", props, SourceEventKeyFromRequest(r))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}
}

// ritual_shown — a selected task was displayed to the user
func RitualShownHandler(dbx *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var body struct {
			TaskID   string `json:"task_id"`
			Source   string `json:"source"`    // next/schedule/interrupt/unknown
			Enhanced bool   `json:"enhanced"`  // paid layer vs template fallback
			Points   int    `json:"points"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)

		env := FromRequest(r)
		env.UserID = uid

		props := map[string]any{
			"task_id":     body.TaskID,
			"source":      body.Source,
			"enhanced":    body.Enhanced,
			"points_tier": TierFromPoints(body.Points),
		}

		_ = Log(r.Context(), dbx, env, "ritual_shown", props, SourceEventKeyFromRequest(r))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}
}

// interrupt_shown — the interrupt gate fired and a task was surfaced
func InterruptShownHandler(dbx *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var body struct {
			TaskID      string `json:"task_id"`
			IdleMinutes int    `json:"idle_minutes"`
			Accepted    bool   `json:"accepted"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)

		env := FromRequest(r)
		env.UserID = uid

		props := map[string]any{
			"task_id":      body.TaskID,
			"idle_minutes": body.IdleMinutes,
			"accepted":     body.Accepted,
		}

		_ = Log(r.Context(), dbx, env, "interrupt_shown", props, SourceEventKeyFromRequest(r))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}
}
