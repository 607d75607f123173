package rituals

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"ritual-coach-backend/internal/analytics"
	"ritual-coach-backend/internal/auth"
	"ritual-coach-backend/internal/catalog"
	"ritual-coach-backend/internal/enhance"
	"ritual-coach-backend/internal/engine"
	"ritual-coach-backend/internal/store"
)

// Handler bundles the selection pipeline with its collaborators. One instance
// serves all users; per-user state flows through the store on every request.
type Handler struct {
	DB       *sql.DB
	Store    *store.Store
	Catalog  *catalog.Catalog
	Engine   *engine.Engine
	Gate     *engine.InterruptGate
	Enhancer *enhance.Enhancer
}

func NewHandler(db *sql.DB, st *store.Store, cat *catalog.Catalog, eng *engine.Engine, gate *engine.InterruptGate, enh *enhance.Enhancer) *Handler {
	return &Handler{DB: db, Store: st, Catalog: cat, Engine: eng, Gate: gate, Enhancer: enh}
}

// -------------------------------
// HANDLERS
// -------------------------------

// GET /rituals/next
func (h *Handler) NextTask(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	state, err := h.Store.LoadState(r.Context(), uid)
	if err != nil {
		http.Error(w, "db error: "+err.Error(), 500)
		return
	}
	state.TimeOfDay = engine.TimeOfDayAt(time.Now())

	task, err := h.Engine.Next(state)
	if err != nil {
		// only possible when the catalog has no any-window tasks at all
		http.Error(w, "no tasks available", http.StatusNotFound)
		return
	}
	task = h.Enhancer.Enhance(r.Context(), task, state)

	env := analytics.FromRequest(r)
	env.UserID = uid
	_ = analytics.Log(r.Context(), h.DB, env, "ritual_shown", map[string]any{
		"task_id": task.ID,
		"source":  "next",
	}, "")

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(NextTaskResponse{Task: task, Source: "next"})
}

// GET /schedule/today
func (h *Handler) Schedule(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	state, err := h.Store.LoadState(r.Context(), uid)
	if err != nil {
		http.Error(w, "db error: "+err.Error(), 500)
		return
	}

	now := time.Now()
	entries := h.Engine.BuildDailySchedule(state, now)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(ScheduleResponse{
		Date:    now.Format("2006-01-02"),
		Entries: entries,
	})
}

// POST /rituals/complete
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var body CompleteRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	task, ok := h.Catalog.ByID(body.TaskID)
	if !ok {
		http.Error(w, "unknown task", http.StatusBadRequest)
		return
	}

	state, err := h.Store.LoadState(r.Context(), uid)
	if err != nil {
		http.Error(w, "db error: "+err.Error(), 500)
		return
	}

	state.RecordCompletion(task, time.Now())

	if _, err := h.Store.LogCompletion(r.Context(), uid, task); err != nil {
		log.Printf("rituals: completion log failed for user=%d task=%s: %v", uid, task.ID, err)
	}
	if err := h.Store.SaveState(r.Context(), uid, state); err != nil {
		http.Error(w, "db error: "+err.Error(), 500)
		return
	}

	env := analytics.FromRequest(r)
	env.UserID = uid
	_ = analytics.Log(r.Context(), h.DB, env, "ritual_completed", map[string]any{
		"task_id":     task.ID,
		"domain":      task.Domain,
		"points":      task.Points,
		"tasks_today": state.TasksCompletedToday,
	}, analytics.SourceEventKeyFromRequest(r))

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(CompleteResponse{
		OK:          true,
		TaskID:      task.ID,
		Points:      task.Points,
		PointsTotal: state.PointsTotal,
		TasksToday:  state.TasksCompletedToday,
	})
}

// GET /interrupt/check
// Driven by the client's poll timer; the gate itself runs no timers.
func (h *Handler) InterruptCheck(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	state, err := h.Store.LoadState(r.Context(), uid)
	if err != nil {
		http.Error(w, "db error: "+err.Error(), 500)
		return
	}
	state.TimeOfDay = engine.TimeOfDayAt(time.Now())

	w.Header().Set("Content-Type", "application/json")

	if !h.Gate.ShouldInterrupt(uid, state) {
		_ = json.NewEncoder(w).Encode(InterruptResponse{Interrupt: false})
		return
	}

	task, err := h.Engine.Next(state)
	if err != nil {
		_ = json.NewEncoder(w).Encode(InterruptResponse{Interrupt: false})
		return
	}
	task = h.Enhancer.Enhance(r.Context(), task, state)

	// the task goes out in this response, so the cooldown starts now
	h.Gate.RecordInterrupt(uid)

	env := analytics.FromRequest(r)
	env.UserID = uid
	_ = analytics.Log(r.Context(), h.DB, env, "interrupt_shown", map[string]any{
		"task_id":      task.ID,
		"idle_minutes": state.MinutesSinceLastTask,
	}, "")

	_ = json.NewEncoder(w).Encode(InterruptResponse{Interrupt: true, Task: &task})
}

// GET /state
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	state, err := h.Store.LoadState(r.Context(), uid)
	if err != nil {
		http.Error(w, "db error: "+err.Error(), 500)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(state)
}

// PUT /state — periodic context refresh; only provided fields change
func (h *Handler) UpdateState(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var body StateUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	state, err := h.Store.LoadState(r.Context(), uid)
	if err != nil {
		http.Error(w, "db error: "+err.Error(), 500)
		return
	}

	if body.PartnerHome != nil {
		state.PartnerHome = *body.PartnerHome
	}
	if body.Drive != nil {
		state.Drive = clamp(*body.Drive, 0, 5)
	}
	if body.MinutesSinceLastTask != nil && *body.MinutesSinceLastTask >= 0 {
		state.MinutesSinceLastTask = *body.MinutesSinceLastTask
	}
	if body.AvoidedDomains != nil {
		state.AvoidedDomains = *body.AvoidedDomains
	}
	if body.AbstainDays != nil && *body.AbstainDays >= 0 {
		state.AbstainDays = *body.AbstainDays
	}
	if body.StreakDays != nil && *body.StreakDays >= 0 {
		state.StreakDays = *body.StreakDays
	}
	if body.Phase != nil && engine.Phase(*body.Phase).IsValid() {
		state.Phase = engine.Phase(*body.Phase)
	}

	if err := h.Store.SaveState(r.Context(), uid, state); err != nil {
		http.Error(w, "db error: "+err.Error(), 500)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(state)
}

// POST /state/rollover
// Day boundary is owned by the client scheduler, not the core.
func (h *Handler) Rollover(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	state, err := h.Store.LoadState(r.Context(), uid)
	if err != nil {
		http.Error(w, "db error: "+err.Error(), 500)
		return
	}

	if state.TasksCompletedToday > 0 {
		state.StreakDays++
	} else {
		state.StreakDays = 0
	}
	state.AbstainDays++
	state.CompletedToday = []string{}
	state.TasksCompletedToday = 0
	state.SlipsToday = 0
	state.LastTaskCategory = ""
	state.LastTaskDomain = ""

	if err := h.Store.SaveState(r.Context(), uid, state); err != nil {
		http.Error(w, "db error: "+err.Error(), 500)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(state)
}

// POST /session/start
func (h *Handler) SessionStart(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var body SessionStartRequest
	_ = json.NewDecoder(r.Body).Decode(&body)

	state, err := h.Store.LoadState(r.Context(), uid)
	if err != nil {
		http.Error(w, "db error: "+err.Error(), 500)
		return
	}

	state.InSession = true
	state.SessionType = body.SessionType
	state.PeakCount = 0

	if err := h.Store.SaveState(r.Context(), uid, state); err != nil {
		http.Error(w, "db error: "+err.Error(), 500)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(state)
}

// POST /session/peak
func (h *Handler) SessionPeak(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	state, err := h.Store.LoadState(r.Context(), uid)
	if err != nil {
		http.Error(w, "db error: "+err.Error(), 500)
		return
	}
	if !state.InSession {
		http.Error(w, "no active session", http.StatusBadRequest)
		return
	}

	state.PeakCount++

	if err := h.Store.SaveState(r.Context(), uid, state); err != nil {
		http.Error(w, "db error: "+err.Error(), 500)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(state)
}

// POST /session/stop
func (h *Handler) SessionStop(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	state, err := h.Store.LoadState(r.Context(), uid)
	if err != nil {
		http.Error(w, "db error: "+err.Error(), 500)
		return
	}

	state.InSession = false
	state.SessionType = ""

	if err := h.Store.SaveState(r.Context(), uid, state); err != nil {
		http.Error(w, "db error: "+err.Error(), 500)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(state)
}

// GET /rituals/stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	state, err := h.Store.LoadState(r.Context(), uid)
	if err != nil {
		http.Error(w, "db error: "+err.Error(), 500)
		return
	}

	weekAgo := time.Now().UTC().AddDate(0, 0, -7)
	pointsWeek, err := h.Store.PointsSince(r.Context(), uid, weekAgo)
	if err != nil {
		http.Error(w, "db error: "+err.Error(), 500)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(StatsResponse{
		PointsTotal: state.PointsTotal,
		PointsWeek:  pointsWeek,
		StreakDays:  state.StreakDays,
		TasksToday:  state.TasksCompletedToday,
		Phase:       string(state.Phase),
	})
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
