package main

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/lib/pq"
	"k8s.io/klog/v2"

	"seatingplan/roster"
)

//go:embed schema.sql
var schema string

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		klog.Fatalf("failed to load .env: %v", err)
	}
	for _, key := range []string{"PGCONN", "CLIENT_ID", "CLIENT_SECRET", "ADMINS"} {
		if os.Getenv(key) == "" {
			klog.Fatalf("%s environment variable is required", key)
		}
	}
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	db, err := sql.Open("postgres", os.Getenv("PGCONN"))
	if err != nil {
		klog.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		klog.Fatalf("failed to connect to database: %v", err)
	}
	klog.Info("Connected to database")

	if _, err := db.Exec(schema); err != nil {
		klog.Fatalf("failed to apply schema: %v", err)
	}

	metrics := newSolveMetrics()

	http.HandleFunc("POST /auth/google/callback", handleGoogleCallback)
	http.HandleFunc("GET /api/admin/check", handleAdminCheck)
	http.HandleFunc("GET /api/events", handleListEvents(db))
	http.HandleFunc("POST /api/events", handleCreateEvent(db))
	http.HandleFunc("GET /api/events/{eventID}", handleGetEvent(db))
	http.HandleFunc("PATCH /api/events/{eventID}", handleUpdateEvent(db))
	http.HandleFunc("DELETE /api/events/{eventID}", handleDeleteEvent(db))
	http.HandleFunc("POST /api/events/{eventID}/admins", handleAddEventAdmin(db))
	http.HandleFunc("DELETE /api/events/{eventID}/admins/{adminID}", handleRemoveEventAdmin(db))
	http.HandleFunc("GET /api/events/{eventID}/people", handleListPeople(db))
	http.HandleFunc("POST /api/events/{eventID}/people", handleCreatePerson(db))
	http.HandleFunc("POST /api/events/{eventID}/people/import", handleImportPeople(db))
	http.HandleFunc("DELETE /api/events/{eventID}/people/{personID}", handleDeletePerson(db))
	http.HandleFunc("POST /api/events/{eventID}/solve", handleSolve(db, metrics))
	http.Handle("GET /metrics", metrics.handler())
	http.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			http.Error(w, "db unhealthy", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprintln(w, "ok")
	})

	klog.InfoS("Listening", "port", port)
	klog.Fatal(http.ListenAndServe(":"+port, nil))
}

type event struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Courses      int     `json:"courses"`
	Tables       int     `json:"tables"`
	Iterations   int     `json:"iterations"`
	PeopleWeight float64 `json:"people_weight"`
	TableWeight  float64 `json:"table_weight"`
}

const eventColumns = "id, name, courses, tables, iterations, people_weight, table_weight"

func scanEvent(row interface{ Scan(...any) error }, e *event) error {
	return row.Scan(&e.ID, &e.Name, &e.Courses, &e.Tables, &e.Iterations, &e.PeopleWeight, &e.TableWeight)
}

func handleListEvents(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireAdmin(w, r); !ok {
			return
		}
		rows, err := db.Query(`
			SELECT e.id, e.name, e.courses, e.tables, e.iterations, e.people_weight, e.table_weight, COALESCE(
				json_agg(json_build_object('id', ea.id, 'email', ea.email)) FILTER (WHERE ea.id IS NOT NULL),
				'[]'
			)
			FROM events e
			LEFT JOIN event_admins ea ON ea.event_id = e.id
			GROUP BY e.id
			ORDER BY e.id`)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		defer rows.Close()

		type eventAdmin struct {
			ID    int64  `json:"id"`
			Email string `json:"email"`
		}
		type eventWithAdmins struct {
			event
			Admins []eventAdmin `json:"admins"`
		}

		var events []eventWithAdmins
		for rows.Next() {
			var e eventWithAdmins
			var adminsJSON string
			if err := rows.Scan(&e.ID, &e.Name, &e.Courses, &e.Tables, &e.Iterations, &e.PeopleWeight, &e.TableWeight, &adminsJSON); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			json.Unmarshal([]byte(adminsJSON), &e.Admins)
			events = append(events, e)
		}
		if events == nil {
			events = []eventWithAdmins{}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(events)
	}
}

func handleCreateEvent(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireAdmin(w, r); !ok {
			return
		}
		var body struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" {
			http.Error(w, "name is required", http.StatusBadRequest)
			return
		}
		var e event
		err := scanEvent(db.QueryRow("INSERT INTO events (name) VALUES ($1) RETURNING "+eventColumns, body.Name), &e)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(e)
	}
}

func handleGetEvent(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, eventID, ok := requireEventAdmin(db, w, r)
		if !ok {
			return
		}
		var e event
		if err := scanEvent(db.QueryRow("SELECT "+eventColumns+" FROM events WHERE id = $1", eventID), &e); err != nil {
			http.Error(w, "event not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(e)
	}
}

type eventUpdate struct {
	Name         *string  `json:"name"`
	Courses      *int     `json:"courses"`
	Tables       *int     `json:"tables"`
	Iterations   *int     `json:"iterations"`
	PeopleWeight *float64 `json:"people_weight"`
	TableWeight  *float64 `json:"table_weight"`
}

func (u eventUpdate) validate() error {
	if u.Name != nil && *u.Name == "" {
		return fmt.Errorf("name must not be empty")
	}
	for _, f := range []struct {
		name string
		v    *int
	}{{"courses", u.Courses}, {"tables", u.Tables}, {"iterations", u.Iterations}} {
		if f.v != nil && *f.v < 1 {
			return fmt.Errorf("%s must be at least 1", f.name)
		}
	}
	for _, f := range []struct {
		name string
		v    *float64
	}{{"people_weight", u.PeopleWeight}, {"table_weight", u.TableWeight}} {
		if f.v != nil && *f.v < 0 {
			return fmt.Errorf("%s must be at least 0", f.name)
		}
	}
	return nil
}

// columns lists the columns to update and their values, in a fixed order.
func (u eventUpdate) columns() ([]string, []any) {
	var cols []string
	var vals []any
	add := func(col string, v any) {
		cols = append(cols, col)
		vals = append(vals, v)
	}
	if u.Name != nil {
		add("name", *u.Name)
	}
	if u.Courses != nil {
		add("courses", *u.Courses)
	}
	if u.Tables != nil {
		add("tables", *u.Tables)
	}
	if u.Iterations != nil {
		add("iterations", *u.Iterations)
	}
	if u.PeopleWeight != nil {
		add("people_weight", *u.PeopleWeight)
	}
	if u.TableWeight != nil {
		add("table_weight", *u.TableWeight)
	}
	return cols, vals
}

func handleUpdateEvent(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, eventID, ok := requireEventAdmin(db, w, r)
		if !ok {
			return
		}
		var body eventUpdate
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if err := body.validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		cols, vals := body.columns()
		for i, col := range cols {
			if _, err := db.Exec("UPDATE events SET "+col+" = $1 WHERE id = $2", vals[i], eventID); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleDeleteEvent(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireAdmin(w, r); !ok {
			return
		}
		eventID, err := strconv.ParseInt(r.PathValue("eventID"), 10, 64)
		if err != nil {
			http.Error(w, "invalid event ID", http.StatusBadRequest)
			return
		}
		result, err := db.Exec("DELETE FROM events WHERE id = $1", eventID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if n, _ := result.RowsAffected(); n == 0 {
			http.Error(w, "event not found", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleAddEventAdmin(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireAdmin(w, r); !ok {
			return
		}
		eventID, err := strconv.ParseInt(r.PathValue("eventID"), 10, 64)
		if err != nil {
			http.Error(w, "invalid event ID", http.StatusBadRequest)
			return
		}
		var body struct {
			Email string `json:"email"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Email == "" {
			http.Error(w, "email is required", http.StatusBadRequest)
			return
		}
		var id int64
		err = db.QueryRow("INSERT INTO event_admins (event_id, email) VALUES ($1, $2) RETURNING id", eventID, body.Email).Scan(&id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"id": id, "email": body.Email})
	}
}

func handleRemoveEventAdmin(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireAdmin(w, r); !ok {
			return
		}
		eventID, err := strconv.ParseInt(r.PathValue("eventID"), 10, 64)
		if err != nil {
			http.Error(w, "invalid event ID", http.StatusBadRequest)
			return
		}
		adminID, err := strconv.ParseInt(r.PathValue("adminID"), 10, 64)
		if err != nil {
			http.Error(w, "invalid admin ID", http.StatusBadRequest)
			return
		}
		result, err := db.Exec("DELETE FROM event_admins WHERE id = $1 AND event_id = $2", adminID, eventID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if n, _ := result.RowsAffected(); n == 0 {
			http.Error(w, "event admin not found", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type person struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Host bool   `json:"host"`
}

func loadPeople(db *sql.DB, eventID int64) ([]person, error) {
	rows, err := db.Query("SELECT id, name, is_host FROM people WHERE event_id = $1 ORDER BY id", eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	people := []person{}
	for rows.Next() {
		var p person
		if err := rows.Scan(&p.ID, &p.Name, &p.Host); err != nil {
			return nil, err
		}
		people = append(people, p)
	}
	return people, rows.Err()
}

func handleListPeople(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, eventID, ok := requireEventAdmin(db, w, r)
		if !ok {
			return
		}
		people, err := loadPeople(db, eventID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(people)
	}
}

func handleCreatePerson(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, eventID, ok := requireEventAdmin(db, w, r)
		if !ok {
			return
		}
		var body struct {
			Name string `json:"name"`
			Host bool   `json:"host"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" {
			http.Error(w, "name is required", http.StatusBadRequest)
			return
		}
		var id int64
		err := db.QueryRow("INSERT INTO people (event_id, name, is_host) VALUES ($1, $2, $3) RETURNING id", eventID, body.Name, body.Host).Scan(&id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(person{ID: id, Name: body.Name, Host: body.Host})
	}
}

// handleImportPeople appends everyone listed in a plain people file posted
// as the request body.
func handleImportPeople(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, eventID, ok := requireEventAdmin(db, w, r)
		if !ok {
			return
		}
		listed, err := roster.Parse(http.MaxBytesReader(w, r.Body, 1<<20))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		names := make([]string, len(listed))
		hosts := make([]bool, len(listed))
		for i, p := range listed {
			names[i], hosts[i] = p.Name, p.Host
		}
		result, err := db.Exec(`
			INSERT INTO people (event_id, name, is_host)
			SELECT $1, n, h FROM unnest($2::text[], $3::boolean[]) AS t(n, h)`,
			eventID, pq.Array(names), pq.Array(hosts))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		n, _ := result.RowsAffected()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]int64{"imported": n})
	}
}

func handleDeletePerson(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, eventID, ok := requireEventAdmin(db, w, r)
		if !ok {
			return
		}
		personID, err := strconv.ParseInt(r.PathValue("personID"), 10, 64)
		if err != nil {
			http.Error(w, "invalid person ID", http.StatusBadRequest)
			return
		}
		result, err := db.Exec("DELETE FROM people WHERE id = $1 AND event_id = $2", personID, eventID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if n, _ := result.RowsAffected(); n == 0 {
			http.Error(w, "person not found", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
