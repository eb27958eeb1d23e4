package internal

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
)

//go:embed inspect.html
var templatesFS embed.FS

type InspectRow struct {
	Key       string
	Type      string
	Timestamp string
	EntityID  string
	Detail    string
}

type RowMapper func(key string, val []byte) InspectRow
type StatsProvider func() map[string]any

type PageData struct {
	Prefix string
	Items  []InspectRow
	Stats  map[string]any
}

// StartDebugServer serves a read-only view over the badger keyspace at
// /inspect?prefix=..., plus whatever live stats the provider reports.
// Development tooling only; never expose it publicly.
func StartDebugServer(db *badger.DB, port int, mapper RowMapper, statsProvider StatsProvider) {
	mux := http.NewServeMux()
	tmpl := template.Must(template.ParseFS(templatesFS, "inspect.html"))

	if mapper == nil {
		mapper = RecordMapper
	}

	mux.HandleFunc("/inspect", func(w http.ResponseWriter, r *http.Request) {
		prefix := r.URL.Query().Get("prefix")
		if prefix == "" {
			prefix = "msg:"
		}

		data := PageData{
			Prefix: prefix,
			Stats:  make(map[string]any),
		}
		if statsProvider != nil {
			data.Stats = statsProvider()
		}

		_ = db.View(func(txn *badger.Txn) error {
			it := txn.NewIterator(badger.DefaultIteratorOptions)
			defer it.Close()
			for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
				item := it.Item()
				_ = item.Value(func(val []byte) error {
					data.Items = append(data.Items, mapper(string(item.Key()), val))
					return nil
				})
			}
			return nil
		})

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = tmpl.Execute(w, data)
	})

	go func() {
		_ = http.ListenAndServe(fmt.Sprintf("localhost:%d", port), mux)
	}()
}

// RecordMapper renders the DM keyspace: user:{username}, msg:{id}, and the
// from:/to: index keys.
func RecordMapper(key string, val []byte) InspectRow {
	row := InspectRow{
		Key:       key,
		Type:      "RAW",
		Timestamp: "--:--:--",
		EntityID:  "--------",
		Detail:    "Size: " + strconv.Itoa(len(val)) + " bytes",
	}

	parts := strings.Split(key, ":")
	switch parts[0] {
	case "user":
		row.Type = "USER"
		row.EntityID = strings.TrimPrefix(key, "user:")
		var rec struct {
			FirstName string     `json:"first_name"`
			LastName  string     `json:"last_name"`
			JoinedAt  time.Time  `json:"joined_at"`
			LastLogin *time.Time `json:"last_login_at"`
		}
		if err := json.Unmarshal(val, &rec); err == nil {
			row.Timestamp = rec.JoinedAt.Format("15:04:05")
			row.Detail = rec.FirstName + " " + rec.LastName
		}
	case "msg":
		row.Type = "MESSAGE"
		row.EntityID = shortID(strings.TrimPrefix(key, "msg:"))
		var rec struct {
			From   string     `json:"from_username"`
			To     string     `json:"to_username"`
			SentAt time.Time  `json:"sent_at"`
			ReadAt *time.Time `json:"read_at"`
		}
		if err := json.Unmarshal(val, &rec); err == nil {
			row.Timestamp = rec.SentAt.Format("15:04:05")
			state := "sent"
			if rec.ReadAt != nil {
				state = "read"
			}
			row.Detail = fmt.Sprintf("%s -> %s (%s)", rec.From, rec.To, state)
		}
	case "from", "to":
		row.Type = "INDEX"
		if len(parts) >= 4 {
			row.EntityID = shortID(parts[3])
			if tsNano, err := strconv.ParseInt(parts[2], 10, 64); err == nil {
				row.Timestamp = time.Unix(0, tsNano).Format("15:04:05")
			}
			row.Detail = parts[0] + " " + parts[1]
		}
	}
	return row
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
