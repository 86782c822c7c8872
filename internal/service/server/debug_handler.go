package server

import (
	"net/http"
	"time"

	"github.com/docker/go-units"
	"go.uber.org/zap"

	"github.com/vertextoedge/validfiles/internal/domain"
	"github.com/vertextoedge/validfiles/internal/port"
)

// DebugHandler handles debug endpoint requests
type DebugHandler struct {
	files    FileService
	activity port.ActivityRepository
	storage  port.StorageMaintainer
	logger   *zap.Logger
}

// NewDebugHandler creates a new DebugHandler. activity and storage are optional.
func NewDebugHandler(files FileService, activity port.ActivityRepository, storage port.StorageMaintainer, logger *zap.Logger) *DebugHandler {
	return &DebugHandler{
		files:    files,
		activity: activity,
		storage:  storage,
		logger:   logger,
	}
}

type storedStats struct {
	Count      int    `json:"count"`
	Bytes      int64  `json:"bytes"`
	BytesHuman string `json:"bytes_human"`
}

type diskStats struct {
	Total     uint64  `json:"total"`
	Used      uint64  `json:"used"`
	Free      uint64  `json:"free"`
	UsedPct   float64 `json:"used_pct"`
	FreeHuman string  `json:"free_human"`
}

type activityEntry struct {
	Action    string    `json:"action"`
	FileName  string    `json:"file_name"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

type statsResponse struct {
	Stored   storedStats           `json:"stored"`
	Activity *domain.ActivityStats `json:"activity,omitempty"`
	Recent   []activityEntry       `json:"recent,omitempty"`
	Disk     *diskStats            `json:"disk,omitempty"`
}

// recentActivityLimit caps the activity entries in /debug/stats
const recentActivityLimit = 10

// HandleStats handles debug statistics requests
func (h *DebugHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	files, err := h.files.ListFiles(r.Context())
	if err != nil {
		writeError(w, h.logger, "failed to list files", err)
		return
	}

	var resp statsResponse
	for _, f := range files {
		resp.Stored.Count++
		resp.Stored.Bytes += f.Size
	}
	resp.Stored.BytesHuman = units.BytesSize(float64(resp.Stored.Bytes))

	if h.activity != nil {
		stats, err := h.activity.GetActivityStats(r.Context())
		if err != nil {
			h.logger.Error("failed to get activity stats", zap.Error(err))
			http.Error(w, "Failed to get activity stats", http.StatusInternalServerError)
			return
		}
		resp.Activity = stats

		recent, err := h.activity.ListRecent(r.Context(), recentActivityLimit)
		if err != nil {
			h.logger.Error("failed to list recent activity", zap.Error(err))
			http.Error(w, "Failed to list recent activity", http.StatusInternalServerError)
			return
		}
		for _, a := range recent {
			resp.Recent = append(resp.Recent, activityEntry{
				Action:    a.Action,
				FileName:  a.FileName,
				Size:      a.Size,
				CreatedAt: a.CreatedAt,
			})
		}
	}

	if h.storage != nil {
		usage, err := h.storage.GetDiskUsage()
		if err != nil {
			// Not fatal: some filesystems don't report usage
			h.logger.Warn("failed to get disk usage", zap.Error(err))
		} else {
			resp.Disk = &diskStats{
				Total:     usage.Total,
				Used:      usage.Used,
				Free:      usage.Free,
				UsedPct:   usage.UsedPct,
				FreeHuman: units.BytesSize(float64(usage.Free)),
			}
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
