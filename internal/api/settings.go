package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/MikeSquared-Agency/leadlens/internal/store"
)

// SettingsStore reads and writes scalar settings. Missing keys return
// store.ErrNotFound.
type SettingsStore interface {
	GetSetting(ctx context.Context, key string) (string, error)
	PutSetting(ctx context.Context, key, value string) error
}

type memorySettings struct {
	mu     sync.RWMutex
	values map[string]string
}

func newMemorySettings() *memorySettings {
	return &memorySettings{values: make(map[string]string)}
}

func (m *memorySettings) GetSetting(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return "", store.ErrNotFound
	}
	return v, nil
}

func (m *memorySettings) PutSetting(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

type settingsResponse struct {
	AvgTicket       decimal.Decimal `json:"avg_ticket"`
	ReportAPIKey    string          `json:"report_api_key"`
	ReportAPIKeySet bool            `json:"report_api_key_set"`
}

type settingsRequest struct {
	AvgTicket    *decimal.Decimal `json:"avg_ticket"`
	ReportAPIKey *string          `json:"report_api_key" validate:"omitempty,max=256,printascii"`
}

func (s *Server) getSettings(w http.ResponseWriter, r *http.Request) {
	key := s.reportAPIKey(r.Context())
	writeJSON(w, http.StatusOK, settingsResponse{
		AvgTicket:       s.avgTicket(r.Context()),
		ReportAPIKey:    maskKey(key),
		ReportAPIKeySet: key != "",
	})
}

func (s *Server) putSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.AvgTicket != nil && req.AvgTicket.IsNegative() {
		writeError(w, http.StatusBadRequest, "avg_ticket must not be negative")
		return
	}

	ctx := r.Context()
	if req.AvgTicket != nil {
		if err := s.settings.PutSetting(ctx, store.SettingAvgTicket, req.AvgTicket.String()); err != nil {
			s.logger.Error("failed to store setting", "key", store.SettingAvgTicket, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to store settings")
			return
		}
	}
	if req.ReportAPIKey != nil {
		if err := s.settings.PutSetting(ctx, store.SettingReportAPIKey, strings.TrimSpace(*req.ReportAPIKey)); err != nil {
			s.logger.Error("failed to store setting", "key", store.SettingReportAPIKey, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to store settings")
			return
		}
	}
	s.getSettings(w, r)
}

// avgTicket is the stored average deal value, or the default.
func (s *Server) avgTicket(ctx context.Context) decimal.Decimal {
	raw, ok := s.setting(ctx, store.SettingAvgTicket)
	if !ok {
		return s.defaults.AvgTicket
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		s.logger.Warn("invalid stored avg ticket", "value", raw, "error", err)
		return s.defaults.AvgTicket
	}
	return d
}

// reportAPIKey is the stored report credential, or the default. A stored empty
// value clears the credential.
func (s *Server) reportAPIKey(ctx context.Context) string {
	raw, ok := s.setting(ctx, store.SettingReportAPIKey)
	if !ok {
		return s.defaults.ReportAPIKey
	}
	return raw
}

func (s *Server) setting(ctx context.Context, key string) (string, bool) {
	v, err := s.settings.GetSetting(ctx, key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("failed to read setting", "key", key, "error", err)
		}
		return "", false
	}
	return v, true
}

// maskKey keeps the last four characters of a credential.
func maskKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}
