package http

import (
	"net/http"

	"github.com/codeb-platform/codeb-backend-go/internal/domain/worksettings"
	"github.com/codeb-platform/codeb-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type WorkSettingsHandler interface {
	GetSettings(w http.ResponseWriter, r *http.Request)
	UpdateSettings(w http.ResponseWriter, r *http.Request)
	ListWifiNetworks(w http.ResponseWriter, r *http.Request)
	CreateWifiNetwork(w http.ResponseWriter, r *http.Request)
	UpdateWifiNetwork(w http.ResponseWriter, r *http.Request)
	DeleteWifiNetwork(w http.ResponseWriter, r *http.Request)
	VerifyWifi(w http.ResponseWriter, r *http.Request)
}

type workSettingsHandlerImpl struct {
	settingsService worksettings.WorkSettingsService
}

func NewWorkSettingsHandler(settingsService worksettings.WorkSettingsService) WorkSettingsHandler {
	return &workSettingsHandlerImpl{
		settingsService: settingsService,
	}
}

// GetSettings implements WorkSettingsHandler.
func (h *workSettingsHandlerImpl) GetSettings(w http.ResponseWriter, r *http.Request) {
	result, err := h.settingsService.GetSettings(r.Context(), r.URL.Query().Get("workspaceId"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// UpdateSettings implements WorkSettingsHandler.
func (h *workSettingsHandlerImpl) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req worksettings.UpdateSettingsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.settingsService.UpdateSettings(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Work settings updated", result)
}

// ListWifiNetworks implements WorkSettingsHandler.
func (h *workSettingsHandlerImpl) ListWifiNetworks(w http.ResponseWriter, r *http.Request) {
	result, err := h.settingsService.ListWifiNetworks(r.Context(), r.URL.Query().Get("workspaceId"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result, &response.Meta{Total: len(result)})
}

// CreateWifiNetwork implements WorkSettingsHandler.
func (h *workSettingsHandlerImpl) CreateWifiNetwork(w http.ResponseWriter, r *http.Request) {
	var req worksettings.CreateWifiNetworkRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.settingsService.CreateWifiNetwork(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "WiFi network registered", result)
}

// UpdateWifiNetwork implements WorkSettingsHandler.
func (h *workSettingsHandlerImpl) UpdateWifiNetwork(w http.ResponseWriter, r *http.Request) {
	var req worksettings.UpdateWifiNetworkRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.settingsService.UpdateWifiNetwork(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "WiFi network updated", result)
}

// DeleteWifiNetwork implements WorkSettingsHandler.
func (h *workSettingsHandlerImpl) DeleteWifiNetwork(w http.ResponseWriter, r *http.Request) {
	err := h.settingsService.DeleteWifiNetwork(r.Context(), r.URL.Query().Get("workspaceId"), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "WiFi network deleted", nil)
}

// VerifyWifi implements WorkSettingsHandler.
func (h *workSettingsHandlerImpl) VerifyWifi(w http.ResponseWriter, r *http.Request) {
	var req worksettings.VerifyWifiRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.settingsService.VerifyWifi(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
