package handlers

import (
	"net/http"

	"cablecalc/internal/engine"
)

// ReferenceHandler exposes the loaded catalogues so clients can build
// their selection lists from the same data the engine computes with.
type ReferenceHandler struct {
	eng *engine.Engine
}

func NewReferenceHandler(eng *engine.Engine) *ReferenceHandler {
	return &ReferenceHandler{eng: eng}
}

// GetCatalogues returns every user-selectable catalogue
func (h *ReferenceHandler) GetCatalogues(w http.ResponseWriter, r *http.Request) {
	t := h.eng.Tables()
	writeJSON(w, http.StatusOK, map[string]any{
		"insulations":          t.Insulations,
		"conductors":           t.ConductorTypes,
		"voltage_levels":       t.VoltageLevels,
		"media":                t.Media,
		"installation_methods": t.InstallationMethods,
		"standard_sections":    t.StandardSections,
		"method_preference":    t.MethodPreference,
		"breaker_ratings":      t.BreakerRatings,
		"drop_limits":          t.DropLimits,
	})
}
