package handler

import (
	"net/http"
	"strconv"

	"github.com/yndnr/certrotate-go/internal/core/domain"
	"github.com/yndnr/certrotate-go/internal/remote"
)

// handleListSecrets handles GET /status/list_secrets?include_tags=bool.
func (h *Handler) handleListSecrets(w http.ResponseWriter, r *http.Request) {
	includeTags, ok := h.boolParam(w, r, "include_tags", false)
	if !ok {
		return
	}

	all, err := h.secrets.ListAll(r.Context(), includeTags)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	resp := ListSecretsResponse{
		AllSecrets:      all,
		DiscoveryMethod: h.secrets.Discovery(),
		IncludeTags:     includeTags,
	}

	switch resp.DiscoveryMethod {
	case remote.DiscoveryTag:
		key, value := h.secrets.Tag()
		monitored, err := h.secrets.ListByTag(r.Context(), key, value)
		if err != nil {
			h.handleServiceError(w, r, err)
			return
		}
		resp.MonitoredSecrets = withTags(monitored, includeTags)
		resp.DiscoveryConfig = map[string]any{"tag_key": key, "tag_value": value}
	case remote.DiscoveryExplicit:
		names := h.secrets.MonitoredNames()
		resp.MonitoredSecrets = filterByName(all, names)
		resp.DiscoveryConfig = map[string]any{"monitored_secret_names": names}
	default:
		resp.DiscoveryConfig = map[string]any{}
	}

	if resp.AllSecrets == nil {
		resp.AllSecrets = []domain.Summary{}
	}
	if resp.MonitoredSecrets == nil {
		resp.MonitoredSecrets = []domain.Summary{}
	}
	resp.TotalSecrets = len(resp.AllSecrets)
	resp.MonitoredCount = len(resp.MonitoredSecrets)

	h.writeJSON(w, r, http.StatusOK, resp)
}

// handleSecretsByTag handles GET /status/secrets_by_tag?tag_key=&tag_value=.
func (h *Handler) handleSecretsByTag(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("tag_key")
	value := r.URL.Query().Get("tag_value")
	if key == "" || value == "" {
		h.writeError(w, r, http.StatusBadRequest, CodeBadRequest, "tag_key and tag_value are required", nil)
		return
	}
	includeTags, ok := h.boolParam(w, r, "include_tags", true)
	if !ok {
		return
	}

	secrets, err := h.secrets.ListByTag(r.Context(), key, value)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	secrets = withTags(secrets, includeTags)
	if secrets == nil {
		secrets = []domain.Summary{}
	}

	h.writeJSON(w, r, http.StatusOK, SecretsByTagResponse{
		TagFilter:   TagFilter{Key: key, Value: value},
		Secrets:     secrets,
		Count:       len(secrets),
		IncludeTags: includeTags,
	})
}

// boolParam parses an optional boolean query parameter, answering 400
// itself when it is malformed.
func (h *Handler) boolParam(w http.ResponseWriter, r *http.Request, name string, def bool) (bool, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, true
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, CodeBadRequest, name+" must be a boolean", nil)
		return false, false
	}
	return b, true
}

func withTags(summaries []domain.Summary, include bool) []domain.Summary {
	if include {
		return summaries
	}
	out := make([]domain.Summary, len(summaries))
	for i, s := range summaries {
		s.Tags = nil
		out[i] = s
	}
	return out
}

// filterByName keeps summaries whose name or id is in names, in names order.
func filterByName(all []domain.Summary, names []string) []domain.Summary {
	out := make([]domain.Summary, 0, len(names))
	for _, name := range names {
		for _, s := range all {
			if s.Name == name || s.ID == name {
				out = append(out, s)
				break
			}
		}
	}
	return out
}
