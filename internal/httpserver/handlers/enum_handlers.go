package handlers

import (
	"net/http"

	"stockroom/internal/models"
)

type option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

func options[T ~string](values []T) []option {
	out := make([]option, len(values))
	for i, v := range values {
		out[i] = option{Value: string(v), Label: string(v)}
	}
	return out
}

var enumTables = map[string][]option{
	"categories":       options(models.Categories),
	"units":            options(models.Units),
	"movement-types":   options(models.MovementTypes),
	"priorities":       options(models.Priorities),
	"request-statuses": options(models.RequestStatuses),
	"order-statuses":   options(models.OrderStatuses),
	"roles":            options(models.Roles),
}

func Enum(w http.ResponseWriter, r *http.Request) {
	opts, ok := enumTables[urlParam(r, "name")]
	if !ok {
		http.Error(w, "unknown enum", http.StatusNotFound)
		return
	}
	respondJSON(w, opts)
}
