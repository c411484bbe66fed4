package middleware

import (
	"encoding/json"
	"net/http"

	apierrors "airmarket/internal/errors"
)

// writeProblem writes an RFC 7807 response outside of chi/render, for
// middleware that runs before the route's content type is negotiated
func writeProblem(w http.ResponseWriter, problem *apierrors.ProblemDetails) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(problem.Status)
	_ = json.NewEncoder(w).Encode(problem)
}
