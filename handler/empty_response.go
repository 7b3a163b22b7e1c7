package handler

import "net/http"

type emptyResponse struct {
	status int
}

func (e emptyResponse) Render(w http.ResponseWriter, r *http.Request) error {
	w.WriteHeader(e.status)
	return nil
}

// NoContent returns an empty 204 response.
func NoContent() Response {
	return emptyResponse{status: http.StatusNoContent}
}
