package common

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
)

// StatusError carries the http status a handler error should be answered with.
type StatusError struct {
	Status int
	Err    error
}

func (e *StatusError) Error() string {
	return e.Err.Error()
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

func WithStatus(status int, err error) error {
	return &StatusError{Status: status, Err: err}
}

func JsonHandler(fn func(w http.ResponseWriter, r *http.Request, enc *json.Encoder) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == "OPTIONS" {
			RespondToOptions(w, r)
			return
		}
		if origin := r.Header.Get("Origin"); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		w.Header().Set("Content-Type", "application/json")

		err := fn(w, r, json.NewEncoder(w))
		if err != nil {
			status := http.StatusInternalServerError
			var statusErr *StatusError
			if errors.As(err, &statusErr) {
				status = statusErr.Status
			}
			if status >= http.StatusInternalServerError {
				log.Printf("Error handling request: %v", err)
			}
			http.Error(w, err.Error(), status)
		}
	}
}

func RespondToOptions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=3600")
	origin := r.Header.Get("Origin")
	if origin != "" {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Max-Age", "86400")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		w.Header().Set("Access-Control-Allow-Credentials", "true")
	}
	w.Header().Set("Age", "0")
	w.WriteHeader(http.StatusAccepted)
}
