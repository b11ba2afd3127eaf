package app

import (
	"net/http"

	"go.uber.org/zap"
)

// Config holds runtime wiring options for building the client.
type Config struct {
	Home      string       // state directory, e.g. $HOME/.restchat
	ServerURL string       // chat service base URL, e.g. http://127.0.0.1:8000
	HTTP      *http.Client // optional; defaults to http.DefaultClient
	Logger    *zap.Logger  // optional; defaults to zap.NewNop()
}
