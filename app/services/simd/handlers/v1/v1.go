// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/markblundeberg/miningsim/app/services/simd/handlers/v1/simgrp"
	"github.com/markblundeberg/miningsim/foundation/events"
	"github.com/markblundeberg/miningsim/foundation/mining/runner"
	"github.com/markblundeberg/miningsim/foundation/web"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log    *zap.SugaredLogger
	Runner *runner.Runner
	Evts   *events.Events
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	sgh := simgrp.Handlers{
		Log:    cfg.Log,
		Runner: cfg.Runner,
		WS:     websocket.Upgrader{},
		Evts:   cfg.Evts,
	}

	app.Handle(http.MethodGet, version, "/events", sgh.Events)
	app.Handle(http.MethodGet, version, "/status", sgh.Status)
	app.Handle(http.MethodGet, version, "/miners", sgh.Miners)
	app.Handle(http.MethodGet, version, "/blocks/:from/:count", sgh.Blocks)
	app.Handle(http.MethodPost, version, "/run", sgh.Run)
}
