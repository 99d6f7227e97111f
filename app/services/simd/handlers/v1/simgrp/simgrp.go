// Package simgrp maintains the group of handlers for simulation access.
package simgrp

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/markblundeberg/miningsim/business/web/errs"
	"github.com/markblundeberg/miningsim/foundation/events"
	"github.com/markblundeberg/miningsim/foundation/mining/runner"
	"github.com/markblundeberg/miningsim/foundation/web"
)

// Handlers manages the set of simulation endpoints.
type Handlers struct {
	Log    *zap.SugaredLogger
	Runner *runner.Runner
	WS     websocket.Upgrader
	Evts   *events.Events
}

// Events handles a web socket to provide block events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	// This handler supports the use of a web browser viewer.
	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case blk, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteJSON(blk); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// Status returns the current state of the simulation.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	st := h.Runner.Status()

	resp := status{
		Running:        st.Running,
		Time:           st.Time,
		Blocks:         st.Blocks,
		BestHeight:     st.BestHeight,
		BestBlockID:    int(st.BestBlock.ID),
		BestChainwork:  st.BestBlock.Chainwork,
		BestDifficulty: st.BestBlock.Difficulty,
		Miners:         st.Miners,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Miners returns the names of the miners currently in the simulation.
func (h Handlers) Miners(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := struct {
		Miners []string `json:"miners"`
	}{
		Miners: h.Runner.Status().Miners,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Blocks returns a range of blocks by id.
func (h Handlers) Blocks(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	from, err := strconv.Atoi(web.Param(r, "from"))
	if err != nil {
		return errs.NewTrusted(errors.New("invalid from block id"), http.StatusBadRequest)
	}

	count, err := strconv.Atoi(web.Param(r, "count"))
	if err != nil || count <= 0 {
		return errs.NewTrusted(errors.New("invalid block count"), http.StatusBadRequest)
	}

	// Keep a single request bounded.
	const maxCount = 10_000
	if count > maxCount {
		count = maxCount
	}

	return web.Respond(ctx, w, h.Runner.Blocks(from, count), http.StatusOK)
}

// Run asks the simulation to mine forward to a given simulated time.
func (h Handlers) Run(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var req runRequest
	if err := web.Decode(r, &req); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	until := req.Until
	if until == 0 {
		if req.Duration <= 0 {
			return errs.NewTrusted(errors.New("until or a positive duration is required"), http.StatusBadRequest)
		}
		until = h.Runner.Status().Time + req.Duration
	}

	h.Log.Infow("run requested", "traceid", v.TraceID, "until", until)
	h.Runner.SignalRun(until)

	resp := struct {
		Status string  `json:"status"`
		Until  float64 `json:"until"`
	}{
		Status: "run signaled",
		Until:  until,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}
