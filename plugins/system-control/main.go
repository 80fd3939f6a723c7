// Package main is the system-control plugin for macOS. It maps playback
// actions to media keys and the system output volume via AppleScript.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
)

const defaultVolumeStep = 10

type request struct {
	Action  string          `json:"action"`
	Gesture string          `json:"gesture"`
	EventID string          `json:"event_id,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type volumeParams struct {
	Step int `json:"step"`
}

type handler func(params json.RawMessage) error

var handlers = map[string]handler{
	"resume":   func(json.RawMessage) error { return mediaKey(100) },
	"pause":    func(json.RawMessage) error { return mediaKey(100) },
	"next":     func(json.RawMessage) error { return mediaKey(101) },
	"previous": func(json.RawMessage) error { return mediaKey(98) },
	"increase": func(p json.RawMessage) error { return changeVolume(volumeStep(p)) },
	"decrease": func(p json.RawMessage) error { return changeVolume(-volumeStep(p)) },
}

func main() {
	var req request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		reply(fmt.Errorf("decode request: %w", err))
		return
	}

	h, ok := handlers[req.Action]
	if !ok {
		reply(fmt.Errorf("unknown action: %s", req.Action))
		return
	}

	if err := h(req.Params); err != nil {
		reply(fmt.Errorf("action %s failed: %w", req.Action, err))
		return
	}
	reply(nil)
}

func reply(err error) {
	resp := response{Success: err == nil}
	if err != nil {
		resp.Error = err.Error()
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}

func volumeStep(params json.RawMessage) int {
	var p volumeParams
	if len(params) > 0 && json.Unmarshal(params, &p) == nil && p.Step > 0 {
		return p.Step
	}
	return defaultVolumeStep
}

// mediaKey presses a media key. The play/pause key is a toggle, so resume
// and pause both send it.
func mediaKey(code int) error {
	return osascript(fmt.Sprintf(`tell application "System Events" to key code %d`, code))
}

func changeVolume(delta int) error {
	return osascript(fmt.Sprintf(
		`set volume output volume ((output volume of (get volume settings)) + %d)`, delta))
}

func osascript(script string) error {
	out, err := exec.Command("osascript", "-e", script).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, out)
	}
	return nil
}
