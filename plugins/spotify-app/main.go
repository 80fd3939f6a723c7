// Package main is the spotify-app plugin for macOS. It drives the Spotify
// desktop application through its AppleScript dictionary, for setups without
// Web API access.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

type request struct {
	Action string          `json:"action"`
	Params json.RawMessage `json:"params,omitempty"`
}

type response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type volumeParams struct {
	Step int `json:"step"`
}

// outputData carries whatever the AppleScript printed, such as a volume.
type outputData struct {
	Output string `json:"output"`
}

// commands holds the AppleScript statement run inside the Spotify tell block.
var commands = map[string]string{
	"resume":   "play",
	"pause":    "pause",
	"next":     "next track",
	"previous": "previous track",
}

func main() {
	var req request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		fail(fmt.Sprintf("decode request: %v", err))
		return
	}

	script, err := buildScript(req.Action, req.Params)
	if err != nil {
		fail(err.Error())
		return
	}

	out, err := tellSpotify(script)
	if err != nil {
		fail(fmt.Sprintf("action %s failed: %v", req.Action, err))
		return
	}

	resp, err := successResponse(out)
	if err != nil {
		fail(err.Error())
		return
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}

func successResponse(out string) (response, error) {
	resp := response{Success: true}
	if out == "" {
		return resp, nil
	}
	data, err := json.Marshal(outputData{Output: out})
	if err != nil {
		return response{}, fmt.Errorf("encode output: %w", err)
	}
	resp.Data = data
	return resp, nil
}

func buildScript(action string, params json.RawMessage) (string, error) {
	if cmd, ok := commands[action]; ok {
		return cmd, nil
	}

	step := 10
	var p volumeParams
	if len(params) > 0 && json.Unmarshal(params, &p) == nil && p.Step > 0 {
		step = p.Step
	}

	switch action {
	case "increase":
		return fmt.Sprintf("set sound volume to (sound volume + %d)", step), nil
	case "decrease":
		return fmt.Sprintf("set sound volume to (sound volume - %d)", step), nil
	}
	return "", fmt.Errorf("unknown action: %s", action)
}

func tellSpotify(statement string) (string, error) {
	script := fmt.Sprintf("tell application \"Spotify\"\n\t%s\nend tell", statement)
	out, err := exec.Command("osascript", "-e", script).CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("%w: %s", err, out)
	}
	return strings.TrimSpace(string(out)), nil
}

func fail(msg string) {
	json.NewEncoder(os.Stdout).Encode(response{Error: msg})
}
