package spotify

import (
	"context"
	"fmt"
	"strings"

	spotifyapi "github.com/zmb3/spotify/v2"

	"github.com/ayusman/mudra/internal/action"
)

// Track summarizes the item currently loaded in the player.
type Track struct {
	Name       string `json:"track_name"`
	Artist     string `json:"artist"`
	Album      string `json:"album"`
	IsPlaying  bool   `json:"is_playing"`
	ProgressMs int    `json:"progress_ms"`
	DurationMs int    `json:"duration_ms"`
}

// Play resumes playback on the active device.
func (c *Client) Play(ctx context.Context) error {
	return c.call(func(api *spotifyapi.Client) error { return api.Play(ctx) })
}

// Pause pauses playback on the active device.
func (c *Client) Pause(ctx context.Context) error {
	return c.call(func(api *spotifyapi.Client) error { return api.Pause(ctx) })
}

// Next skips to the next track.
func (c *Client) Next(ctx context.Context) error {
	return c.call(func(api *spotifyapi.Client) error { return api.Next(ctx) })
}

// Previous skips to the previous track.
func (c *Client) Previous(ctx context.Context) error {
	return c.call(func(api *spotifyapi.Client) error { return api.Previous(ctx) })
}

// SetVolume sets the device volume, clamped to 0..100, and returns the
// value sent.
func (c *Client) SetVolume(ctx context.Context, percent int) (int, error) {
	percent = clampVolume(percent)
	err := c.call(func(api *spotifyapi.Client) error { return api.Volume(ctx, percent) })
	if err != nil {
		return 0, err
	}
	return percent, nil
}

// VolumeUp raises the volume by the configured step.
func (c *Client) VolumeUp(ctx context.Context) (int, error) {
	return c.changeVolume(ctx, c.volumeStep)
}

// VolumeDown lowers the volume by the configured step.
func (c *Client) VolumeDown(ctx context.Context) (int, error) {
	return c.changeVolume(ctx, -c.volumeStep)
}

func (c *Client) changeVolume(ctx context.Context, delta int) (int, error) {
	state, err := c.playerState(ctx)
	if err != nil {
		return 0, err
	}
	if state.Device.ID == "" {
		return 0, ErrNoActiveDevice
	}
	return c.SetVolume(ctx, int(state.Device.Volume)+delta)
}

// CurrentTrack returns the track loaded in the player.
func (c *Client) CurrentTrack(ctx context.Context) (*Track, error) {
	state, err := c.playerState(ctx)
	if err != nil {
		return nil, err
	}
	item := state.Item
	if item == nil {
		return nil, ErrNothingPlaying
	}

	artists := make([]string, len(item.Artists))
	for i, a := range item.Artists {
		artists[i] = a.Name
	}

	return &Track{
		Name:       item.Name,
		Artist:     strings.Join(artists, ", "),
		Album:      item.Album.Name,
		IsPlaying:  state.Playing,
		ProgressMs: int(state.Progress),
		DurationMs: int(item.Duration),
	}, nil
}

// playerState returns an empty state when nothing is playing anywhere.
func (c *Client) playerState(ctx context.Context) (*spotifyapi.PlayerState, error) {
	var state *spotifyapi.PlayerState
	err := c.call(func(api *spotifyapi.Client) error {
		var err error
		state, err = api.PlayerState(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	if state == nil {
		state = &spotifyapi.PlayerState{}
	}
	return state, nil
}

// Dispatch performs a gesture action.
func (c *Client) Dispatch(ctx context.Context, a action.Action) (*action.Result, error) {
	var (
		err    error
		volume int
	)

	switch a {
	case action.Resume:
		err = c.Play(ctx)
	case action.Pause:
		err = c.Pause(ctx)
	case action.Next:
		err = c.Next(ctx)
	case action.Previous:
		err = c.Previous(ctx)
	case action.Increase:
		volume, err = c.VolumeUp(ctx)
	case action.Decrease:
		volume, err = c.VolumeDown(ctx)
	default:
		return nil, fmt.Errorf("spotify: unsupported action %q", a)
	}
	if err != nil {
		return nil, err
	}

	res := &action.Result{Action: a}
	if a == action.Increase || a == action.Decrease {
		res.Detail = fmt.Sprintf("volume %d%%", volume)
	}
	return res, nil
}

func clampVolume(v int) int {
	return max(0, min(100, v))
}
