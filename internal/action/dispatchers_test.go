package action

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/ayusman/mudra/internal/plugin"
)

// installPlugin writes a shell-script plugin under root and returns a
// manager that has discovered it.
func installPlugin(t *testing.T, name string, actions []string, script string) *plugin.Manager {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	root := t.TempDir()
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}

	manifest, _ := json.Marshal(plugin.Manifest{Name: name, Executable: "run.sh", Actions: actions})
	if err := os.WriteFile(filepath.Join(dir, plugin.ManifestFile), manifest, 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "run.sh"), []byte("#!/bin/sh\n"+script), 0755); err != nil {
		t.Fatal(err)
	}

	m := plugin.NewManager(root, nil)
	if err := m.Discover(); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	return m
}

func TestPluginDispatcher_Dispatch(t *testing.T) {
	// The plugin echoes its request back as data.
	m := installPlugin(t, "echo", nil, `INPUT=$(cat)
echo "{\"success\":true,\"data\":$INPUT}"
`)
	d := NewPluginDispatcher(m, plugin.NewExecutor(5*time.Second), "echo", 15)

	res, err := d.Dispatch(context.Background(), Increase)
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if res.Action != Increase {
		t.Errorf("Result.Action = %s", res.Action)
	}

	var req plugin.Request
	if err := json.Unmarshal([]byte(res.Detail), &req); err != nil {
		t.Fatalf("decode echoed request: %v", err)
	}
	if req.Action != "increase" {
		t.Errorf("plugin received action %q", req.Action)
	}
	if string(req.Params) != `{"step":15}` {
		t.Errorf("plugin received params %s", req.Params)
	}

	res, err = d.Dispatch(context.Background(), Next)
	if err != nil {
		t.Fatalf("Dispatch(next) error = %v", err)
	}
	if strings.Contains(res.Detail, "step") {
		t.Errorf("next should carry no params: %s", res.Detail)
	}
}

func TestPluginDispatcher_Failures(t *testing.T) {
	m := installPlugin(t, "picky", []string{"pause"}, `echo '{"success":false,"error":"player not running"}'`)
	exec := plugin.NewExecutor(5 * time.Second)

	t.Run("missing plugin", func(t *testing.T) {
		d := NewPluginDispatcher(m, exec, "absent", 10)
		if _, err := d.Dispatch(context.Background(), Pause); !errors.Is(err, plugin.ErrPluginNotFound) {
			t.Errorf("error = %v, want ErrPluginNotFound", err)
		}
	})

	t.Run("unsupported action", func(t *testing.T) {
		d := NewPluginDispatcher(m, exec, "picky", 10)
		_, err := d.Dispatch(context.Background(), Resume)
		if err == nil || !strings.Contains(err.Error(), "does not support") {
			t.Errorf("error = %v, want unsupported action", err)
		}
	})

	t.Run("plugin reports failure", func(t *testing.T) {
		d := NewPluginDispatcher(m, exec, "picky", 10)
		_, err := d.Dispatch(context.Background(), Pause)
		if err == nil || !strings.Contains(err.Error(), "player not running") {
			t.Errorf("error = %v, want plugin message", err)
		}
	})
}
