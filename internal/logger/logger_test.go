package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/tordrt/schoolschema/internal/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.LogConfig
		level   zapcore.Level
		wantErr bool
	}{
		{"json info", config.LogConfig{Level: "info", Format: "json"}, zapcore.InfoLevel, false},
		{"console debug", config.LogConfig{Level: "debug", Format: "console"}, zapcore.DebugLevel, false},
		{"bad level", config.LogConfig{Level: "loud", Format: "json"}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}
			if !l.Core().Enabled(tt.level) {
				t.Errorf("Expected level %s to be enabled", tt.level)
			}
			if tt.level > zapcore.DebugLevel && l.Core().Enabled(tt.level-1) {
				t.Errorf("Expected level %s to be disabled", tt.level-1)
			}
		})
	}
}
