package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/utilaudit/utilaudit/internal/detector"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Driver = %q, want sqlite", cfg.Database.Driver)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Detection.HistoryMonths != 24 {
		t.Errorf("HistoryMonths = %d, want 24", cfg.Detection.HistoryMonths)
	}
	if cfg.Detection.DigestSchedule != "0 * * * *" {
		t.Errorf("DigestSchedule = %q", cfg.Detection.DigestSchedule)
	}
}

func TestLoad_InvalidDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")

	if _, err := Load(); err == nil {
		t.Error("expected an error for an unsupported driver")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DETECTION_HISTORY_MONTHS", "12")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Detection.HistoryMonths != 12 {
		t.Errorf("HistoryMonths = %d, want 12", cfg.Detection.HistoryMonths)
	}
}

func TestLoadDetectionSettings(t *testing.T) {
	t.Run("no file configured returns defaults", func(t *testing.T) {
		cfg := &Config{}
		settings, err := cfg.LoadDetectionSettings()
		if err != nil {
			t.Fatalf("LoadDetectionSettings() error = %v", err)
		}
		if settings.Thresholds.YoYDeviationPercent != 20 {
			t.Errorf("YoYDeviationPercent = %v, want 20", settings.Thresholds.YoYDeviationPercent)
		}
	})

	t.Run("file overrides thresholds", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "detection.yaml")
		content := []byte("alert_thresholds:\n  yoy_deviation_percent: 35\n  z_score_threshold: 2.5\nmax_alerts_per_day: 10\n")
		if err := os.WriteFile(path, content, 0o600); err != nil {
			t.Fatalf("write settings file: %v", err)
		}

		cfg := &Config{}
		cfg.Detection.SettingsFile = path

		settings, err := cfg.LoadDetectionSettings()
		if err != nil {
			t.Fatalf("LoadDetectionSettings() error = %v", err)
		}
		if settings.Thresholds.YoYDeviationPercent != 35 {
			t.Errorf("YoYDeviationPercent = %v, want 35", settings.Thresholds.YoYDeviationPercent)
		}
		if settings.Thresholds.ZScoreThreshold != 2.5 {
			t.Errorf("ZScoreThreshold = %v, want 2.5", settings.Thresholds.ZScoreThreshold)
		}
		if settings.MaxAlertsPerDay != 10 {
			t.Errorf("MaxAlertsPerDay = %d, want 10", settings.MaxAlertsPerDay)
		}
		// Checks not named in the file stay enabled.
		if len(settings.EnabledChecks) != len(detector.AllCheckIDs()) {
			t.Errorf("EnabledChecks = %v, want all checks", settings.EnabledChecks)
		}
	})

	t.Run("missing file is an error", func(t *testing.T) {
		cfg := &Config{}
		cfg.Detection.SettingsFile = filepath.Join(t.TempDir(), "absent.yaml")

		if _, err := cfg.LoadDetectionSettings(); err == nil {
			t.Error("expected an error for a missing settings file")
		}
	})
}
