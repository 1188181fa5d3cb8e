package config

import (
	"testing"
)

func setValidEnv(t *testing.T) {
	t.Helper()
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("STORE", "")
	t.Setenv("RUN_MODE", "")
	t.Setenv("TZ", "")
	t.Setenv("REGION", "")
}

func TestLoadDefaults(t *testing.T) {
	setValidEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Store != StoreSQLite || cfg.RunMode != ModePolling {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if _, err := cfg.Location(); err != nil {
		t.Fatalf("default TZ must load: %v", err)
	}
}

func TestLoadMissingToken(t *testing.T) {
	setValidEnv(t)
	t.Setenv("BOT_TOKEN", "")

	if _, err := Load(); err == nil {
		t.Fatal("missing BOT_TOKEN must be fatal")
	}
}

func TestLoadInvalidTZ(t *testing.T) {
	setValidEnv(t)
	t.Setenv("TZ", "Atlantis/Lost")

	if _, err := Load(); err == nil {
		t.Fatal("unparseable TZ must be fatal")
	}
}

func TestLoadUnknownRunMode(t *testing.T) {
	setValidEnv(t)
	t.Setenv("RUN_MODE", "serverless")

	if _, err := Load(); err == nil {
		t.Fatal("unknown RUN_MODE must be fatal")
	}
}

func TestLoadUnknownStore(t *testing.T) {
	setValidEnv(t)
	t.Setenv("STORE", "mongodb")

	if _, err := Load(); err == nil {
		t.Fatal("unknown STORE must be fatal")
	}
}
