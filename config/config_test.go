package config

import (
	"os"
	"path"
	"testing"
)

func TestDefaults(t *testing.T) {
	t.Setenv(EnvSave, "")
	t.Setenv(EnvSeed, "")
	t.Setenv(EnvRedis, "")
	t.Setenv(EnvNoColor, "")
	c, err := FromEnv()
	if err != nil {
		t.Fatal(err)
	}
	if c != Default() {
		t.Errorf("expected defaults, got %+v", c)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvSave, "out")
	t.Setenv(EnvSeed, "42")
	t.Setenv(EnvRedis, "localhost:6379")
	t.Setenv(EnvNoColor, "true")
	c, err := FromEnv()
	if err != nil {
		t.Fatal(err)
	}
	want := Config{SaveDir: "out", Seed: 42, RedisAddr: "localhost:6379", NoColor: true}
	if c != want {
		t.Errorf("expected %+v, got %+v", want, c)
	}
}

func TestFromEnvErrors(t *testing.T) {
	t.Setenv(EnvSeed, "minus one")
	if _, err := FromEnv(); err == nil {
		t.Error("expected an error for a bad seed")
	}
	t.Setenv(EnvSeed, "")
	t.Setenv(EnvNoColor, "sometimes")
	if _, err := FromEnv(); err == nil {
		t.Error("expected an error for a bad no color flag")
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	file := path.Join(dir, "test.env")
	if err := os.WriteFile(file, []byte("VACUUM_SEED=7\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvSeed, "")
	os.Unsetenv(EnvSeed)

	if got := LoadEnvFile(path.Join(dir, "missing.env"), file); got != file {
		t.Fatalf("expected %s to be loaded, got %q", file, got)
	}
	c, err := FromEnv()
	if err != nil {
		t.Fatal(err)
	}
	if c.Seed != 7 {
		t.Errorf("expected seed 7, got %d", c.Seed)
	}
}
