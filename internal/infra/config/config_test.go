package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "speaker", cfg.Audio.Output)
	assert.Empty(t, cfg.Storage.Path)
	assert.False(t, cfg.Playback.ResetOnStart)
}

func TestLoad_ParsesFile(t *testing.T) {
	content := `
storage:
  path: /tmp/bytemusic/state.db
library:
  import_dir: /tmp/bytemusic/import
  seed:
    - id: s1
      title: IK Kudi
      artist: Arpit Bala
      src: /assets/sample1.mp3
      cover: /assets/cover1.jpg
    - id: s2
      title: Blue
      artist: yung kai
      src: /assets/sample2.mp3
playback:
  reset_on_start: true
audio:
  output: "null"
  settings:
    sample_rate: 48000
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/bytemusic/state.db", cfg.Storage.Path)
	assert.Equal(t, "/tmp/bytemusic/import", cfg.Library.ImportDir)
	require.Len(t, cfg.Library.Seed, 2)
	assert.Equal(t, "IK Kudi", cfg.Library.Seed[0].Title)
	assert.True(t, cfg.Playback.ResetOnStart)
	assert.Equal(t, "null", cfg.Audio.Output)
	assert.Equal(t, 48000, cfg.Audio.Settings["sample_rate"])
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("BYTEMUSIC_STATE_PATH", "/env/state.db")
	t.Setenv("BYTEMUSIC_AUDIO_OUTPUT", "null")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "/env/state.db", cfg.Storage.Path)
	assert.Equal(t, "null", cfg.Audio.Output)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid config",
			config: Config{
				Audio: AudioConfig{Output: "speaker"},
			},
			wantErr: false,
		},
		{
			name: "unknown audio output",
			config: Config{
				Audio: AudioConfig{Output: "midi"},
			},
			wantErr: true,
			errMsg:  "Output",
		},
		{
			name: "seed song without src",
			config: Config{
				Audio: AudioConfig{Output: "speaker"},
				Library: LibraryConfig{
					Seed: []SeedSong{{ID: "s1", Title: "No Source"}},
				},
			},
			wantErr: true,
			errMsg:  "Src",
		},
		{
			name: "duplicate seed ids",
			config: Config{
				Audio: AudioConfig{Output: "speaker"},
				Library: LibraryConfig{
					Seed: []SeedSong{
						{ID: "s1", Title: "One", Src: "/a.mp3"},
						{ID: "s1", Title: "Two", Src: "/b.mp3"},
					},
				},
			},
			wantErr: true,
			errMsg:  "duplicate seed song id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage: ["), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}
