package audio

import (
	"github.com/cockroachdb/errors"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"

	"github.com/okizeme/bytemusic/internal/infra/config"
)

// NewFromConfig creates an output device from configuration.
func NewFromConfig(cfg config.AudioConfig) (Device, error) {
	switch cfg.Output {
	case "speaker", "":
		var settings SpeakerSettings
		if err := mapstructure.Decode(cfg.Settings, &settings); err != nil {
			return nil, errors.Wrap(err, "failed to decode speaker settings")
		}
		zlog.Debug().Msgf("audio: speaker output: settings=%+v", settings)
		return NewSpeaker(settings), nil

	case "null":
		zlog.Info().Msg("audio: null output, playback will be silent")
		return NewNull(), nil

	default:
		return nil, errors.Newf("unsupported audio output: %s", cfg.Output)
	}
}
