package main

import (
	"github.com/hajimehoshi/ebiten/v2/audio"
	"go.uber.org/zap"

	"github.com/milk9111/robotmasters/assets"
	"github.com/milk9111/robotmasters/config"
	"github.com/milk9111/robotmasters/sound"
)

// audioSink plays drained sound requests. Players are created once per
// asset and rewound on every request.
type audioSink struct {
	ctx     *audio.Context
	volume  float64
	log     *zap.Logger
	players map[sound.Request]*audio.Player
	missing map[string]bool
}

func newAudioSink(cfg config.AudioConfig, log *zap.Logger) *audioSink {
	if !cfg.Enabled {
		return nil
	}
	return &audioSink{
		ctx:     audio.NewContext(cfg.SampleRate),
		volume:  cfg.Volume,
		log:     log,
		players: map[sound.Request]*audio.Player{},
		missing: map[string]bool{},
	}
}

func (s *audioSink) Play(reqs []sound.Request) {
	if s == nil {
		return
	}
	for _, req := range reqs {
		p, err := s.player(req)
		if err != nil {
			if !s.missing[req.Asset] {
				s.missing[req.Asset] = true
				s.log.Warn("sound unavailable", zap.String("asset", req.Asset), zap.Error(err))
			}
			continue
		}
		if req.Loop && p.IsPlaying() {
			continue
		}
		if err := p.SetPosition(0); err != nil {
			s.log.Debug("rewind failed", zap.String("asset", req.Asset), zap.Error(err))
		}
		p.Play()
	}
}

func (s *audioSink) player(req sound.Request) (*audio.Player, error) {
	if p, ok := s.players[req]; ok {
		return p, nil
	}
	load := assets.LoadAudioPlayer
	if req.Loop {
		load = assets.LoadAudioLoop
	}
	p, err := load(s.ctx, req.Asset)
	if err != nil {
		return nil, err
	}
	p.SetVolume(s.volume)
	s.players[req] = p
	return p, nil
}

// StopLoops pauses every looping sound, e.g. on restart.
func (s *audioSink) StopLoops() {
	if s == nil {
		return
	}
	for req, p := range s.players {
		if req.Loop {
			p.Pause()
		}
	}
}
