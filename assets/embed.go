// Package assets embeds the sound effects bosses and the player request
// by name.
package assets

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"
)

//go:embed sounds/*.wav
var assetsFS embed.FS

// LoadFile loads an embedded asset by assets-relative path.
func LoadFile(path string) ([]byte, error) {
	return assetsFS.ReadFile(cleanAssetPath(path))
}

// LoadAudio loads a sound by asset name, e.g. "boss_jump".
func LoadAudio(name string) ([]byte, error) {
	return LoadFile(soundPath(name))
}

// SoundNames lists every embedded sound asset name.
func SoundNames() ([]string, error) {
	entries, err := fs.ReadDir(assetsFS, "sounds")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), path.Ext(e.Name())))
	}
	sort.Strings(names)
	return names, nil
}

// LoadAudioPlayer decodes a sound asset into a player on ctx.
func LoadAudioPlayer(ctx *audio.Context, name string) (*audio.Player, error) {
	b, err := LoadAudio(name)
	if err != nil {
		return nil, err
	}
	stream, err := wav.DecodeWithSampleRate(ctx.SampleRate(), bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("decode wav %q: %w", name, err)
	}
	return ctx.NewPlayer(stream)
}

// LoadAudioLoop is LoadAudioPlayer for a sound that repeats until
// paused.
func LoadAudioLoop(ctx *audio.Context, name string) (*audio.Player, error) {
	b, err := LoadAudio(name)
	if err != nil {
		return nil, err
	}
	stream, err := wav.DecodeWithSampleRate(ctx.SampleRate(), bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("decode wav %q: %w", name, err)
	}
	return ctx.NewPlayer(audio.NewInfiniteLoop(stream, stream.Length()))
}

func soundPath(name string) string {
	if path.Ext(name) == "" {
		name += ".wav"
	}
	if !strings.Contains(name, "/") {
		name = "sounds/" + name
	}
	return name
}

func cleanAssetPath(p string) string {
	if p == "" {
		return ""
	}
	s := filepath.ToSlash(p)
	if filepath.IsAbs(p) {
		if idx := strings.LastIndex(s, "/assets/"); idx >= 0 {
			return s[idx+len("/assets/"):]
		}
		return path.Base(s)
	}
	return strings.TrimPrefix(s, "assets/")
}
