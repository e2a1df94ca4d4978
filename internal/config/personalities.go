package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// Personality is one mentor preset: how the mentor speaks and which TTS
// voice it uses.
type Personality struct {
	Key          string `yaml:"key"`
	DisplayName  string `yaml:"displayName"`
	Voice        string `yaml:"voice"`
	SystemPrompt string `yaml:"systemPrompt"`
}

type personalitiesFile struct {
	Personalities []Personality `yaml:"personalities"`
}

// Personalities holds the loaded presets and hot-reloads them when the
// YAML file changes on disk.
type Personalities struct {
	mu    sync.RWMutex
	path  string
	byKey map[string]Personality
}

// LoadPersonalities reads the preset file. A missing file is not fatal:
// the mentor then runs with a single built-in default preset.
func LoadPersonalities(path string) (*Personalities, error) {
	p := &Personalities{path: path, byKey: map[string]Personality{}}
	if err := p.reload(); err != nil {
		if os.IsNotExist(err) {
			log.Printf("⚠️  Personalities file %s not found, using built-in default", path)
			return p, nil
		}
		return nil, err
	}
	return p, nil
}

func (p *Personalities) reload() error {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return err
	}

	var file personalitiesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse personalities YAML: %w", err)
	}

	byKey := make(map[string]Personality, len(file.Personalities))
	for _, pers := range file.Personalities {
		if pers.Key == "" {
			continue
		}
		byKey[pers.Key] = pers
	}

	p.mu.Lock()
	p.byKey = byKey
	p.mu.Unlock()

	log.Printf("✅ Loaded %d mentor personalities from %s", len(byKey), p.path)
	return nil
}

// Get resolves a personality key, falling back to a built-in default so a
// stale stored key never breaks the mentor.
func (p *Personalities) Get(key string) Personality {
	p.mu.RLock()
	pers, ok := p.byKey[key]
	p.mu.RUnlock()
	if ok {
		return pers
	}
	return Personality{
		Key:         key,
		DisplayName: "Mentor",
		Voice:       "onyx",
		SystemPrompt: "You are a warm, direct mentor versed in German New Medicine. " +
			"Guide the person through their Biological Code Blueprint with empathy and specifics.",
	}
}

// All returns the loaded personalities sorted by key.
func (p *Personalities) All() []Personality {
	p.mu.RLock()
	out := make([]Personality, 0, len(p.byKey))
	for _, pers := range p.byKey {
		out = append(out, pers)
	}
	p.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Watch hot-reloads the preset file until stop is closed. Watching the
// directory rather than the file survives editors that replace the file.
func (p *Personalities) Watch(stop <-chan struct{}) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("⚠️  Failed to create personalities watcher: %v", err)
		return
	}
	defer watcher.Close()

	absPath, err := filepath.Abs(p.path)
	if err != nil {
		log.Printf("⚠️  Failed to resolve %s: %v", p.path, err)
		return
	}
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		log.Printf("⚠️  Failed to watch %s: %v", filepath.Dir(absPath), err)
		return
	}

	log.Printf("👁️  Watching %s for changes (hot-reload enabled)", p.path)

	var debounce *time.Timer
	filename := filepath.Base(absPath)
	for {
		select {
		case <-stop:
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(500*time.Millisecond, func() {
				if err := p.reload(); err != nil {
					log.Printf("⚠️  Personalities reload failed: %v", err)
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Printf("⚠️  Personalities watcher error: %v", err)
		}
	}
}
