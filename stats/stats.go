// Package dummystats keeps a running count of placeholders created per
// system and renders it as a bar chart.
package dummystats

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"sync"

	"github.com/spf13/afero"
	"github.com/wcharczuk/go-chart/v2"
)

// ErrNoData is returned by Graph before anything has been recorded.
var ErrNoData = errors.New("dummystats: no placeholders recorded yet")

type PopulationStats struct {
	Systems   map[string]int
	StateFile string
	Fs        afero.Fs

	mu sync.RWMutex
}

// New returns stats backed by stateFile on fs, loaded from disk.
func New(fs afero.Fs, stateFile string) *PopulationStats {
	p := &PopulationStats{StateFile: stateFile, Fs: fs}
	p.Load()
	return p
}

// Graph writes an SVG bar chart of the per-system counts, sorted by system
// name, followed by the total.
func (p *PopulationStats) Graph(w io.Writer) error {
	p.mu.RLock()
	names := make([]string, 0, len(p.Systems))
	for k := range p.Systems {
		names = append(names, k)
	}
	sort.Strings(names)
	bars := []chart.Value{
		{Value: float64(0), Label: "baseline"},
	}
	total := 0
	for _, k := range names {
		v := p.Systems[k]
		total += v
		bars = append(bars, chart.Value{Value: float64(v), Label: k})
	}
	p.mu.RUnlock()
	if total == 0 {
		return ErrNoData
	}
	bars = append(bars, chart.Value{Value: float64(total), Label: "Total placeholders"})

	graph := chart.BarChart{
		Title: "Placeholders by system",
		Background: chart.Style{
			Padding: chart.Box{
				Top:   40,
				Left:  10,
				Right: 10,
			},
		},
		Height:   256,
		BarWidth: 20,
		Bars:     bars,
	}
	if err := graph.Render(chart.SVG, w); err != nil {
		return fmt.Errorf("dummystats: render: %w", err)
	}
	return nil
}

// Add records n new placeholders for system.
func (p *PopulationStats) Add(system string, n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Systems == nil {
		p.Systems = make(map[string]int)
	}
	p.Systems[system] += n
}

// Total is the sum over all systems.
func (p *PopulationStats) Total() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	total := 0
	for _, v := range p.Systems {
		total += v
	}
	return total
}

func (p *PopulationStats) Save() error {
	p.mu.RLock()
	bytes, err := json.Marshal(p.Systems)
	p.mu.RUnlock()
	if err != nil {
		return err
	}
	if err := p.Fs.MkdirAll(filepath.Dir(p.StateFile), 0o750); err != nil {
		return err
	}
	return afero.WriteFile(p.Fs, p.StateFile, bytes, 0o644)
}

// Load reads persisted counts from StateFile. A missing, malformed or "null"
// file leaves an empty map.
func (p *PopulationStats) Load() {
	p.mu.Lock()
	defer p.mu.Unlock()
	bytes, err := afero.ReadFile(p.Fs, p.StateFile)
	if err != nil {
		p.Systems = make(map[string]int)
		return
	}
	if err := json.Unmarshal(bytes, &p.Systems); err != nil {
		p.Systems = make(map[string]int)
		return
	}
	if p.Systems == nil {
		p.Systems = make(map[string]int)
	}
}
