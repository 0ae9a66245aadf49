// Package snapshot writes and reads zstd-compressed point-in-time copies of the caravans.
//
// A snapshot file is a zstd stream holding one JSON header line followed by the JSON body,
// so tools can peek at the header without decoding the caravans.
package snapshot

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/talgya/caravan-needs/internal/caravan"
	"github.com/talgya/caravan-needs/internal/engine"
)

// Version is bumped whenever the body layout changes.
const Version = 1

// Header identifies a snapshot.
type Header struct {
	Version int    `json:"version"`
	Tick    uint64 `json:"tick"`
	Time    string `json:"time"`
	Season  uint8  `json:"season"`
}

// Snapshot is the full body.
type Snapshot struct {
	Header    Header             `json:"header"`
	Seed      int64              `json:"seed"`
	Weather   string             `json:"weather"`
	Stats     engine.SimStats    `json:"stats"`
	Exposures map[string]int     `json:"exposures"`
	Caravans  []*caravan.Caravan `json:"caravans"`
}

// Capture builds a snapshot of sim. It takes the read lock.
func Capture(sim *engine.Simulation) (Snapshot, error) {
	var snap Snapshot
	var err error
	sim.View(func(s *engine.Simulation) {
		tick := s.CurrentTick()
		snap = Snapshot{
			Header: Header{
				Version: Version,
				Tick:    tick,
				Time:    engine.SimTime(tick),
				Season:  s.CurrentSeason,
			},
			Seed:      s.Tuning.Seed,
			Weather:   s.CurrentWeather.Description,
			Stats:     s.Stats,
			Exposures: make(map[string]int),
		}
		for tier, n := range s.Exposures.Totals() {
			snap.Exposures[tier.String()] = n
		}
		// Encoding happens after the lock is released, so copy the caravans deeply.
		var raw []byte
		if raw, err = json.Marshal(s.Caravans); err == nil {
			err = json.Unmarshal(raw, &snap.Caravans)
		}
	})
	if err != nil {
		return snap, fmt.Errorf("copy caravans: %w", err)
	}
	return snap, nil
}

// FileName returns the conventional file name for a snapshot taken at tick.
func FileName(tick uint64) string {
	return fmt.Sprintf("caravans-%010d.snap.zst", tick)
}

// Write stores snap at path, creating parent directories.
func Write(path string, snap Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 256*1024)

	hb, err := json.Marshal(snap.Header)
	if err != nil {
		enc.Close()
		return fmt.Errorf("encode header: %w", err)
	}
	if _, err := bw.Write(append(hb, '\n')); err != nil {
		enc.Close()
		return err
	}
	if err := json.NewEncoder(bw).Encode(&snap); err != nil {
		enc.Close()
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("zstd close: %w", err)
	}
	return f.Close()
}

// Read loads the snapshot at path.
func Read(path string) (Snapshot, error) {
	var snap Snapshot
	br, closeFn, err := open(path)
	if err != nil {
		return snap, err
	}
	defer closeFn()

	if _, err := br.ReadBytes('\n'); err != nil {
		return snap, fmt.Errorf("read header: %w", err)
	}
	if err := json.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.Header.Version != Version {
		return snap, fmt.Errorf("unsupported snapshot version %d", snap.Header.Version)
	}
	return snap, nil
}

// ReadHeader loads only the header line of the snapshot at path.
func ReadHeader(path string) (Header, error) {
	var h Header
	br, closeFn, err := open(path)
	if err != nil {
		return h, err
	}
	defer closeFn()

	line, err := br.ReadBytes('\n')
	if err != nil {
		return h, fmt.Errorf("read header: %w", err)
	}
	if err := json.Unmarshal(line, &h); err != nil {
		return h, fmt.Errorf("decode header: %w", err)
	}
	return h, nil
}

func open(path string) (*bufio.Reader, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return bufio.NewReaderSize(dec, 256*1024), func() {
		dec.Close()
		f.Close()
	}, nil
}
