package vehicle

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/muurk/vininsight/internal/logging"
)

// FileProvider reads the vehicle list from a YAML or JSON file.
//
// The file holds either a top-level "vehicles" list or a bare list:
//
//	vehicles:
//	  - name: Fleet truck 7
//	    vin: 3GCUDHEL3NG668790
//	    model: Silverado
//	    year: 2022
type FileProvider struct {
	Path string
}

type vehicleFile struct {
	Vehicles []Vehicle `yaml:"vehicles"`
}

// Load reads the file on every call so edits show up on refresh.
func (p *FileProvider) Load(ctx context.Context) ([]Vehicle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(p.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vehicle file: %w", err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse vehicle file: %w", err)
	}

	var vehicles []Vehicle
	switch {
	case len(doc.Content) == 0:
		// Empty file: empty list.
	case doc.Content[0].Kind == yaml.SequenceNode:
		err = doc.Content[0].Decode(&vehicles)
	default:
		var f vehicleFile
		err = doc.Content[0].Decode(&f)
		vehicles = f.Vehicles
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse vehicle file: %w", err)
	}

	assignIDs(vehicles)
	logging.Info("Vehicle list loaded",
		zap.String("source", "file"),
		zap.String("path", p.Path),
		zap.Int("count", len(vehicles)),
	)
	return vehicles, nil
}

// StaticProvider serves a fixed list.
type StaticProvider []Vehicle

// Load implements Provider.
func (p StaticProvider) Load(ctx context.Context) ([]Vehicle, error) {
	return append([]Vehicle(nil), p...), nil
}
