package dataset

import (
	"os"

	"github.com/spektr-org/pulse/schema"
)

// Paths locates the three exports on disk.
type Paths struct {
	Members   string `yaml:"members" json:"members"`
	Channels  string `yaml:"channels" json:"channels"`
	Workspace string `yaml:"workspace" json:"workspace"`
}

// List returns the paths in source order.
func (p Paths) List() []string {
	return []string{p.Members, p.Channels, p.Workspace}
}

// ReadSources reads all three exports. Any absent or unreadable file is a
// MissingInputError; nothing is returned in that case.
func ReadSources(paths Paths) (Sources, error) {
	members, err := readSource(schema.SourceMembers, paths.Members)
	if err != nil {
		return Sources{}, err
	}
	channels, err := readSource(schema.SourceChannels, paths.Channels)
	if err != nil {
		return Sources{}, err
	}
	workspace, err := readSource(schema.SourceWorkspace, paths.Workspace)
	if err != nil {
		return Sources{}, err
	}
	return Sources{Members: members, Channels: channels, Workspace: workspace}, nil
}

func readSource(source, path string) ([]byte, error) {
	if path == "" {
		return nil, &MissingInputError{Source: source, Err: errNoPath}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &MissingInputError{Source: source, Path: path, Err: err}
	}
	return data, nil
}
