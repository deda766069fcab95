package vehicle

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// DefaultTreePath is the vehicle tree endpoint on a tracking server.
const DefaultTreePath = "/ax/tree.php?vehs=1&state=1"

// Provider loads the complete vehicle list. Every call replaces the list.
type Provider interface {
	Load(ctx context.Context) ([]Vehicle, error)
}

// treeNode is one node of an Ext-style tree response.
type treeNode struct {
	ID       flexString `json:"id"`
	Name     string     `json:"name"`
	Text     string     `json:"text"`
	VIN      flexString `json:"vin"`
	Model    string     `json:"model"`
	Year     flexString `json:"year"`
	Leaf     bool       `json:"leaf"`
	Children []treeNode `json:"children"`
}

func (n treeNode) isVehicle() bool {
	if n.Leaf {
		return true
	}
	if len(n.Children) > 0 {
		return false
	}
	return string(n.VIN) != "" || n.Name != "" || n.Text != ""
}

func (n treeNode) vehicle() Vehicle {
	name := n.Name
	if name == "" {
		name = n.Text
	}
	return Vehicle{
		ID:    string(n.ID),
		Name:  name,
		VIN:   string(n.VIN),
		Model: n.Model,
		Year:  string(n.Year),
	}
}

// ParseTree decodes a tree response into a flat, depth-first vehicle list.
// The body is either {"children": [...]} or a bare array of nodes.
func ParseTree(data []byte) ([]Vehicle, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, fmt.Errorf("empty vehicle list response")
	}

	var roots []treeNode
	if trimmed[0] == '[' {
		if err := json.Unmarshal(data, &roots); err != nil {
			return nil, fmt.Errorf("failed to parse vehicle list: %w", err)
		}
	} else {
		var root treeNode
		if err := json.Unmarshal(data, &root); err != nil {
			return nil, fmt.Errorf("failed to parse vehicle list: %w", err)
		}
		roots = root.Children
	}

	var out []Vehicle
	var walk func(nodes []treeNode)
	walk = func(nodes []treeNode) {
		for _, n := range nodes {
			if n.isVehicle() {
				out = append(out, n.vehicle())
				continue
			}
			walk(n.Children)
		}
	}
	walk(roots)

	assignIDs(out)
	return out, nil
}

// assignIDs gives records without a provider id their list position.
func assignIDs(vs []Vehicle) {
	for i := range vs {
		if vs[i].ID == "" {
			vs[i].ID = strconv.Itoa(i)
		}
	}
}
