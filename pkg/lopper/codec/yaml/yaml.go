// Package yaml implements the YAML front-end for a main or lop tree:
// it loads one or more YAML documents through gonvenience/ytbx and
// folds them into a lopper.Tree via the neutral nested-mapping shape
// lopper.Tree.Load already understands. Dump reverses the process
// with yaml.v2.
package yaml

import (
	"fmt"

	"github.com/gonvenience/ytbx"
	yamlv2 "gopkg.in/yaml.v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/sdt-tools/lopper/pkg/lopper"
)

// Load reads path (plus any additional files ytbx resolves for it,
// e.g. a directory of fragments) and returns the merged tree.
func Load(path string) (*lopper.Tree, error) {
	maps, err := LoadMaps(path)
	if err != nil {
		return nil, err
	}
	t := lopper.NewTree()
	for _, m := range maps {
		if err := t.Load(m); err != nil {
			return nil, lopper.NewError(lopper.ParseFailure, path, "loading document into tree: "+err.Error(), err)
		}
	}
	return t, nil
}

// LoadMaps reads path via ytbx and returns each of its YAML documents as
// a generic nested mapping, without folding them into a Tree. Callers
// merging several main-tree source files
// use this to get at the raw maps first.
func LoadMaps(path string) ([]map[string]interface{}, error) {
	input, err := ytbx.LoadFile(path)
	if err != nil {
		return nil, lopper.NewError(lopper.ParseFailure, path, "loading yaml: "+err.Error(), err)
	}
	maps := make([]map[string]interface{}, 0, len(input.Documents))
	for _, doc := range input.Documents {
		m, err := nodeToMapping(doc)
		if err != nil {
			return nil, lopper.NewError(lopper.ParseFailure, path, "decoding yaml document: "+err.Error(), err)
		}
		maps = append(maps, m)
	}
	return maps, nil
}

// nodeToMapping decodes a yaml.v3 document node into the
// map[string]interface{} shape lopper.Tree.Load expects, using yaml.v2
// as the intermediate decoder since it already maps cleanly onto
// lopper.Value's Go types (string, []interface{}, map[string]interface{}).
func nodeToMapping(doc *yamlv3.Node) (map[string]interface{}, error) {
	raw, err := yamlv3.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var generic map[string]interface{}
	if err := yamlv2.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	return generic, nil
}

// Dump renders t as a single YAML document via yaml.v2.
func Dump(t *lopper.Tree) ([]byte, error) {
	out, err := yamlv2.Marshal(t.Export())
	if err != nil {
		return nil, fmt.Errorf("yaml codec: marshal: %w", err)
	}
	return out, nil
}
