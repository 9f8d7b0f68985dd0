/*
 * Copyright (c) 2026 Firefly Software Solutions Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package extract

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v2"

	ferrors "pgmock/internal/errors"
)

//go:embed grammars/*.yaml
var grammarFS embed.FS

// Grammar file names, shared by the embedded set and override directories.
const (
	AlterTableGrammar     = "alter_table.yaml"
	CreateSequenceGrammar = "create_sequence.yaml"
)

// State identifies a semantic action of an extractor. The zero value
// means the node has no action.
type State int

const (
	StateNone State = iota

	// ALTER TABLE
	StateTableIfExists
	StateTableOnly
	StateTableName
	StateAlterColumn
	StateColumnName
	StateDefaultValue
	StateDropDefault
	StateConstraintName
	StatePrimaryKey
	StateUnique
	StateConstraintColumns

	// CREATE SEQUENCE
	StateTemporary
	StateUnlogged
	StateIfNotExists
	StateSequenceName
	StateDataType
	StateStartValue
	StateIncrementValue
	StateMinValue
	StateMaxValue
	StateNoMinValue
	StateNoMaxValue
	StateCacheValue
	StateCycle
	StateNoCycle
	StateOwnedBy
)

// StateTable maps the state names used in a grammar file to states.
type StateTable map[string]State

var stateNames = map[State]string{}

func init() {
	for _, table := range []StateTable{alterTableStates, createSequenceStates} {
		for name, st := range table {
			stateNames[st] = name
		}
	}
}

// String returns the grammar name of the state.
func (s State) String() string {
	if s == StateNone {
		return "none"
	}
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Node is a compiled, read-only grammar node.
type Node struct {
	// Phrase is the upper-cased keyword sequence that selects this node.
	// Empty for nodes reached as the single continuation of their parent.
	Phrase  []string
	State   State
	Options []*Node
	Next    []*Node
}

// Graph is a compiled grammar.
type Graph struct {
	Name string
	Root *Node
}

type nodeDef struct {
	Token   string    `yaml:"token"`
	State   string    `yaml:"state"`
	Options []nodeDef `yaml:"options"`
	Next    []nodeDef `yaml:"next"`
}

// Compile decodes a YAML grammar and resolves it into typed nodes.
// Unknown state names, keywords the dialect does not reserve and
// ambiguous siblings are rejected here rather than during a walk.
func Compile(name string, data []byte, states StateTable, d *Dialect) (*Graph, error) {
	var def nodeDef
	if err := yaml.UnmarshalStrict(data, &def); err != nil {
		return nil, ferrors.GrammarLoad(name, err.Error())
	}
	if def.Token == "" {
		return nil, ferrors.GrammarLoad(name, "root node needs a token")
	}
	c := compiler{name: name, states: states, dialect: d}
	root, err := c.node(def, "root")
	if err != nil {
		return nil, err
	}
	return &Graph{Name: strings.TrimSuffix(name, filepath.Ext(name)), Root: root}, nil
}

type compiler struct {
	name    string
	states  StateTable
	dialect *Dialect
}

func (c *compiler) fail(path, format string, args ...interface{}) error {
	return ferrors.GrammarLoad(c.name, path+": "+fmt.Sprintf(format, args...))
}

func (c *compiler) node(def nodeDef, path string) (*Node, error) {
	n := &Node{}

	if def.Token != "" {
		n.Phrase = strings.Fields(Upper(def.Token))
		for _, word := range n.Phrase {
			if !c.dialect.IsKeyword(word) {
				return nil, c.fail(path, "%s is not a %s keyword", word, c.dialect.Name)
			}
		}
		path = path + "/" + strings.Join(n.Phrase, "_")
	}

	if def.State != "" {
		st, ok := c.states[def.State]
		if !ok {
			return nil, c.fail(path, "unknown state %q", def.State)
		}
		n.State = st
	}

	seen := map[string]bool{}
	claim := func(child *Node, where string) error {
		if len(child.Phrase) == 0 {
			return nil
		}
		if seen[child.Phrase[0]] {
			return c.fail(path, "%s %s is ambiguous", where, child.Phrase[0])
		}
		seen[child.Phrase[0]] = true
		return nil
	}

	for i, od := range def.Options {
		if od.Token == "" {
			return nil, c.fail(path, "option %d needs a token", i)
		}
		child, err := c.node(od, path)
		if err != nil {
			return nil, err
		}
		if err := claim(child, "option"); err != nil {
			return nil, err
		}
		n.Options = append(n.Options, child)
	}

	for i, nd := range def.Next {
		if len(def.Next) > 1 && nd.Token == "" {
			return nil, c.fail(path, "continuation %d needs a token when there are several", i)
		}
		child, err := c.node(nd, path)
		if err != nil {
			return nil, err
		}
		if err := claim(child, "continuation"); err != nil {
			return nil, err
		}
		n.Next = append(n.Next, child)
	}

	return n, nil
}

// Grammars holds the compiled graph of every extractor.
type Grammars struct {
	AlterTable     *Graph
	CreateSequence *Graph
}

var (
	embeddedOnce     sync.Once
	embeddedGrammars *Grammars
	embeddedErr      error
)

// DefaultGrammars returns the embedded Postgres grammars. They are
// compiled on first use and shared afterwards.
func DefaultGrammars() (*Grammars, error) {
	embeddedOnce.Do(func() {
		embeddedGrammars, embeddedErr = loadGrammars(func(name string) ([]byte, error) {
			return grammarFS.ReadFile("grammars/" + name)
		}, Postgres)
	})
	return embeddedGrammars, embeddedErr
}

// LoadGrammars compiles the grammars for d. An empty dir selects the
// embedded set. Files missing from dir fall back to the embedded file.
func LoadGrammars(dir string, d *Dialect) (*Grammars, error) {
	if dir == "" && d == Postgres {
		return DefaultGrammars()
	}
	return loadGrammars(func(name string) ([]byte, error) {
		if dir != "" {
			data, err := os.ReadFile(filepath.Join(os.ExpandEnv(dir), name))
			if err == nil {
				return data, nil
			}
			if !os.IsNotExist(err) {
				return nil, err
			}
		}
		return grammarFS.ReadFile("grammars/" + name)
	}, d)
}

func loadGrammars(read func(string) ([]byte, error), d *Dialect) (*Grammars, error) {
	compile := func(name string, states StateTable) (*Graph, error) {
		data, err := read(name)
		if err != nil {
			return nil, ferrors.GrammarLoad(name, err.Error()).WithCause(err)
		}
		return Compile(name, data, states, d)
	}

	alter, err := compile(AlterTableGrammar, alterTableStates)
	if err != nil {
		return nil, err
	}
	seq, err := compile(CreateSequenceGrammar, createSequenceStates)
	if err != nil {
		return nil, err
	}
	return &Grammars{AlterTable: alter, CreateSequence: seq}, nil
}
