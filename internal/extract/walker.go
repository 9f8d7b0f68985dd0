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
	"strings"

	ferrors "pgmock/internal/errors"
	"pgmock/internal/logging"
)

var walkLogger = logging.NewLogger("walker")

// Handler receives every visited state of a walk.
type Handler interface {
	Handle(state State, c *Cursor) error
}

// Cursor is the scanner position shared by the walker and the hooks.
// Hooks read the current segment and may consume one extra segment with
// Advance when a clause carries an optional noise word.
type Cursor struct {
	dialect *Dialect
	seg     Segment
	ok      bool
	tail    string
}

func newCursor(d *Dialect, sql string) *Cursor {
	return &Cursor{dialect: d, tail: sql}
}

// Segment returns the current segment.
func (c *Cursor) Segment() Segment {
	return c.seg
}

// Token returns the current keyword, or "" for non-keyword segments and
// at end of input.
func (c *Cursor) Token() string {
	if !c.ok {
		return ""
	}
	return c.seg.Token()
}

// Done reports whether the statement is exhausted.
func (c *Cursor) Done() bool {
	return !c.ok
}

// Advance moves to the next segment.
func (c *Cursor) Advance() (Segment, bool) {
	c.seg, c.ok = c.dialect.NextSegment(c.tail)
	if c.ok {
		c.tail = c.seg.Remainder
	} else {
		c.tail = ""
	}
	return c.seg, c.ok
}

// Peek returns the next segment without consuming it.
func (c *Cursor) Peek() (Segment, bool) {
	return c.dialect.NextSegment(c.tail)
}

func (c *Cursor) describe() string {
	if !c.ok {
		return "end of statement"
	}
	return c.seg.String()
}

// Walk runs sql through g, handing each visited state to h. The first
// segments must spell the root phrase. A failed continuation aborts the
// walk with a ParseStructure error.
func Walk(g *Graph, d *Dialect, sql string, h Handler) error {
	w := &walker{graph: g, cursor: newCursor(d, sql), handler: h}
	w.cursor.Advance()

	root, err := w.selectNode([]*Node{g.Root})
	if err != nil {
		return err
	}
	if root == nil {
		return ferrors.ParseStructure(g.Name, strings.Join(g.Root.Phrase, " "), w.cursor.describe())
	}
	return w.visit(root)
}

type walker struct {
	graph   *Graph
	cursor  *Cursor
	handler Handler
}

func (w *walker) visit(n *Node) error {
	if n.State != StateNone {
		walkLogger.Debug("Visiting state",
			"grammar", w.graph.Name, "state", n.State, "segment", w.cursor.Segment().Text)
		if err := w.handler.Handle(n.State, w.cursor); err != nil {
			return err
		}
	}
	w.cursor.Advance()

	for {
		opt, err := w.selectNode(n.Options)
		if err != nil {
			return err
		}
		if opt == nil {
			break
		}
		if err := w.visit(opt); err != nil {
			return err
		}
	}

	if len(n.Next) == 0 || w.cursor.Done() {
		return nil
	}
	if len(n.Next) == 1 && len(n.Next[0].Phrase) == 0 {
		return w.visit(n.Next[0])
	}

	next, err := w.selectNode(n.Next)
	if err != nil {
		return err
	}
	if next == nil {
		return ferrors.ParseStructure(w.graph.Name, expectedPhrases(n.Next), w.cursor.describe())
	}
	return w.visit(next)
}

// selectNode returns the node whose phrase starts at the cursor and
// consumes the rest of that phrase. It returns nil when no first word
// matches.
func (w *walker) selectNode(nodes []*Node) (*Node, error) {
	tok := w.cursor.Token()
	if tok == "" {
		return nil, nil
	}
	for _, n := range nodes {
		if len(n.Phrase) == 0 || n.Phrase[0] != tok {
			continue
		}
		for _, word := range n.Phrase[1:] {
			seg, ok := w.cursor.Advance()
			if !ok || seg.Token() != word {
				return nil, ferrors.ParseStructure(w.graph.Name, strings.Join(n.Phrase, " "), w.cursor.describe())
			}
		}
		return n, nil
	}
	return nil, nil
}

func expectedPhrases(nodes []*Node) string {
	phrases := make([]string, 0, len(nodes))
	for _, n := range nodes {
		phrases = append(phrases, strings.Join(n.Phrase, " "))
	}
	return "one of [" + strings.Join(phrases, ", ") + "]"
}
