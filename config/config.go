// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config loads the buffer's tunables from TOML, the way the
// teacher's base/iox/tomlx wraps go-toml/v2 for its own config files.
// Callers that never load a file get the documented defaults.
package config

import (
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"cogentcore.org/text/sumtree"
)

// HistoryConfig tunes undo/redo grouping and retention.
type HistoryConfig struct {
	// GroupIntervalMS bounds how close in time (in milliseconds) two
	// transactions must be to merge into a single undo step. TOML has no
	// native duration type, so the config file expresses it as an
	// integer; [HistoryConfig.GroupInterval] converts it.
	GroupIntervalMS int `toml:"group_interval_ms"`
	// MaxUndoSteps caps how many transactions buffer.History.Prune retains
	// when a caller explicitly asks to bound undo-stack growth. It is
	// never applied automatically: the buffer's undo stack only shrinks
	// by grouping or by explicit user action.
	MaxUndoSteps int `toml:"max_undo_steps"`
}

// GroupInterval returns the configured grouping window as a
// [time.Duration].
func (h HistoryConfig) GroupInterval() time.Duration {
	return time.Duration(h.GroupIntervalMS) * time.Millisecond
}

// FragmentTreeConfig tunes the fragment tree's (and rope's) underlying
// [cogentcore.org/text/sumtree] node arity.
type FragmentTreeConfig struct {
	// NodeArity is the number of items/children held per tree node.
	NodeArity int `toml:"node_arity"`
}

// Config is the complete set of buffer tunables.
type Config struct {
	History      HistoryConfig      `toml:"history"`
	FragmentTree FragmentTreeConfig `toml:"fragment_tree"`
}

// Default returns the teacher-documented defaults: a 300ms grouping
// window, no automatic undo cap, and the sumtree package's built-in
// node arity.
func Default() Config {
	return Config{
		History: HistoryConfig{
			GroupIntervalMS: 300,
			MaxUndoSteps:    0,
		},
		FragmentTree: FragmentTreeConfig{
			NodeArity: 16,
		},
	}
}

// ReadBytes decodes TOML-encoded config data, starting from [Default]
// so a partial file only overrides the fields it sets.
func ReadBytes(data []byte) (Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Open reads and decodes a TOML config file at filename.
func Open(filename string) (Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, err
	}
	return ReadBytes(data)
}

// ApplyFragmentTree installs c's node arity as the process-wide default
// for every [cogentcore.org/text/sumtree.Tree] (and so every fragment
// tree and rope) built after this call. It is a process-wide knob, not
// a per-buffer one, matching the teacher's pattern of a single loaded
// config governing an entire run.
func (c Config) ApplyFragmentTree() {
	sumtree.SetArity(c.FragmentTree.NodeArity)
}
