// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package xlengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStyleInternDedup is P4: interning the same tuple twice yields the
// same style-id.
func TestStyleInternDedup(t *testing.T) {
	reg := newStyleRegistry()
	font := Font{Name: "Calibri", Size: 11, Bold: true}
	fill := Fill{Type: "solid", FgColor: "FFFF00"}
	border := Border{Top: Side{Style: "thin"}}
	align := Alignment{Horizontal: "center"}

	id1 := reg.StyleIntern(font, fill, border, "0.00%", align)
	id2 := reg.StyleIntern(font, fill, border, "0.00%", align)
	assert.Equal(t, id1, id2)

	// A structurally different tuple must get a distinct id.
	id3 := reg.StyleIntern(font, fill, border, "0.00", align)
	assert.NotEqual(t, id1, id3)
}

// TestStyleInternRebuildDedupAfterDecode mirrors what loadWorkbook does
// after a styles.xml decode: subsequent interns must dedup against
// everything the source package already contained.
func TestStyleInternRebuildDedupAfterDecode(t *testing.T) {
	reg := newStyleRegistry()
	reg.fonts = []Font{{Name: "Calibri", Size: 11}}
	reg.fills = []Fill{{Type: "none"}}
	reg.borders = []Border{{}}
	reg.xfs = []cellXf{{}}
	reg.rebuildDedup()

	id := reg.StyleIntern(Font{Name: "Calibri", Size: 11}, Fill{Type: "none"}, Border{}, "General", Alignment{})
	assert.Equal(t, 0, id)
	assert.Len(t, reg.fonts, 1, "no duplicate font should have been appended")
}

// TestMergeAddRejectsOverlap is P5: merge ranges never overlap.
func TestMergeAddRejectsOverlap(t *testing.T) {
	s := newSheet("Sheet1", 0)
	require.NoError(t, s.MergeAdd(1, 1, 2, 2)) // A1:B2
	err := s.MergeAdd(2, 2, 3, 3)               // B2:C3 overlaps at B2
	assert.ErrorIs(t, err, ErrBadCellReference)
	assert.Len(t, s.merges, 1)

	require.NoError(t, s.MergeAdd(5, 5, 6, 6)) // disjoint range is fine
	assert.Len(t, s.merges, 2)
}

// TestCellGetBlankForAbsentCell matches §4.4's "returns blank if absent".
func TestCellGetBlankForAbsentCell(t *testing.T) {
	s := newSheet("Sheet1", 0)
	v, styleID := s.CellGet(3, 3)
	assert.Equal(t, CellBlank, v.Type)
	assert.Equal(t, 0, styleID)
}

// TestDuplicateSheetIsIndependent ensures the deepcopy-backed clone can't
// alias the source's merges/validations slices (§9).
func TestDuplicateSheetIsIndependent(t *testing.T) {
	m := newWorkbookModel()
	idx, err := m.AddSheet("Sheet1")
	require.NoError(t, err)
	src := m.sheets[idx]
	require.NoError(t, src.MergeAdd(1, 1, 2, 2))

	require.NoError(t, m.DuplicateSheet("Sheet1", "Copy"))
	dup, err := m.SheetByName("Copy")
	require.NoError(t, err)

	require.NoError(t, dup.MergeAdd(5, 5, 6, 6))
	assert.Len(t, src.merges, 1, "mutating the clone must not affect the source")
	assert.Len(t, dup.merges, 2)
}
