package services

import (
	"fmt"
)

// Pattern types.
const (
	PatternLine          = "line"
	PatternMultipleLines = "multiple_lines"
	PatternDiagonal      = "diagonal"
	PatternBothDiagonals = "both_diagonals"
	PatternX             = "x_pattern"
	PatternCorners       = "corners"
	PatternCross         = "cross"
	PatternOuterBorder   = "outer_border"
	PatternFullBoard     = "full_board"
	PatternCheckerboard  = "checkerboard"
	PatternZigZag        = "zigzag"
	PatternCrosshatch    = "diagonal_crosshatch"
	PatternClanEmblem    = "clan_emblem"
)

// FullBoardKey is the pattern whose completion ends the event early.
const FullBoardKey = "full_board"

// Cell is one (row, col) position on a board grid.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Pattern is a named, deduplicated set of cells on a (rows × cols) grid.
type Pattern struct {
	Key   string
	Type  string
	Cells []Cell
}

// dedupCells drops duplicate coordinates while keeping first-seen order.
func dedupCells(cells []Cell) []Cell {
	seen := make(map[Cell]bool, len(cells))
	out := make([]Cell, 0, len(cells))
	for _, c := range cells {
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// LinePatterns returns one pattern per full row and per full column.
func LinePatterns(rows, cols int) []Pattern {
	patterns := make([]Pattern, 0, rows+cols)
	for row := 0; row < rows; row++ {
		cells := make([]Cell, cols)
		for col := 0; col < cols; col++ {
			cells[col] = Cell{Row: row, Col: col}
		}
		patterns = append(patterns, Pattern{Key: fmt.Sprintf("row_%d", row), Type: PatternLine, Cells: cells})
	}
	for col := 0; col < cols; col++ {
		cells := make([]Cell, rows)
		for row := 0; row < rows; row++ {
			cells[row] = Cell{Row: row, Col: col}
		}
		patterns = append(patterns, Pattern{Key: fmt.Sprintf("col_%d", col), Type: PatternLine, Cells: cells})
	}
	return patterns
}

// MultipleLinePatterns returns every window of numLines adjacent rows and of
// numLines adjacent columns.
func MultipleLinePatterns(rows, cols, numLines int) []Pattern {
	var patterns []Pattern
	for rowStart := 0; rowStart+numLines <= rows; rowStart++ {
		var cells []Cell
		for i := 0; i < numLines; i++ {
			for col := 0; col < cols; col++ {
				cells = append(cells, Cell{Row: rowStart + i, Col: col})
			}
		}
		patterns = append(patterns, Pattern{
			Key:   fmt.Sprintf("multiple_lines_rows_%d_%d", rowStart, numLines),
			Type:  PatternMultipleLines,
			Cells: cells,
		})
	}
	for colStart := 0; colStart+numLines <= cols; colStart++ {
		var cells []Cell
		for i := 0; i < numLines; i++ {
			for row := 0; row < rows; row++ {
				cells = append(cells, Cell{Row: row, Col: colStart + i})
			}
		}
		patterns = append(patterns, Pattern{
			Key:   fmt.Sprintf("multiple_lines_cols_%d_%d", colStart, numLines),
			Type:  PatternMultipleLines,
			Cells: cells,
		})
	}
	return patterns
}

// DiagonalPattern returns the main diagonal, truncated to the shorter
// dimension.
func DiagonalPattern(rows, cols int) Pattern {
	n := rows
	if cols < n {
		n = cols
	}
	cells := make([]Cell, n)
	for i := 0; i < n; i++ {
		cells[i] = Cell{Row: i, Col: i}
	}
	return Pattern{Key: "diag_main", Type: PatternDiagonal, Cells: cells}
}

// BothDiagonalsPattern returns the union of the main and anti diagonals.
func BothDiagonalsPattern(rows, cols int) Pattern {
	n := rows
	if cols < n {
		n = cols
	}
	var cells []Cell
	for i := 0; i < n; i++ {
		cells = append(cells, Cell{Row: i, Col: i})
	}
	for i := 0; i < n; i++ {
		cells = append(cells, Cell{Row: i, Col: cols - 1 - i})
	}
	return Pattern{Key: "both_diagonals", Type: PatternBothDiagonals, Cells: dedupCells(cells)}
}

// XPatterns returns the two X variants: alternating cells inside the upper
// triangle, and the centered X whose arms meet in the middle row on
// odd-height boards.
func XPatterns(rows, cols int) []Pattern {
	var alternating []Cell
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			if (row+col)%2 == 0 && col < cols-row {
				alternating = append(alternating, Cell{Row: row, Col: col})
			}
		}
	}

	var centered []Cell
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			if row == col || col == cols-1-row {
				centered = append(centered, Cell{Row: row, Col: col})
			}
		}
	}

	return []Pattern{
		{Key: "x_pattern_alternating", Type: PatternX, Cells: dedupCells(alternating)},
		{Key: "x_pattern_centered", Type: PatternX, Cells: dedupCells(centered)},
	}
}

// CornersPattern returns the four corner cells.
func CornersPattern(rows, cols int) Pattern {
	return Pattern{
		Key:  "corners",
		Type: PatternCorners,
		Cells: []Cell{
			{Row: 0, Col: 0},
			{Row: 0, Col: cols - 1},
			{Row: rows - 1, Col: 0},
			{Row: rows - 1, Col: cols - 1},
		},
	}
}

// CrossPattern returns the middle row united with the middle column.
func CrossPattern(rows, cols int) Pattern {
	midRow := rows / 2
	midCol := cols / 2
	var cells []Cell
	for col := 0; col < cols; col++ {
		cells = append(cells, Cell{Row: midRow, Col: col})
	}
	for row := 0; row < rows; row++ {
		cells = append(cells, Cell{Row: row, Col: midCol})
	}
	return Pattern{Key: "cross", Type: PatternCross, Cells: dedupCells(cells)}
}

// OuterBorderPattern returns every cell on the outermost edge.
func OuterBorderPattern(rows, cols int) Pattern {
	var cells []Cell
	for col := 0; col < cols; col++ {
		cells = append(cells, Cell{Row: 0, Col: col}, Cell{Row: rows - 1, Col: col})
	}
	for row := 0; row < rows; row++ {
		cells = append(cells, Cell{Row: row, Col: 0}, Cell{Row: row, Col: cols - 1})
	}
	return Pattern{Key: "outer_border", Type: PatternOuterBorder, Cells: dedupCells(cells)}
}

// FullBoardPattern returns every cell on the grid.
func FullBoardPattern(rows, cols int) Pattern {
	cells := make([]Cell, 0, rows*cols)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			cells = append(cells, Cell{Row: row, Col: col})
		}
	}
	return Pattern{Key: FullBoardKey, Type: PatternFullBoard, Cells: cells}
}

// CheckerboardPatterns returns the checkerboard and its inverse.
func CheckerboardPatterns(rows, cols int) []Pattern {
	var even, odd []Cell
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			if (row+col)%2 == 0 {
				even = append(even, Cell{Row: row, Col: col})
			} else {
				odd = append(odd, Cell{Row: row, Col: col})
			}
		}
	}
	return []Pattern{
		{Key: "checkerboard", Type: PatternCheckerboard, Cells: even},
		{Key: "inversed_checkerboard", Type: PatternCheckerboard, Cells: odd},
	}
}

// ZigZagPattern returns a snake band: every even row in full, joined by the
// turning cell on each odd row.
func ZigZagPattern(rows, cols int) Pattern {
	var cells []Cell
	for row := 0; row < rows; row++ {
		if row%2 == 0 {
			for col := 0; col < cols; col++ {
				cells = append(cells, Cell{Row: row, Col: col})
			}
			continue
		}
		// Turning column alternates between the right and left edge.
		col := cols - 1
		if row%4 == 3 {
			col = 0
		}
		cells = append(cells, Cell{Row: row, Col: col})
	}
	return Pattern{Key: "zigzag", Type: PatternZigZag, Cells: cells}
}

// DiagonalCrosshatchPattern returns cells where row*col is even.
func DiagonalCrosshatchPattern(rows, cols int) Pattern {
	var cells []Cell
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			if (row*col)%2 == 0 {
				cells = append(cells, Cell{Row: row, Col: col})
			}
		}
	}
	return Pattern{Key: "diagonal_crosshatch", Type: PatternCrosshatch, Cells: cells}
}

// ClanEmblemPattern is the bespoke asymmetric house shape.
func ClanEmblemPattern(rows, cols int) Pattern {
	var cells []Cell
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			if (row+col)%4 == 0 {
				cells = append(cells, Cell{Row: row, Col: col})
			}
		}
	}
	return Pattern{Key: "clan_emblem", Type: PatternClanEmblem, Cells: cells}
}

// BuildPatternCatalog assembles every pattern defined for a grid. Patterns
// are immutable for the board's lifetime.
func BuildPatternCatalog(rows, cols int) []Pattern {
	var patterns []Pattern
	patterns = append(patterns, LinePatterns(rows, cols)...)
	patterns = append(patterns, MultipleLinePatterns(rows, cols, 2)...)
	patterns = append(patterns, DiagonalPattern(rows, cols))
	patterns = append(patterns, BothDiagonalsPattern(rows, cols))
	patterns = append(patterns, XPatterns(rows, cols)...)
	patterns = append(patterns, CornersPattern(rows, cols))
	patterns = append(patterns, CrossPattern(rows, cols))
	patterns = append(patterns, OuterBorderPattern(rows, cols))
	patterns = append(patterns, FullBoardPattern(rows, cols))
	patterns = append(patterns, CheckerboardPatterns(rows, cols)...)
	patterns = append(patterns, ZigZagPattern(rows, cols))
	patterns = append(patterns, DiagonalCrosshatchPattern(rows, cols))
	patterns = append(patterns, ClanEmblemPattern(rows, cols))
	return patterns
}
