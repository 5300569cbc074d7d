package ui

func DetermineLayoutMode(cols, rows int) LayoutMode {
	if cols < 70 || rows < 20 {
		return LayoutTooSmall
	}
	if cols >= 100 && rows >= 28 {
		return LayoutWide
	}
	return LayoutCompact
}
