// Package grid provides a reusable data grid over an in-memory row slice:
// sorting, substring filtering, pagination, persisted column visibility,
// row selection with caller-supplied bulk actions, expandable sub-rows and
// client-side exports. No business logic lives here; every action on rows
// is delegated to caller callbacks.
package grid

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tipbase-server/internal/storage"
)

// Column describes one grid column. Value extracts the cell for a row;
// cells are compared natively for sorting and stringified for filtering
// and export.
type Column[T any] struct {
	ID       string
	Header   string
	Value    func(row T) interface{}
	Sortable bool
	CanHide  bool
}

// SortDirection represents a sort order
type SortDirection int

const (
	// SortNone means the column is unsorted
	SortNone SortDirection = iota
	// SortAsc sorts ascending
	SortAsc
	// SortDesc sorts descending
	SortDesc
)

// PageAction is a server-mode pagination request
type PageAction string

const (
	// PageNext requests the next page
	PageNext PageAction = "next"
	// PagePrevious requests the previous page
	PagePrevious PageAction = "previous"
)

// PageInfo describes the server-side page state in server mode
type PageInfo struct {
	PageIndex  int   `json:"pageIndex"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
	TotalRows  int64 `json:"totalRows"`
}

// SearchDebounce is how long search input must stay quiet before the
// server search callback fires.
const SearchDebounce = 800 * time.Millisecond

// Config configures a grid instance
type Config[T any] struct {
	Columns []Column[T]

	// RowID must return a stable identity per row; selection and
	// expansion are keyed by it.
	RowID func(row T) string

	// StorageKey persists column visibility; empty disables persistence.
	StorageKey string
	// DefaultVisible lists the column ids shown when no stored preference
	// exists. Empty means all columns are visible.
	DefaultVisible []string
	// KV carries the visibility preference; nil disables persistence.
	KV storage.KV

	PageSize int // default 10

	// SubRows returns expansion children for a row; nil disables expansion.
	SubRows func(row T) []T

	// Bulk selection actions; the grid only forwards the selected rows.
	OnPrintSelected  func(rows []T)
	OnEmailSelected  func(rows []T)
	OnDeleteSelected func(rows []T)

	// Server mode: the grid skips local filter/sort/paginate and forwards
	// page and search intents to the caller.
	ServerMode   bool
	OnPageChange func(action PageAction)
	OnSearch     func(query string)
}

// Validate checks if the configuration is usable
func (c *Config[T]) Validate() error {
	if len(c.Columns) == 0 {
		return fmt.Errorf("at least one column is required")
	}
	if c.RowID == nil {
		return fmt.Errorf("row id function is required")
	}
	seen := make(map[string]bool, len(c.Columns))
	for _, col := range c.Columns {
		if col.ID == "" {
			return fmt.Errorf("column id cannot be empty")
		}
		if seen[col.ID] {
			return fmt.Errorf("duplicate column id: %s", col.ID)
		}
		seen[col.ID] = true
		if col.Value == nil {
			return fmt.Errorf("column %s has no value accessor", col.ID)
		}
	}
	if c.ServerMode && c.OnPageChange == nil && c.OnSearch == nil {
		return fmt.Errorf("server mode requires a page change or search callback")
	}
	return nil
}

// Grid is the table state machine. All methods are safe for concurrent
// use; sorting and filtering never mutate the caller's row slice.
type Grid[T any] struct {
	cfg Config[T]

	mu         sync.Mutex
	rows       []T
	visibility map[string]bool
	sortColumn string
	sortDir    SortDirection
	filter     string
	pageIndex  int
	selection  map[string]bool
	expanded   map[string]bool
	serverPage PageInfo

	searchTimer *time.Timer
	lastSearch  string
}

// New creates a grid, restoring any persisted column visibility. A missing
// or corrupt preference falls back to the configured default set.
func New[T any](ctx context.Context, cfg Config[T], rows []T) (*Grid[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 10
	}

	g := &Grid[T]{
		cfg:       cfg,
		rows:      rows,
		selection: make(map[string]bool),
		expanded:  make(map[string]bool),
	}
	g.visibility = g.loadVisibility(ctx)
	return g, nil
}

// defaultVisibility builds the fallback visibility map. With no default
// set configured every column is visible.
func (g *Grid[T]) defaultVisibility() map[string]bool {
	vis := make(map[string]bool, len(g.cfg.Columns))
	if len(g.cfg.DefaultVisible) == 0 {
		for _, col := range g.cfg.Columns {
			vis[col.ID] = true
		}
		return vis
	}

	byDefault := make(map[string]bool, len(g.cfg.DefaultVisible))
	for _, id := range g.cfg.DefaultVisible {
		byDefault[id] = true
	}
	for _, col := range g.cfg.Columns {
		vis[col.ID] = byDefault[col.ID]
	}
	return vis
}

func (g *Grid[T]) loadVisibility(ctx context.Context) map[string]bool {
	if g.cfg.KV == nil || g.cfg.StorageKey == "" {
		return g.defaultVisibility()
	}

	var stored map[string]bool
	found, err := storage.GetJSON(ctx, g.cfg.KV, g.cfg.StorageKey, &stored)
	if err != nil || !found || stored == nil {
		return g.defaultVisibility()
	}
	return stored
}

func (g *Grid[T]) persistVisibility(ctx context.Context) {
	if g.cfg.KV == nil || g.cfg.StorageKey == "" {
		return
	}
	_ = storage.SetJSON(ctx, g.cfg.KV, g.cfg.StorageKey, g.visibility)
}

// SetRows replaces the row slice, clamping the page index and dropping
// selection entries whose rows disappeared.
func (g *Grid[T]) SetRows(rows []T) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.rows = rows

	ids := make(map[string]bool, len(rows))
	for _, row := range rows {
		ids[g.cfg.RowID(row)] = true
	}
	for id := range g.selection {
		if !ids[id] {
			delete(g.selection, id)
		}
	}
	for id := range g.expanded {
		if !ids[id] {
			delete(g.expanded, id)
		}
	}
	g.clampPageLocked()
}

// ToggleSort cycles a sortable column through asc, desc and back to asc.
// Sorting a different column starts ascending.
func (g *Grid[T]) ToggleSort(columnID string) {
	col := g.column(columnID)
	if col == nil || !col.Sortable || g.cfg.ServerMode {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.sortColumn == columnID && g.sortDir == SortAsc {
		g.sortDir = SortDesc
	} else {
		g.sortColumn = columnID
		g.sortDir = SortAsc
	}
}

// Sort reports the current sort state
func (g *Grid[T]) Sort() (columnID string, dir SortDirection) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sortColumn, g.sortDir
}

// SetFilter sets the case-insensitive substring filter. In server mode the
// query is debounced and forwarded to the search callback instead.
func (g *Grid[T]) SetFilter(query string) {
	if g.cfg.ServerMode {
		g.debounceSearch(query)
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.filter = query
	g.pageIndex = 0
}

// Filter returns the active local filter query
func (g *Grid[T]) Filter() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.filter
}

// ToggleColumn shows or hides a hideable column and persists the choice
func (g *Grid[T]) ToggleColumn(ctx context.Context, columnID string, visible bool) {
	col := g.column(columnID)
	if col == nil || !col.CanHide {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.visibility[columnID] = visible
	g.persistVisibility(ctx)
}

// ResetColumns restores and persists the default visible set
func (g *Grid[T]) ResetColumns(ctx context.Context) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.visibility = g.defaultVisibility()
	g.persistVisibility(ctx)
}

// VisibleColumns returns the visible columns in definition order
func (g *Grid[T]) VisibleColumns() []Column[T] {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.visibleColumnsLocked()
}

func (g *Grid[T]) visibleColumnsLocked() []Column[T] {
	cols := make([]Column[T], 0, len(g.cfg.Columns))
	for _, col := range g.cfg.Columns {
		if visible, ok := g.visibility[col.ID]; !ok || visible {
			cols = append(cols, col)
		}
	}
	return cols
}

func (g *Grid[T]) column(id string) *Column[T] {
	for i := range g.cfg.Columns {
		if g.cfg.Columns[i].ID == id {
			return &g.cfg.Columns[i]
		}
	}
	return nil
}

// FilteredRows returns all rows passing the filter, sorted. Exports and
// the bulk actions operate on this set, not the visible page.
func (g *Grid[T]) FilteredRows() []T {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.filteredRowsLocked()
}

func (g *Grid[T]) filteredRowsLocked() []T {
	if g.cfg.ServerMode {
		out := make([]T, len(g.rows))
		copy(out, g.rows)
		return out
	}

	cols := g.visibleColumnsLocked()
	rows := make([]T, 0, len(g.rows))
	query := strings.ToLower(g.filter)
	for _, row := range g.rows {
		if query == "" || rowMatches(row, cols, query) {
			rows = append(rows, row)
		}
	}

	if g.sortColumn != "" && g.sortDir != SortNone {
		col := g.column(g.sortColumn)
		if col != nil {
			desc := g.sortDir == SortDesc
			sort.SliceStable(rows, func(i, j int) bool {
				less := compareValues(col.Value(rows[i]), col.Value(rows[j])) < 0
				if desc {
					return !less
				}
				return less
			})
		}
	}

	return rows
}

func rowMatches[T any](row T, cols []Column[T], query string) bool {
	for _, col := range cols {
		cell := strings.ToLower(fmt.Sprint(col.Value(row)))
		if strings.Contains(cell, query) {
			return true
		}
	}
	return false
}

// Page returns the rows of the current page. In server mode the caller's
// rows are returned as-is; the server already paged them.
func (g *Grid[T]) Page() []T {
	g.mu.Lock()
	defer g.mu.Unlock()

	rows := g.filteredRowsLocked()
	if g.cfg.ServerMode {
		return rows
	}

	start := g.pageIndex * g.cfg.PageSize
	if start >= len(rows) {
		return []T{}
	}
	end := start + g.cfg.PageSize
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}

// PageIndex returns the current zero-based page index
func (g *Grid[T]) PageIndex() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cfg.ServerMode {
		return g.serverPage.PageIndex
	}
	return g.pageIndex
}

// PageCount returns the number of pages over the filtered rows
func (g *Grid[T]) PageCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cfg.ServerMode {
		if g.serverPage.TotalPages < 1 {
			return 1
		}
		return g.serverPage.TotalPages
	}
	count := (len(g.filteredRowsLocked()) + g.cfg.PageSize - 1) / g.cfg.PageSize
	if count < 1 {
		count = 1
	}
	return count
}

// CanNextPage reports whether a next page exists
func (g *Grid[T]) CanNextPage() bool {
	return g.PageIndex() < g.PageCount()-1
}

// CanPreviousPage reports whether a previous page exists
func (g *Grid[T]) CanPreviousPage() bool {
	return g.PageIndex() > 0
}

// NextPage advances one page; in server mode the intent is forwarded
func (g *Grid[T]) NextPage() {
	if g.cfg.ServerMode {
		if g.cfg.OnPageChange != nil {
			g.cfg.OnPageChange(PageNext)
		}
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pageIndex++
	g.clampPageLocked()
}

// PreviousPage goes back one page; in server mode the intent is forwarded
func (g *Grid[T]) PreviousPage() {
	if g.cfg.ServerMode {
		if g.cfg.OnPageChange != nil {
			g.cfg.OnPageChange(PagePrevious)
		}
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pageIndex--
	g.clampPageLocked()
}

func (g *Grid[T]) clampPageLocked() {
	max := (len(g.filteredRowsLocked()) + g.cfg.PageSize - 1) / g.cfg.PageSize
	if max < 1 {
		max = 1
	}
	if g.pageIndex >= max {
		g.pageIndex = max - 1
	}
	if g.pageIndex < 0 {
		g.pageIndex = 0
	}
}

// SetServerPage records the caller-supplied page state in server mode
func (g *Grid[T]) SetServerPage(info PageInfo) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.serverPage = info
}

// ToggleSelected flips a row's selection state
func (g *Grid[T]) ToggleSelected(rowID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.selection[rowID] {
		delete(g.selection, rowID)
	} else {
		g.selection[rowID] = true
	}
}

// SelectAllPage selects every row on the current page
func (g *Grid[T]) SelectAllPage() {
	for _, row := range g.Page() {
		id := g.cfg.RowID(row)
		g.mu.Lock()
		g.selection[id] = true
		g.mu.Unlock()
	}
}

// ClearSelection deselects every row
func (g *Grid[T]) ClearSelection() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.selection = make(map[string]bool)
}

// SelectedRows returns the selected rows out of the filtered set
func (g *Grid[T]) SelectedRows() []T {
	g.mu.Lock()
	defer g.mu.Unlock()

	rows := g.filteredRowsLocked()
	selected := make([]T, 0, len(g.selection))
	for _, row := range rows {
		if g.selection[g.cfg.RowID(row)] {
			selected = append(selected, row)
		}
	}
	return selected
}

// PrintSelected forwards the selected rows to the print callback
func (g *Grid[T]) PrintSelected() {
	if g.cfg.OnPrintSelected != nil {
		g.cfg.OnPrintSelected(g.SelectedRows())
	}
}

// EmailSelected forwards the selected rows to the email callback
func (g *Grid[T]) EmailSelected() {
	if g.cfg.OnEmailSelected != nil {
		g.cfg.OnEmailSelected(g.SelectedRows())
	}
}

// DeleteSelected forwards the selected rows to the delete callback and
// clears the selection.
func (g *Grid[T]) DeleteSelected() {
	if g.cfg.OnDeleteSelected != nil {
		g.cfg.OnDeleteSelected(g.SelectedRows())
	}
	g.ClearSelection()
}

// ToggleExpanded flips a row's expansion state when expansion is enabled
func (g *Grid[T]) ToggleExpanded(rowID string) {
	if g.cfg.SubRows == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.expanded[rowID] {
		delete(g.expanded, rowID)
	} else {
		g.expanded[rowID] = true
	}
}

// IsExpanded reports a row's expansion state
func (g *Grid[T]) IsExpanded(rowID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.expanded[rowID]
}

// SubRows returns the expansion children for an expanded row, nil when the
// row is collapsed or expansion is disabled.
func (g *Grid[T]) SubRows(row T) []T {
	if g.cfg.SubRows == nil || !g.IsExpanded(g.cfg.RowID(row)) {
		return nil
	}
	return g.cfg.SubRows(row)
}

// debounceSearch resets the 800ms quiet-period timer. Only the final query
// in a quiet period reaches the callback; every keystroke cancels the
// pending call, including one that restores the last delivered query.
func (g *Grid[T]) debounceSearch(query string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.searchTimer != nil {
		g.searchTimer.Stop()
		g.searchTimer = nil
	}
	if g.cfg.OnSearch == nil || query == g.lastSearch {
		return
	}
	g.searchTimer = time.AfterFunc(SearchDebounce, func() {
		g.mu.Lock()
		g.lastSearch = query
		g.mu.Unlock()
		g.cfg.OnSearch(query)
	})
}

// Close cancels any pending debounced search
func (g *Grid[T]) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.searchTimer != nil {
		g.searchTimer.Stop()
		g.searchTimer = nil
	}
}

// compareValues orders two cells: numbers numerically, times
// chronologically, booleans false-first, everything else as
// case-insensitive strings.
func compareValues(a, b interface{}) int {
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			default:
				return 0
			}
		}
	}

	if at, aok := a.(time.Time); aok {
		if bt, bok := b.(time.Time); bok {
			switch {
			case at.Before(bt):
				return -1
			case at.After(bt):
				return 1
			default:
				return 0
			}
		}
	}

	if ab, aok := a.(bool); aok {
		if bb, bok := b.(bool); bok {
			switch {
			case ab == bb:
				return 0
			case !ab:
				return -1
			default:
				return 1
			}
		}
	}

	return strings.Compare(
		strings.ToLower(fmt.Sprint(a)),
		strings.ToLower(fmt.Sprint(b)),
	)
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
