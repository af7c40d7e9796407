package grid

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tipbase-server/internal/storage"
)

type player struct {
	ID    string
	Name  string
	Goals int
}

func playerColumns() []Column[player] {
	return []Column[player]{
		{ID: "name", Header: "Name", Value: func(p player) interface{} { return p.Name }, Sortable: true, CanHide: true},
		{ID: "goals", Header: "Goals", Value: func(p player) interface{} { return p.Goals }, Sortable: true, CanHide: true},
	}
}

func testPlayers() []player {
	return []player{
		{ID: "p1", Name: "Haaland", Goals: 36},
		{ID: "p2", Name: "Salah", Goals: 19},
		{ID: "p3", Name: "Kane", Goals: 30},
		{ID: "p4", Name: "Son", Goals: 17},
		{ID: "p5", Name: "Saka", Goals: 14},
	}
}

func newPlayerGrid(t *testing.T, cfg Config[player]) *Grid[player] {
	t.Helper()
	if cfg.Columns == nil {
		cfg.Columns = playerColumns()
	}
	if cfg.RowID == nil {
		cfg.RowID = func(p player) string { return p.ID }
	}
	g, err := New(context.Background(), cfg, testPlayers())
	require.NoError(t, err)
	return g
}

func TestConfigValidate(t *testing.T) {
	rowID := func(p player) string { return p.ID }

	tests := []struct {
		name    string
		cfg     Config[player]
		wantErr bool
	}{
		{"valid", Config[player]{Columns: playerColumns(), RowID: rowID}, false},
		{"no columns", Config[player]{RowID: rowID}, true},
		{"no row id", Config[player]{Columns: playerColumns()}, true},
		{"duplicate column id", Config[player]{
			Columns: append(playerColumns(), Column[player]{ID: "name", Header: "Dup", Value: func(p player) interface{} { return p.Name }}),
			RowID:   rowID,
		}, true},
		{"column without accessor", Config[player]{
			Columns: []Column[player]{{ID: "x", Header: "X"}},
			RowID:   rowID,
		}, true},
		{"server mode without callbacks", Config[player]{
			Columns:    playerColumns(),
			RowID:      rowID,
			ServerMode: true,
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGrid_Sort(t *testing.T) {
	t.Run("toggles ascending then descending", func(t *testing.T) {
		g := newPlayerGrid(t, Config[player]{})

		g.ToggleSort("goals")
		rows := g.FilteredRows()
		assert.Equal(t, "Saka", rows[0].Name)
		assert.Equal(t, "Haaland", rows[len(rows)-1].Name)

		g.ToggleSort("goals")
		rows = g.FilteredRows()
		assert.Equal(t, "Haaland", rows[0].Name)
	})

	t.Run("sorting a new column starts ascending", func(t *testing.T) {
		g := newPlayerGrid(t, Config[player]{})

		g.ToggleSort("goals")
		g.ToggleSort("goals")
		g.ToggleSort("name")

		col, dir := g.Sort()
		assert.Equal(t, "name", col)
		assert.Equal(t, SortAsc, dir)

		rows := g.FilteredRows()
		assert.Equal(t, "Haaland", rows[0].Name)
		assert.Equal(t, "Son", rows[len(rows)-1].Name)
	})

	t.Run("unsortable columns are ignored", func(t *testing.T) {
		cols := playerColumns()
		cols[0].Sortable = false
		g := newPlayerGrid(t, Config[player]{Columns: cols})

		g.ToggleSort("name")
		col, dir := g.Sort()
		assert.Empty(t, col)
		assert.Equal(t, SortNone, dir)
	})
}

func TestGrid_Filter(t *testing.T) {
	g := newPlayerGrid(t, Config[player]{})

	g.SetFilter("SAL")
	rows := g.FilteredRows()
	require.Len(t, rows, 1)
	assert.Equal(t, "Salah", rows[0].Name)

	// Numeric cells are matched on their string form
	g.SetFilter("36")
	rows = g.FilteredRows()
	require.Len(t, rows, 1)
	assert.Equal(t, "Haaland", rows[0].Name)

	g.SetFilter("")
	assert.Len(t, g.FilteredRows(), 5)
}

func TestGrid_FilterSkipsHiddenColumns(t *testing.T) {
	ctx := context.Background()
	g := newPlayerGrid(t, Config[player]{})

	g.ToggleColumn(ctx, "goals", false)
	g.SetFilter("36")

	assert.Empty(t, g.FilteredRows())
}

func TestGrid_Pagination(t *testing.T) {
	g := newPlayerGrid(t, Config[player]{PageSize: 2})

	assert.Equal(t, 3, g.PageCount())
	assert.Equal(t, 0, g.PageIndex())
	assert.Len(t, g.Page(), 2)
	assert.True(t, g.CanNextPage())
	assert.False(t, g.CanPreviousPage())

	g.NextPage()
	g.NextPage()
	assert.Equal(t, 2, g.PageIndex())
	assert.Len(t, g.Page(), 1)
	assert.False(t, g.CanNextPage())

	// Walking past the end clamps
	g.NextPage()
	assert.Equal(t, 2, g.PageIndex())

	g.PreviousPage()
	assert.Equal(t, 1, g.PageIndex())

	// Filtering resets to the first page
	g.SetFilter("sa")
	assert.Equal(t, 0, g.PageIndex())
}

func TestGrid_ColumnVisibility(t *testing.T) {
	ctx := context.Background()

	setupKV := func(t *testing.T) (storage.KV, *miniredis.Miniredis) {
		mr, err := miniredis.Run()
		require.NoError(t, err)
		t.Cleanup(mr.Close)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		return storage.NewRedisKVFromClient(client), mr
	}

	t.Run("defaults show the configured set", func(t *testing.T) {
		g := newPlayerGrid(t, Config[player]{DefaultVisible: []string{"name"}})

		cols := g.VisibleColumns()
		require.Len(t, cols, 1)
		assert.Equal(t, "name", cols[0].ID)
	})

	t.Run("no default set means everything visible", func(t *testing.T) {
		g := newPlayerGrid(t, Config[player]{})
		assert.Len(t, g.VisibleColumns(), 2)
	})

	t.Run("toggle persists and survives a rebuild", func(t *testing.T) {
		kv, _ := setupKV(t)
		cfg := Config[player]{KV: kv, StorageKey: "grid_players"}

		g := newPlayerGrid(t, cfg)
		g.ToggleColumn(ctx, "goals", false)
		require.Len(t, g.VisibleColumns(), 1)

		rebuilt := newPlayerGrid(t, cfg)
		cols := rebuilt.VisibleColumns()
		require.Len(t, cols, 1)
		assert.Equal(t, "name", cols[0].ID)
	})

	t.Run("corrupt stored preference falls back to defaults", func(t *testing.T) {
		kv, mr := setupKV(t)
		mr.Set("grid_players", "][ not json")

		g := newPlayerGrid(t, Config[player]{KV: kv, StorageKey: "grid_players", DefaultVisible: []string{"name"}})
		cols := g.VisibleColumns()
		require.Len(t, cols, 1)
		assert.Equal(t, "name", cols[0].ID)
	})

	t.Run("reset restores and persists the default set", func(t *testing.T) {
		kv, _ := setupKV(t)
		cfg := Config[player]{KV: kv, StorageKey: "grid_players"}

		g := newPlayerGrid(t, cfg)
		g.ToggleColumn(ctx, "goals", false)
		g.ResetColumns(ctx)
		assert.Len(t, g.VisibleColumns(), 2)

		rebuilt := newPlayerGrid(t, cfg)
		assert.Len(t, rebuilt.VisibleColumns(), 2)
	})

	t.Run("non-hideable columns ignore toggles", func(t *testing.T) {
		cols := playerColumns()
		cols[0].CanHide = false
		g := newPlayerGrid(t, Config[player]{Columns: cols})

		g.ToggleColumn(ctx, "name", false)
		assert.Len(t, g.VisibleColumns(), 2)
	})
}

func TestGrid_Selection(t *testing.T) {
	t.Run("toggle and read back", func(t *testing.T) {
		g := newPlayerGrid(t, Config[player]{})

		g.ToggleSelected("p1")
		g.ToggleSelected("p3")

		selected := g.SelectedRows()
		require.Len(t, selected, 2)
		assert.Equal(t, "Haaland", selected[0].Name)
		assert.Equal(t, "Kane", selected[1].Name)

		g.ToggleSelected("p1")
		assert.Len(t, g.SelectedRows(), 1)
	})

	t.Run("select all on the current page", func(t *testing.T) {
		g := newPlayerGrid(t, Config[player]{PageSize: 2})

		g.SelectAllPage()
		assert.Len(t, g.SelectedRows(), 2)
	})

	t.Run("bulk delete forwards rows and clears the selection", func(t *testing.T) {
		var deleted []player
		cfg := Config[player]{
			OnDeleteSelected: func(rows []player) { deleted = rows },
		}
		g := newPlayerGrid(t, cfg)

		g.ToggleSelected("p2")
		g.DeleteSelected()

		require.Len(t, deleted, 1)
		assert.Equal(t, "Salah", deleted[0].Name)
		assert.Empty(t, g.SelectedRows())
	})

	t.Run("replacing rows drops stale selections", func(t *testing.T) {
		g := newPlayerGrid(t, Config[player]{})

		g.ToggleSelected("p1")
		g.ToggleSelected("p2")
		g.SetRows([]player{{ID: "p1", Name: "Haaland", Goals: 36}})

		selected := g.SelectedRows()
		require.Len(t, selected, 1)
		assert.Equal(t, "p1", selected[0].ID)
	})
}

func TestGrid_Expansion(t *testing.T) {
	sub := map[string][]player{
		"p1": {{ID: "p1a", Name: "Haaland 2023", Goals: 52}},
	}
	cfg := Config[player]{
		SubRows: func(p player) []player { return sub[p.ID] },
	}
	g := newPlayerGrid(t, cfg)

	rows := g.FilteredRows()
	assert.Nil(t, g.SubRows(rows[0]))

	g.ToggleExpanded("p1")
	assert.True(t, g.IsExpanded("p1"))
	children := g.SubRows(rows[0])
	require.Len(t, children, 1)
	assert.Equal(t, "Haaland 2023", children[0].Name)

	g.ToggleExpanded("p1")
	assert.False(t, g.IsExpanded("p1"))
}

func TestGrid_ServerMode(t *testing.T) {
	t.Run("page intents are forwarded, not applied", func(t *testing.T) {
		var actions []PageAction
		g := newPlayerGrid(t, Config[player]{
			ServerMode:   true,
			OnPageChange: func(a PageAction) { actions = append(actions, a) },
		})

		g.NextPage()
		g.PreviousPage()
		assert.Equal(t, []PageAction{PageNext, PagePrevious}, actions)
	})

	t.Run("server page state drives pagination reads", func(t *testing.T) {
		g := newPlayerGrid(t, Config[player]{
			ServerMode:   true,
			OnPageChange: func(PageAction) {},
		})

		g.SetServerPage(PageInfo{PageIndex: 1, PageSize: 10, TotalPages: 4, TotalRows: 37})
		assert.Equal(t, 1, g.PageIndex())
		assert.Equal(t, 4, g.PageCount())
		assert.True(t, g.CanNextPage())
		assert.True(t, g.CanPreviousPage())
	})

	t.Run("search is debounced to the final quiet query", func(t *testing.T) {
		queries := make(chan string, 10)
		g := newPlayerGrid(t, Config[player]{
			ServerMode: true,
			OnSearch:   func(q string) { queries <- q },
		})
		defer g.Close()

		g.SetFilter("h")
		g.SetFilter("ha")
		g.SetFilter("haa")

		select {
		case q := <-queries:
			assert.Equal(t, "haa", q)
		case <-time.After(3 * SearchDebounce):
			t.Fatal("debounced search never fired")
		}

		// No superseded query arrives afterwards
		select {
		case q := <-queries:
			t.Fatalf("unexpected extra search %q", q)
		case <-time.After(SearchDebounce / 2):
		}
	})

	t.Run("reverting to the delivered query cancels the pending search", func(t *testing.T) {
		queries := make(chan string, 10)
		g := newPlayerGrid(t, Config[player]{
			ServerMode: true,
			OnSearch:   func(q string) { queries <- q },
		})
		defer g.Close()

		// The empty query was already delivered (initial state), so
		// typing and then clearing within the quiet period must leave
		// nothing pending.
		g.SetFilter("a")
		g.SetFilter("")

		select {
		case q := <-queries:
			t.Fatalf("superseded search %q fired after revert", q)
		case <-time.After(SearchDebounce + 200*time.Millisecond):
		}

		// A later edit still goes through
		g.SetFilter("kane")
		select {
		case q := <-queries:
			assert.Equal(t, "kane", q)
		case <-time.After(3 * SearchDebounce):
			t.Fatal("search after revert never fired")
		}
	})

	t.Run("close cancels a pending search", func(t *testing.T) {
		fired := make(chan string, 1)
		g := newPlayerGrid(t, Config[player]{
			ServerMode: true,
			OnSearch:   func(q string) { fired <- q },
		})

		g.SetFilter("kane")
		g.Close()

		select {
		case q := <-fired:
			t.Fatalf("search %q fired after close", q)
		case <-time.After(SearchDebounce + 200*time.Millisecond):
		}
	})
}

func TestGrid_PageBoundaries(t *testing.T) {
	g := newPlayerGrid(t, Config[player]{PageSize: 3})

	for i := 0; i < 10; i++ {
		g.NextPage()
	}
	assert.Equal(t, g.PageCount()-1, g.PageIndex())

	// Shrinking the row set pulls the page index back into range
	g.SetRows([]player{{ID: "p9", Name: "Isak", Goals: 21}})
	assert.Equal(t, 0, g.PageIndex())
	assert.Len(t, g.Page(), 1)
}
