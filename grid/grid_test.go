package grid

import "testing"

func TestCoordsRoundTrip(t *testing.T) {
	const rows, cols = 3, 4
	seen := make(map[[2]int]bool)
	for id := 0; id < rows*cols; id++ {
		r, c := Coords(id, cols)
		if r < 0 || r >= rows || c < 0 || c >= cols {
			t.Fatalf("id %d mapped outside grid: (%d,%d)", id, r, c)
		}
		if seen[[2]int{r, c}] {
			t.Fatalf("cell (%d,%d) owned twice", r, c)
		}
		seen[[2]int{r, c}] = true
		if got := ID(r, c, cols); got != id {
			t.Fatalf("ID(%d,%d) = %d, want %d", r, c, got, id)
		}
	}
}

func TestNewAllAlive(t *testing.T) {
	g := New(2, 3)
	if g.AliveCount() != 6 {
		t.Fatalf("alive count = %d, want 6", g.AliveCount())
	}
	for _, a := range g.Cells() {
		if !a {
			t.Fatal("expected every entity alive at start")
		}
	}
}

func TestKillAndRevive(t *testing.T) {
	g := New(2, 2)
	if !g.Kill(1, 1) {
		t.Fatal("first kill should succeed")
	}
	if g.Kill(1, 1) {
		t.Fatal("second kill of the same cell should be a no-op")
	}
	if g.AliveCount() != 3 {
		t.Fatalf("alive count = %d, want 3", g.AliveCount())
	}
	if g.Kill(5, 0) {
		t.Fatal("kill out of range should fail")
	}
	if !g.Revive(1, 1) || g.AliveCount() != 4 {
		t.Fatalf("revive failed, count = %d", g.AliveCount())
	}
	if g.Revive(1, 1) {
		t.Fatal("revive of alive cell should be a no-op")
	}
}

func TestFrontier(t *testing.T) {
	g := New(3, 3)
	g.Kill(2, 0)
	g.Kill(2, 1)
	g.Kill(1, 1)
	g.Kill(0, 1)

	tests := []struct {
		col  int
		want int
	}{
		{0, ID(1, 0, 3)},
		{1, None},
		{2, ID(2, 2, 3)},
	}
	front := g.Frontier()
	for _, tt := range tests {
		if front[tt.col] != tt.want {
			t.Errorf("frontier[%d] = %d, want %d", tt.col, front[tt.col], tt.want)
		}
	}
}

func TestFrontierNamesOneAliveEntityPerColumn(t *testing.T) {
	g := New(4, 5)
	kills := [][2]int{{3, 0}, {3, 1}, {2, 1}, {0, 4}, {3, 4}, {2, 4}, {1, 4}}
	for step, k := range kills {
		g.Kill(k[0], k[1])
		for c, id := range g.Frontier() {
			if id == None {
				if g.FrontierRow(c) != None {
					t.Fatalf("step %d: column %d has rows but no frontier id", step, c)
				}
				continue
			}
			r, col := Coords(id, g.Cols())
			if col != c {
				t.Fatalf("step %d: frontier of column %d lies in column %d", step, c, col)
			}
			if !g.Alive(r, col) {
				t.Fatalf("step %d: frontier %d of column %d is dead", step, id, c)
			}
			for below := r + 1; below < g.Rows(); below++ {
				if g.Alive(below, c) {
					t.Fatalf("step %d: alive entity below frontier in column %d", step, c)
				}
			}
		}
	}
}
