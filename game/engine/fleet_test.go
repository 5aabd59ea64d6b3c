package engine

import (
	"errors"
	"reflect"
	"testing"
)

func mustGrid(t *testing.T, rows ...string) Grid {
	t.Helper()
	g, err := ParseGrid(rows)
	if err != nil {
		t.Fatalf("Failed to parse grid: %v", err)
	}
	return g
}

func validLayout() []string {
	return []string{
		"#####..",
		".......",
		"####...",
		".......",
		"###.##.",
		".......",
		"##.....",
	}
}

func TestValidate_ValidFleet(t *testing.T) {
	g := mustGrid(t, validLayout()...)

	fleet, err := Validate(g)
	if err != nil {
		t.Fatalf("Expected valid fleet, got %v", err)
	}
	if got := fleet.SortedLengths(); !reflect.DeepEqual(got, []int{5, 4, 3, 2, 2}) {
		t.Errorf("Expected lengths [5 4 3 2 2], got %v", got)
	}
	if got := fleet.Lengths(); !reflect.DeepEqual(got, []int{5, 4, 3, 2, 2}) {
		t.Errorf("Expected scan order [5 4 3 2 2], got %v", got)
	}
}

func TestValidate_VerticalShips(t *testing.T) {
	g := mustGrid(t,
		"#.#.#.#",
		"#.#.#.#",
		"#.#.#..",
		"#.#....",
		"#......",
		".......",
		"##.....",
	)

	if _, err := Validate(g); err != nil {
		t.Fatalf("Expected vertical fleet to be valid, got %v", err)
	}
}

func TestValidate_Deterministic(t *testing.T) {
	layouts := [][]string{
		validLayout(),
		{"##.....", "#......", ".......", ".......", ".......", ".......", "......."},
		{".......", ".......", ".......", ".......", ".......", ".......", "......."},
	}
	for _, rows := range layouts {
		g := mustGrid(t, rows...)
		before := g
		_, err1 := Validate(g)
		_, err2 := Validate(g)
		if (err1 == nil) != (err2 == nil) || (err1 != nil && err1.Error() != err2.Error()) {
			t.Errorf("Expected identical results, got %v and %v", err1, err2)
		}
		if g != before {
			t.Error("Validate must not modify the grid")
		}
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name string
		rows []string
		want error
	}{
		{
			name: "bent ship",
			rows: []string{"##.....", "#......", ".......", ".......", ".......", ".......", "......."},
			want: ErrBentShip,
		},
		{
			name: "diagonal touch",
			rows: []string{"##.....", "..##...", ".......", ".......", ".......", ".......", "......."},
			want: ErrShipsTouching,
		},
		{
			name: "end touches side",
			rows: []string{".##....", "..#....", "..#....", ".......", ".......", ".......", "......."},
			want: ErrShipsTouching,
		},
		{
			name: "single cell",
			rows: []string{".......", "...#...", ".......", ".......", ".......", ".......", "......."},
			want: ErrShipTooShort,
		},
		{
			name: "too long",
			rows: []string{"######.", ".......", ".......", ".......", ".......", ".......", "......."},
			want: ErrShipTooLong,
		},
		{
			name: "block is bent",
			rows: []string{"###....", "###....", ".......", ".......", ".......", ".......", "......."},
			want: ErrBentShip,
		},
		// an L is only bent when the scan starts at its corner; the other
		// three orientations split into a run and a touching cell
		{
			name: "L with corner top right",
			rows: []string{"##.....", ".#.....", ".......", ".......", ".......", ".......", "......."},
			want: ErrShipsTouching,
		},
		{
			name: "L with corner bottom right",
			rows: []string{".#.....", "##.....", ".......", ".......", ".......", ".......", "......."},
			want: ErrShipsTouching,
		},
		{
			name: "L with corner bottom left",
			rows: []string{"#......", "##.....", ".......", ".......", ".......", ".......", "......."},
			want: ErrShipsTouching,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(mustGrid(t, tt.rows...))
			if !errors.Is(err, tt.want) {
				t.Fatalf("Expected %v, got %v", tt.want, err)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Expected *ValidationError, got %T", err)
			}
		})
	}
}

func TestValidate_MissingShip(t *testing.T) {
	rows := validLayout()
	rows[6] = "......."
	_, err := Validate(mustGrid(t, rows...))

	var verr *ValidationError
	if !errors.As(err, &verr) || !errors.Is(err, ErrWrongFleetComposition) {
		t.Fatalf("Expected composition error, got %v", err)
	}
	if !reflect.DeepEqual(verr.Missing, []int{2}) {
		t.Errorf("Expected missing [2], got %v", verr.Missing)
	}
	if len(verr.Excess) != 0 {
		t.Errorf("Expected no excess, got %v", verr.Excess)
	}
}

func TestValidate_WrongComposition(t *testing.T) {
	g := mustGrid(t,
		"#####..",
		".......",
		"####...",
		".......",
		"####...",
		".......",
		".......",
	)
	_, err := Validate(g)

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected composition error, got %v", err)
	}
	if !reflect.DeepEqual(verr.Missing, []int{3, 2, 2}) {
		t.Errorf("Expected missing [3 2 2], got %v", verr.Missing)
	}
	if !reflect.DeepEqual(verr.Excess, []int{4}) {
		t.Errorf("Expected excess [4], got %v", verr.Excess)
	}
}

func TestCompositionDiff_PairwiseRemoval(t *testing.T) {
	tests := []struct {
		found   []int
		missing []int
		excess  []int
	}{
		{[]int{5, 4, 3, 2, 2}, []int{}, []int{}},
		{[]int{2}, []int{5, 4, 3, 2}, []int{}},
		{[]int{2, 2, 2}, []int{5, 4, 3}, []int{2}},
		{[]int{3, 3, 5}, []int{4, 2, 2}, []int{3}},
		{nil, []int{5, 4, 3, 2, 2}, []int{}},
	}
	for _, tt := range tests {
		missing, excess := compositionDiff(RequiredFleet, tt.found)
		if len(missing) != len(tt.missing) || (len(missing) > 0 && !reflect.DeepEqual(missing, tt.missing)) {
			t.Errorf("found %v: expected missing %v, got %v", tt.found, tt.missing, missing)
		}
		if len(excess) != len(tt.excess) || (len(excess) > 0 && !reflect.DeepEqual(excess, tt.excess)) {
			t.Errorf("found %v: expected excess %v, got %v", tt.found, tt.excess, excess)
		}
	}
	if !reflect.DeepEqual(RequiredFleet, []int{5, 4, 3, 2, 2}) {
		t.Errorf("compositionDiff modified RequiredFleet: %v", RequiredFleet)
	}
}
